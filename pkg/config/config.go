package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/gatehook/gatehook/pkg/bridge"
)

// Params is the raw environment surface. Policy variables are pointers;
// env/v11 leaves them nil both when the variable is unset and when it
// is set but empty, so Load checks the environment directly to tell an
// unset variable (event disabled) from an explicitly empty one (allow
// everything except self).
type Params struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	HTTPEndpoint string `env:"HTTP_ENDPOINT,required"`

	InsecureMode        bool  `env:"INSECURE_MODE" envDefault:"false"`
	HTTPTimeout         int   `env:"HTTP_TIMEOUT" envDefault:"300"`
	HTTPConnectTimeout  int   `env:"HTTP_CONNECT_TIMEOUT" envDefault:"10"`
	MaxResponseBodySize int64 `env:"MAX_RESPONSE_BODY_SIZE" envDefault:"131072"`
	MaxActions          int   `env:"MAX_ACTIONS" envDefault:"5"`

	Ready   *string `env:"READY"`
	Resumed *string `env:"RESUMED"`

	MessageDirect          *string `env:"MESSAGE_DIRECT"`
	MessageGuild           *string `env:"MESSAGE_GUILD"`
	MessageUpdateDirect    *string `env:"MESSAGE_UPDATE_DIRECT"`
	MessageUpdateGuild     *string `env:"MESSAGE_UPDATE_GUILD"`
	MessageDeleteDirect    *string `env:"MESSAGE_DELETE_DIRECT"`
	MessageDeleteGuild     *string `env:"MESSAGE_DELETE_GUILD"`
	MessageDeleteBulkGuild *string `env:"MESSAGE_DELETE_BULK_GUILD"`
	ReactionAddDirect      *string `env:"REACTION_ADD_DIRECT"`
	ReactionAddGuild       *string `env:"REACTION_ADD_GUILD"`
	ReactionRemoveDirect   *string `env:"REACTION_REMOVE_DIRECT"`
	ReactionRemoveGuild    *string `env:"REACTION_REMOVE_GUILD"`
}

// PolicyPair holds the two policies of a filterable event kind, one
// per context. A nil policy disables that context.
type PolicyPair struct {
	Direct *bridge.Policy
	Guild  *bridge.Policy
}

func (p PolicyPair) Enabled() bool {
	return p.Direct != nil || p.Guild != nil
}

// Config is the validated runtime configuration.
type Config struct {
	DiscordToken string
	Endpoint     *url.URL

	InsecureMode        bool
	HTTPTimeout         time.Duration
	HTTPConnectTimeout  time.Duration
	MaxResponseBodySize int64
	MaxActions          int

	ReadyEnabled   bool
	ResumedEnabled bool

	Message           PolicyPair
	MessageUpdate     PolicyPair
	MessageDelete     PolicyPair
	MessageDeleteBulk *bridge.Policy
	ReactionAdd       PolicyPair
	ReactionRemove    PolicyPair
}

// Load reads and validates the process environment. Any failure here
// is fatal at startup; nothing past this point is.
func Load() (*Config, error) {
	var p Params
	if err := env.Parse(&p); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	endpoint, err := url.Parse(p.HTTPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing HTTP_ENDPOINT: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("HTTP_ENDPOINT must be an http or https URL, got %q", p.HTTPEndpoint)
	}
	if endpoint.Host == "" {
		return nil, fmt.Errorf("HTTP_ENDPOINT has no host: %q", p.HTTPEndpoint)
	}

	isSet := func(name string) bool {
		_, ok := os.LookupEnv(name)
		return ok
	}

	cfg := &Config{
		DiscordToken:        p.DiscordToken,
		Endpoint:            endpoint,
		InsecureMode:        p.InsecureMode,
		HTTPTimeout:         time.Duration(p.HTTPTimeout) * time.Second,
		HTTPConnectTimeout:  time.Duration(p.HTTPConnectTimeout) * time.Second,
		MaxResponseBodySize: p.MaxResponseBodySize,
		MaxActions:          p.MaxActions,
		ReadyEnabled:        p.Ready != nil || isSet("READY"),
		ResumedEnabled:      p.Resumed != nil || isSet("RESUMED"),
	}

	policies := []struct {
		name string
		raw  *string
		dst  **bridge.Policy
	}{
		{"MESSAGE_DIRECT", p.MessageDirect, &cfg.Message.Direct},
		{"MESSAGE_GUILD", p.MessageGuild, &cfg.Message.Guild},
		{"MESSAGE_UPDATE_DIRECT", p.MessageUpdateDirect, &cfg.MessageUpdate.Direct},
		{"MESSAGE_UPDATE_GUILD", p.MessageUpdateGuild, &cfg.MessageUpdate.Guild},
		{"MESSAGE_DELETE_DIRECT", p.MessageDeleteDirect, &cfg.MessageDelete.Direct},
		{"MESSAGE_DELETE_GUILD", p.MessageDeleteGuild, &cfg.MessageDelete.Guild},
		{"MESSAGE_DELETE_BULK_GUILD", p.MessageDeleteBulkGuild, &cfg.MessageDeleteBulk},
		{"REACTION_ADD_DIRECT", p.ReactionAddDirect, &cfg.ReactionAdd.Direct},
		{"REACTION_ADD_GUILD", p.ReactionAddGuild, &cfg.ReactionAdd.Guild},
		{"REACTION_REMOVE_DIRECT", p.ReactionRemoveDirect, &cfg.ReactionRemove.Direct},
		{"REACTION_REMOVE_GUILD", p.ReactionRemoveGuild, &cfg.ReactionRemove.Guild},
	}
	for _, entry := range policies {
		if entry.raw == nil && !isSet(entry.name) {
			continue
		}
		value := ""
		if entry.raw != nil {
			value = *entry.raw
		}
		policy, err := bridge.ParsePolicy(value)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.name, err)
		}
		*entry.dst = &policy
	}

	return cfg, nil
}
