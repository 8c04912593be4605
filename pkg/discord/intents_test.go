package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/gatehook/gatehook/pkg/bridge"
	"github.com/gatehook/gatehook/pkg/config"
)

func policyPtr(t *testing.T, s string) *bridge.Policy {
	t.Helper()
	p, err := bridge.ParsePolicy(s)
	if err != nil {
		t.Fatalf("ParsePolicy(%q) failed: %v", s, err)
	}
	return &p
}

func TestComputeIntents_NothingConfigured(t *testing.T) {
	if got := ComputeIntents(&config.Config{}); got != 0 {
		t.Errorf("No configured events should request no intents, got %v", got)
	}
}

func TestComputeIntents_GuildMessages(t *testing.T) {
	cfg := &config.Config{}
	cfg.Message.Guild = policyPtr(t, "user")

	got := ComputeIntents(cfg)

	for _, want := range []discordgo.Intent{
		discordgo.IntentGuildMessages,
		discordgo.IntentMessageContent,
		discordgo.IntentGuilds,
	} {
		if got&want == 0 {
			t.Errorf("MESSAGE_GUILD should request intent %v", want)
		}
	}
	if got&discordgo.IntentDirectMessages != 0 {
		t.Error("Direct message intent should not be requested")
	}
}

func TestComputeIntents_DirectMessages(t *testing.T) {
	cfg := &config.Config{}
	cfg.Message.Direct = policyPtr(t, "")

	got := ComputeIntents(cfg)

	if got&discordgo.IntentDirectMessages == 0 {
		t.Error("MESSAGE_DIRECT should request the direct messages intent")
	}
	if got&discordgo.IntentMessageContent == 0 {
		t.Error("Message policies should request message content")
	}
	if got&discordgo.IntentGuilds != 0 {
		t.Error("Guilds intent is tied to MESSAGE_GUILD only")
	}
}

func TestComputeIntents_MessageUpdateRequestsContent(t *testing.T) {
	cfg := &config.Config{}
	cfg.MessageUpdate.Guild = policyPtr(t, "user")

	got := ComputeIntents(cfg)

	if got&discordgo.IntentMessageContent == 0 {
		t.Error("MESSAGE_UPDATE_GUILD should request message content")
	}
	if got&discordgo.IntentGuildMessages == 0 {
		t.Error("MESSAGE_UPDATE_GUILD should request guild messages")
	}
}

func TestComputeIntents_DeleteWithoutContent(t *testing.T) {
	cfg := &config.Config{}
	cfg.MessageDelete.Guild = policyPtr(t, "")
	cfg.MessageDeleteBulk = policyPtr(t, "")

	got := ComputeIntents(cfg)

	if got&discordgo.IntentGuildMessages == 0 {
		t.Error("Delete policies should request guild messages")
	}
	if got&discordgo.IntentMessageContent != 0 {
		t.Error("Delete-only configuration should not request message content")
	}
}

func TestComputeIntents_Reactions(t *testing.T) {
	cfg := &config.Config{}
	cfg.ReactionAdd.Guild = policyPtr(t, "user")
	cfg.ReactionRemove.Direct = policyPtr(t, "user")

	got := ComputeIntents(cfg)

	if got&discordgo.IntentGuildMessageReactions == 0 {
		t.Error("Guild reaction policy should request guild reactions")
	}
	if got&discordgo.IntentDirectMessageReactions == 0 {
		t.Error("Direct reaction policy should request direct reactions")
	}
	if got&discordgo.IntentMessageContent != 0 {
		t.Error("Reaction-only configuration should not request message content")
	}
}
