package discord

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/gatehook/gatehook/pkg/bridge"
	"github.com/gatehook/gatehook/pkg/config"
	"github.com/gatehook/gatehook/pkg/webhook"
)

type stubService struct{}

func (stubService) ReplyInChannel(ctx context.Context, channelID, messageID, content string, mention bool) error {
	return nil
}
func (stubService) ReactToMessage(ctx context.Context, channelID, messageID, emoji string) error {
	return nil
}
func (stubService) CreateThreadFromMessage(ctx context.Context, channelID, messageID, name string, autoArchiveMinutes int) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "t"}, nil
}
func (stubService) SendMessageToChannel(ctx context.Context, channelID, content string) error {
	return nil
}
func (stubService) GetMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	return &discordgo.Message{}, nil
}

type stubChannelInfo struct{}

func (stubChannelInfo) GetChannel(ctx context.Context, guildID, channelID string) (*discordgo.Channel, error) {
	return nil, nil
}
func (stubChannelInfo) IsThread(ctx context.Context, guildID, channelID string) (bool, error) {
	return false, nil
}

type recordingSender struct {
	mu       sync.Mutex
	handlers []string
}

func (s *recordingSender) Send(ctx context.Context, handler string, payload any) (*webhook.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
	return &webhook.Response{}, nil
}

func (s *recordingSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.handlers...)
}

func newTestHandler(t *testing.T, cfg *config.Config) (*Handler, *recordingSender) {
	t.Helper()
	sender := &recordingSender{}
	b := bridge.New(stubService{}, stubChannelInfo{}, sender)
	return NewHandler(cfg, b), sender
}

func readyEvent(botID string) *discordgo.Ready {
	return &discordgo.Ready{User: &discordgo.User{ID: botID, Username: "gatehook"}}
}

func TestHandler_MessageBeforeReadyDropped(t *testing.T) {
	cfg := &config.Config{}
	cfg.Message.Guild = policyPtr(t, "user")
	h, sender := newTestHandler(t, cfg)

	h.onMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "5", ChannelID: "2", GuildID: "1", Author: &discordgo.User{ID: "9"},
	}})

	if len(sender.sent()) != 0 {
		t.Error("Events before ready should short-circuit")
	}
}

func TestHandler_FilterCellWrittenOnce(t *testing.T) {
	cfg := &config.Config{}
	cfg.Message.Guild = policyPtr(t, "user")
	h, _ := newTestHandler(t, cfg)

	h.onReady(nil, readyEvent("100"))
	first := h.filters.Load()

	// A replayed ready must not reinitialize the cell.
	h.onReady(nil, readyEvent("999"))
	if h.filters.Load() != first {
		t.Error("Filter cell should be written exactly once")
	}
}

func TestHandler_PicksFilterByContext(t *testing.T) {
	cfg := &config.Config{}
	cfg.Message.Guild = policyPtr(t, "user")
	h, sender := newTestHandler(t, cfg)
	h.onReady(nil, readyEvent("100"))

	// Guild context configured: forwarded.
	h.onMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "5", ChannelID: "2", GuildID: "1", Author: &discordgo.User{ID: "9"},
	}})
	if got := sender.sent(); len(got) != 1 || got[0] != "message" {
		t.Fatalf("Guild message should be forwarded, got %v", got)
	}

	// Direct context unset: dropped.
	h.onMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "6", ChannelID: "7", Author: &discordgo.User{ID: "9"},
	}})
	if got := sender.sent(); len(got) != 1 {
		t.Errorf("DM with unset MESSAGE_DIRECT should be dropped, got %v", got)
	}
}

func TestHandler_ReadyForwardedOnlyWhenEnabled(t *testing.T) {
	cfg := &config.Config{}
	h, sender := newTestHandler(t, cfg)
	h.onReady(nil, readyEvent("100"))
	if len(sender.sent()) != 0 {
		t.Error("Ready should not be forwarded unless READY is configured")
	}

	cfg2 := &config.Config{ReadyEnabled: true}
	h2, sender2 := newTestHandler(t, cfg2)
	h2.onReady(nil, readyEvent("100"))
	if got := sender2.sent(); len(got) != 1 || got[0] != "ready" {
		t.Errorf("Ready should be forwarded when READY is configured, got %v", got)
	}
}

func TestHandler_ReactionContextPick(t *testing.T) {
	cfg := &config.Config{}
	cfg.ReactionAdd.Direct = policyPtr(t, "")
	h, sender := newTestHandler(t, cfg)
	h.onReady(nil, readyEvent("100"))

	// DM reaction: direct filter applies.
	h.onReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID: "9", MessageID: "5", ChannelID: "7",
	}})
	if got := sender.sent(); len(got) != 1 || got[0] != "reaction_add" {
		t.Fatalf("DM reaction should be forwarded, got %v", got)
	}

	// Guild reaction: guild policy unset, dropped.
	h.onReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID: "9", MessageID: "5", ChannelID: "2", GuildID: "1",
	}})
	if got := sender.sent(); len(got) != 1 {
		t.Errorf("Guild reaction with unset policy should be dropped, got %v", got)
	}
}

func TestHandler_SelfReactionSuppressed(t *testing.T) {
	cfg := &config.Config{}
	cfg.ReactionAdd.Guild = policyPtr(t, "")
	h, sender := newTestHandler(t, cfg)
	h.onReady(nil, readyEvent("100"))

	h.onReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID: "100", MessageID: "5", ChannelID: "2", GuildID: "1",
	}})
	if len(sender.sent()) != 0 {
		t.Error("The bot's own reaction should be rejected by the empty policy")
	}
}
