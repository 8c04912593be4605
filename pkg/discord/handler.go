package discord

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/gatehook/gatehook/pkg/bridge"
	"github.com/gatehook/gatehook/pkg/config"
	"github.com/gatehook/gatehook/pkg/logger"
)

// Filters is the full set of bound runtime filters, materialized once
// the bot's identifier is known. A nil entry means that event context
// is disabled.
type Filters struct {
	MessageDirect        *bridge.MessageFilter
	MessageGuild         *bridge.MessageFilter
	ReactionAddDirect    *bridge.ReactionFilter
	ReactionAddGuild     *bridge.ReactionFilter
	ReactionRemoveDirect *bridge.ReactionFilter
	ReactionRemoveGuild  *bridge.ReactionFilter
}

// Handler wires gateway callbacks to the bridge. It owns the one-shot
// filter cell: written exactly once on the first ready, read by every
// filtered event handler. Events arriving before ready short-circuit.
type Handler struct {
	cfg    *config.Config
	bridge *bridge.Bridge

	latch   sync.Once
	filters atomic.Pointer[Filters]
}

func NewHandler(cfg *config.Config, b *bridge.Bridge) *Handler {
	return &Handler{cfg: cfg, bridge: b}
}

// Register attaches callbacks to the session. The ready handler is
// registered unconditionally; every other handler only when its event
// kind is enabled, so disabled events cost nothing.
func (h *Handler) Register(session *discordgo.Session) {
	session.AddHandler(h.onReady)

	if h.cfg.ResumedEnabled {
		session.AddHandler(h.onResumed)
	}
	if h.cfg.Message.Enabled() {
		session.AddHandler(h.onMessageCreate)
	}
	if h.cfg.MessageUpdate.Enabled() {
		session.AddHandler(h.onMessageUpdate)
	}
	if h.cfg.MessageDelete.Enabled() {
		session.AddHandler(h.onMessageDelete)
	}
	if h.cfg.MessageDeleteBulk != nil {
		session.AddHandler(h.onMessageDeleteBulk)
	}
	if h.cfg.ReactionAdd.Enabled() {
		session.AddHandler(h.onReactionAdd)
	}
	if h.cfg.ReactionRemove.Enabled() {
		session.AddHandler(h.onReactionRemove)
	}
}

func (h *Handler) onReady(s *discordgo.Session, r *discordgo.Ready) {
	// The bot identifier is stable for the session: a reconnect that
	// replays ready must not reinitialize the filters.
	h.latch.Do(func() {
		h.filters.Store(h.bindFilters(r.User.ID))
		logger.InfoCF("discord", "Filters initialized", map[string]interface{}{
			"bot_id": r.User.ID,
		})
	})

	logger.InfoCF("discord", "Bot is connected", map[string]interface{}{
		"username": r.User.Username,
	})
	logger.InfoCF("discord", "Bot install URL available", map[string]interface{}{
		"install_url": fmt.Sprintf("https://discord.com/oauth2/authorize?client_id=%s&scope=bot", r.User.ID),
	})

	if h.cfg.ReadyEnabled {
		if err := h.bridge.HandleReady(context.Background(), r); err != nil {
			logger.ErrorCF("discord", "Failed to handle ready event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (h *Handler) onResumed(s *discordgo.Session, r *discordgo.Resumed) {
	if err := h.bridge.HandleResumed(context.Background(), r); err != nil {
		logger.ErrorCF("discord", "Failed to handle resumed event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	f := h.filters.Load()
	if f == nil {
		logger.DebugC("discord", "Message received before ready, dropping")
		return
	}

	filter := f.MessageGuild
	if m.GuildID == "" {
		filter = f.MessageDirect
	}
	if filter == nil {
		return
	}

	if err := h.bridge.HandleMessage(context.Background(), m.Message, *filter); err != nil {
		logger.WarnCF("discord", "Failed to handle message event", map[string]interface{}{
			"message_id": m.ID,
			"error":      err.Error(),
		})
	}
}

func (h *Handler) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if !h.contextEnabled(h.cfg.MessageUpdate, m.GuildID) {
		return
	}

	if err := h.bridge.HandleMessageUpdate(context.Background(), m.Message); err != nil {
		logger.WarnCF("discord", "Failed to handle message_update event", map[string]interface{}{
			"message_id": m.ID,
			"error":      err.Error(),
		})
	}
}

func (h *Handler) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	if !h.contextEnabled(h.cfg.MessageDelete, m.GuildID) {
		return
	}

	if err := h.bridge.HandleMessageDelete(context.Background(), m.ChannelID, m.ID, m.GuildID); err != nil {
		logger.WarnCF("discord", "Failed to handle message_delete event", map[string]interface{}{
			"message_id": m.ID,
			"error":      err.Error(),
		})
	}
}

func (h *Handler) onMessageDeleteBulk(s *discordgo.Session, m *discordgo.MessageDeleteBulk) {
	if err := h.bridge.HandleMessageDeleteBulk(context.Background(), m.ChannelID, m.Messages, m.GuildID); err != nil {
		logger.WarnCF("discord", "Failed to handle message_delete_bulk event", map[string]interface{}{
			"channel_id": m.ChannelID,
			"error":      err.Error(),
		})
	}
}

func (h *Handler) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	f := h.filters.Load()
	if f == nil {
		logger.DebugC("discord", "Reaction received before ready, dropping")
		return
	}

	filter := f.ReactionAddGuild
	if r.GuildID == "" {
		filter = f.ReactionAddDirect
	}
	if filter == nil {
		return
	}

	if err := h.bridge.HandleReaction(context.Background(), "reaction_add", r.MessageReaction, r.Member, *filter); err != nil {
		logger.WarnCF("discord", "Failed to handle reaction_add event", map[string]interface{}{
			"message_id": r.MessageID,
			"error":      err.Error(),
		})
	}
}

func (h *Handler) onReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	f := h.filters.Load()
	if f == nil {
		logger.DebugC("discord", "Reaction received before ready, dropping")
		return
	}

	filter := f.ReactionRemoveGuild
	if r.GuildID == "" {
		filter = f.ReactionRemoveDirect
	}
	if filter == nil {
		return
	}

	// Reaction removals never carry member data; classification falls
	// back to self/user.
	if err := h.bridge.HandleReaction(context.Background(), "reaction_remove", r.MessageReaction, nil, *filter); err != nil {
		logger.WarnCF("discord", "Failed to handle reaction_remove event", map[string]interface{}{
			"message_id": r.MessageID,
			"error":      err.Error(),
		})
	}
}

func (h *Handler) bindFilters(botID string) *Filters {
	f := &Filters{}

	if p := h.cfg.Message.Direct; p != nil {
		mf := p.ForUser(botID)
		f.MessageDirect = &mf
	}
	if p := h.cfg.Message.Guild; p != nil {
		mf := p.ForUser(botID)
		f.MessageGuild = &mf
	}
	if p := h.cfg.ReactionAdd.Direct; p != nil {
		rf := p.ForReaction(botID)
		f.ReactionAddDirect = &rf
	}
	if p := h.cfg.ReactionAdd.Guild; p != nil {
		rf := p.ForReaction(botID)
		f.ReactionAddGuild = &rf
	}
	if p := h.cfg.ReactionRemove.Direct; p != nil {
		rf := p.ForReaction(botID)
		f.ReactionRemoveDirect = &rf
	}
	if p := h.cfg.ReactionRemove.Guild; p != nil {
		rf := p.ForReaction(botID)
		f.ReactionRemoveGuild = &rf
	}

	return f
}

// contextEnabled picks the direct or guild side of a policy pair by
// guild presence.
func (h *Handler) contextEnabled(pair config.PolicyPair, guildID string) bool {
	if guildID == "" {
		return pair.Direct != nil
	}
	return pair.Guild != nil
}
