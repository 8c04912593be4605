package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/gatehook/gatehook/pkg/logger"
	"github.com/gatehook/gatehook/pkg/webhook"
)

// ErrThreadAlreadyExists is reported by Service implementations when
// the platform refuses thread creation because the source message
// already has one. The executor recovers by posting into the existing
// thread.
var ErrThreadAlreadyExists = errors.New("message already has a thread")

// ErrThreadNotSupported is returned when a thread action targets a
// direct message, where the platform has no threads.
var ErrThreadNotSupported = errors.New("thread action not supported in direct messages")

// Service is the subset of platform REST operations the bridge
// executes actions through.
type Service interface {
	ReplyInChannel(ctx context.Context, channelID, messageID, content string, mention bool) error
	ReactToMessage(ctx context.Context, channelID, messageID, emoji string) error
	CreateThreadFromMessage(ctx context.Context, channelID, messageID, name string, autoArchiveMinutes int) (*discordgo.Channel, error)
	SendMessageToChannel(ctx context.Context, channelID, content string) error
	GetMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error)
}

// ChannelInfo resolves channel metadata, cache-first with a REST
// fallback. GetChannel returns nil without error for channels that are
// not guild channels.
type ChannelInfo interface {
	GetChannel(ctx context.Context, guildID, channelID string) (*discordgo.Channel, error)
	IsThread(ctx context.Context, guildID, channelID string) (bool, error)
}

// Sender forwards an event payload to the webhook endpoint and returns
// the parsed response.
type Sender interface {
	Send(ctx context.Context, handler string, payload any) (*webhook.Response, error)
}

// Bridge runs the event pipeline: filter, enrich, deliver, then
// execute the response's back-actions. It owns no mutable state; every
// event is processed independently.
type Bridge struct {
	service  Service
	channels ChannelInfo
	sender   Sender
}

func New(service Service, channels ChannelInfo, sender Sender) *Bridge {
	return &Bridge{
		service:  service,
		channels: channels,
		sender:   sender,
	}
}

// HandleReady forwards the ready payload. No filtering and no action
// execution apply to lifecycle events.
func (b *Bridge) HandleReady(ctx context.Context, r *discordgo.Ready) error {
	_, err := b.dispatch(ctx, "ready", ReadyPayload{Ready: r})
	return err
}

// HandleResumed forwards the session-resume payload.
func (b *Bridge) HandleResumed(ctx context.Context, r *discordgo.Resumed) error {
	_, err := b.dispatch(ctx, "resumed", ResumedPayload{Resumed: r})
	return err
}

// HandleMessage filters the message, enriches guild messages with a
// channel snapshot, forwards the payload, and executes any actions the
// webhook returns.
func (b *Bridge) HandleMessage(ctx context.Context, m *discordgo.Message, filter MessageFilter) error {
	if !filter.ShouldProcess(m) {
		logger.DebugCF("bridge", "Message dropped by filter", map[string]interface{}{
			"message_id": m.ID,
			"sender":     ClassifyMessage(m, filter.botID).String(),
		})
		return nil
	}

	payload := MessagePayload{Message: m}
	if m.GuildID != "" {
		payload.Channel = b.lookupChannel(ctx, m.GuildID, m.ChannelID)
	}

	resp, err := b.dispatch(ctx, "message", payload)
	if err != nil {
		return err
	}

	b.ExecuteActions(ctx, TargetFromMessage(m), resp)
	return nil
}

// HandleMessageUpdate forwards the partial update payload. No filter
// applies: updates carry only changed fields, so sender identity is
// not asserted on. Actions are not executed for update events.
func (b *Bridge) HandleMessageUpdate(ctx context.Context, m *discordgo.Message) error {
	payload := MessageUpdatePayload{MessageUpdate: m}
	if m.GuildID != "" {
		payload.Channel = b.lookupChannel(ctx, m.GuildID, m.ChannelID)
	}

	_, err := b.dispatch(ctx, "message_update", payload)
	return err
}

// HandleMessageDelete forwards the deletion notice. The platform only
// delivers identifiers, never the deleted content.
func (b *Bridge) HandleMessageDelete(ctx context.Context, channelID, messageID, guildID string) error {
	_, err := b.dispatch(ctx, "message_delete", MessageDeletePayload{
		MessageDelete: MessageDelete{
			ID:        messageID,
			ChannelID: channelID,
			GuildID:   guildID,
		},
	})
	return err
}

// HandleMessageDeleteBulk forwards a bulk deletion notice.
func (b *Bridge) HandleMessageDeleteBulk(ctx context.Context, channelID string, messageIDs []string, guildID string) error {
	_, err := b.dispatch(ctx, "message_delete_bulk", MessageDeleteBulkPayload{
		MessageDeleteBulk: MessageDeleteBulk{
			IDs:       messageIDs,
			ChannelID: channelID,
			GuildID:   guildID,
		},
	})
	return err
}

// HandleReaction filters the reaction, enriches guild reactions with a
// channel snapshot, forwards the payload under the given handler kind
// (reaction_add or reaction_remove), and executes returned actions.
func (b *Bridge) HandleReaction(ctx context.Context, handler string, r *discordgo.MessageReaction, member *discordgo.Member, filter ReactionFilter) error {
	if !filter.ShouldProcess(r, member) {
		logger.DebugCF("bridge", "Reaction dropped by filter", map[string]interface{}{
			"message_id": r.MessageID,
			"sender":     ClassifyReaction(r, member, filter.botID).String(),
		})
		return nil
	}

	payload := ReactionPayload{Reaction: r}
	if r.GuildID != "" {
		payload.Channel = b.lookupChannel(ctx, r.GuildID, r.ChannelID)
	}

	resp, err := b.dispatch(ctx, handler, payload)
	if err != nil {
		return err
	}

	b.ExecuteActions(ctx, TargetFromReaction(r), resp)
	return nil
}

// lookupChannel resolves the channel snapshot for payload enrichment.
// Lookup failures are recovered locally: the event is forwarded
// without a channel.
func (b *Bridge) lookupChannel(ctx context.Context, guildID, channelID string) *discordgo.Channel {
	ch, err := b.channels.GetChannel(ctx, guildID, channelID)
	if err != nil {
		logger.InfoCF("bridge", "Channel lookup failed, forwarding without channel", map[string]interface{}{
			"channel_id": channelID,
			"error":      err.Error(),
		})
		return nil
	}
	return ch
}

// dispatch forwards one payload and normalizes webhook-side failures:
// an oversized response drops the actions but not the event.
func (b *Bridge) dispatch(ctx context.Context, handler string, payload any) (*webhook.Response, error) {
	deliveryID := uuid.NewString()

	resp, err := b.sender.Send(ctx, handler, payload)
	if err != nil {
		if errors.Is(err, webhook.ErrResponseTooLarge) {
			logger.WarnCF("bridge", "Webhook response too large, skipping actions", map[string]interface{}{
				"handler":     handler,
				"delivery_id": deliveryID,
			})
			return nil, nil
		}
		return nil, fmt.Errorf("delivering %s event: %w", handler, err)
	}

	logger.InfoCF("bridge", "Event forwarded to webhook", map[string]interface{}{
		"handler":     handler,
		"delivery_id": deliveryID,
		"actions":     len(resp.Actions),
	})
	return resp, nil
}

// ExecuteActions runs the response's actions sequentially in source
// order. A failed action is logged and does not abort the rest.
func (b *Bridge) ExecuteActions(ctx context.Context, target ActionTarget, resp *webhook.Response) {
	if resp == nil {
		return
	}
	for i, action := range resp.Actions {
		if err := b.executeAction(ctx, target, action); err != nil {
			logger.ErrorCF("bridge", "Failed to execute action, continuing with next", map[string]interface{}{
				"action":     action.Type,
				"index":      i,
				"message_id": target.MessageID,
				"error":      err.Error(),
			})
		}
	}
}

func (b *Bridge) executeAction(ctx context.Context, target ActionTarget, action webhook.Action) error {
	switch action.Type {
	case "reply":
		return b.executeReply(ctx, target, action.Reply)
	case "react":
		return b.executeReact(ctx, target, action.React)
	case "thread":
		return b.executeThread(ctx, target, action.Thread)
	default:
		logger.WarnCF("bridge", "Unknown action type, skipping", map[string]interface{}{
			"type": action.Type,
		})
		return nil
	}
}

func (b *Bridge) executeReply(ctx context.Context, target ActionTarget, params *webhook.ReplyAction) error {
	content := Truncate(params.Content, MaxContentLen)

	if err := b.service.ReplyInChannel(ctx, target.ChannelID, target.MessageID, content, params.Mention); err != nil {
		return fmt.Errorf("replying to message %s: %w", target.MessageID, err)
	}

	logger.InfoCF("bridge", "Executed reply action", map[string]interface{}{
		"message_id": target.MessageID,
		"mention":    params.Mention,
	})
	return nil
}

func (b *Bridge) executeReact(ctx context.Context, target ActionTarget, params *webhook.ReactAction) error {
	if err := b.service.ReactToMessage(ctx, target.ChannelID, target.MessageID, params.Emoji); err != nil {
		return fmt.Errorf("reacting to message %s: %w", target.MessageID, err)
	}

	logger.InfoCF("bridge", "Executed react action", map[string]interface{}{
		"message_id": target.MessageID,
		"emoji":      params.Emoji,
	})
	return nil
}

// executeThread posts content into a thread rooted at the target
// message, creating the thread first unless the target channel already
// is one. Guild-only: threads do not exist in direct messages.
func (b *Bridge) executeThread(ctx context.Context, target ActionTarget, params *webhook.ThreadAction) error {
	if target.GuildID == "" {
		return ErrThreadNotSupported
	}

	isThread, err := b.channels.IsThread(ctx, target.GuildID, target.ChannelID)
	if err != nil {
		return fmt.Errorf("resolving channel %s: %w", target.ChannelID, err)
	}

	content := Truncate(params.Content, MaxContentLen)

	if isThread {
		logger.InfoC("bridge", "Target is already a thread, skipping thread creation")
		if err := b.service.SendMessageToChannel(ctx, target.ChannelID, content); err != nil {
			return fmt.Errorf("posting to thread %s: %w", target.ChannelID, err)
		}
		return nil
	}

	name := DeriveThreadName(target.SourceContent)
	if params.HasName {
		name = TruncateThreadName(params.Name)
	}

	thread, err := b.service.CreateThreadFromMessage(ctx, target.ChannelID, target.MessageID, name, params.AutoArchiveDuration)
	if err != nil {
		if errors.Is(err, ErrThreadAlreadyExists) {
			return b.postToExistingThread(ctx, target, content)
		}
		return fmt.Errorf("creating thread from message %s: %w", target.MessageID, err)
	}

	logger.InfoCF("bridge", "Created thread", map[string]interface{}{
		"thread_id":   thread.ID,
		"thread_name": name,
	})

	if err := b.service.SendMessageToChannel(ctx, thread.ID, content); err != nil {
		return fmt.Errorf("posting to thread %s: %w", thread.ID, err)
	}
	return nil
}

// postToExistingThread recovers from the platform's thread-exists
// refusal: fetch the message, locate its thread, post there.
func (b *Bridge) postToExistingThread(ctx context.Context, target ActionTarget, content string) error {
	msg, err := b.service.GetMessage(ctx, target.ChannelID, target.MessageID)
	if err != nil {
		return fmt.Errorf("fetching message %s to locate its thread: %w", target.MessageID, err)
	}
	if msg.Thread == nil {
		return fmt.Errorf("message %s reports an existing thread but none was found", target.MessageID)
	}

	logger.InfoCF("bridge", "Thread already exists, posting into it", map[string]interface{}{
		"thread_id": msg.Thread.ID,
	})

	if err := b.service.SendMessageToChannel(ctx, msg.Thread.ID, content); err != nil {
		return fmt.Errorf("posting to thread %s: %w", msg.Thread.ID, err)
	}
	return nil
}
