package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/gatehook/gatehook/pkg/bridge"
	"github.com/gatehook/gatehook/pkg/logger"
)

// Discord API error code returned when a thread already exists for the
// source message (MESSAGE_ALREADY_HAS_THREAD).
const threadAlreadyExistsCode = 160004

var validAutoArchiveMinutes = map[int]bool{
	60:    true,
	1440:  true,
	4320:  true,
	10080: true,
}

// SessionService implements bridge.Service against a live gateway
// session's REST client.
type SessionService struct {
	session *discordgo.Session
}

func NewSessionService(session *discordgo.Session) *SessionService {
	return &SessionService{session: session}
}

// ReplyInChannel replies to a message. The allowed-mentions override
// controls only the reply ping: the message still renders as a reply
// either way.
func (s *SessionService) ReplyInChannel(ctx context.Context, channelID, messageID, content string, mention bool) error {
	_, err := s.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Reference: &discordgo.MessageReference{
			MessageID: messageID,
			ChannelID: channelID,
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			RepliedUser: mention,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sending reply in channel %s: %w", channelID, err)
	}
	return nil
}

// ReactToMessage adds a reaction. The emoji is either a plain Unicode
// emoji or a custom emoji in "name:id" form.
func (s *SessionService) ReactToMessage(ctx context.Context, channelID, messageID, emoji string) error {
	apiName, err := emojiAPIName(emoji)
	if err != nil {
		return err
	}

	if err := s.session.MessageReactionAdd(channelID, messageID, apiName, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("adding reaction in channel %s: %w", channelID, err)
	}
	return nil
}

// CreateThreadFromMessage starts a thread rooted at the given message.
// Invalid auto-archive durations fall back to one day. The platform's
// thread-exists refusal is translated to bridge.ErrThreadAlreadyExists
// so the executor can reroute.
func (s *SessionService) CreateThreadFromMessage(ctx context.Context, channelID, messageID, name string, autoArchiveMinutes int) (*discordgo.Channel, error) {
	if !validAutoArchiveMinutes[autoArchiveMinutes] {
		logger.WarnCF("discord", "Invalid auto archive duration, using one day", map[string]interface{}{
			"requested": autoArchiveMinutes,
		})
		autoArchiveMinutes = 1440
	}

	thread, err := s.session.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: autoArchiveMinutes,
	}, discordgo.WithContext(ctx))
	if err != nil {
		if isThreadAlreadyExists(err) {
			return nil, fmt.Errorf("starting thread on message %s: %w", messageID, bridge.ErrThreadAlreadyExists)
		}
		return nil, fmt.Errorf("starting thread on message %s: %w", messageID, err)
	}
	return thread, nil
}

func (s *SessionService) SendMessageToChannel(ctx context.Context, channelID, content string) error {
	_, err := s.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sending message to channel %s: %w", channelID, err)
	}
	return nil
}

func (s *SessionService) GetMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	msg, err := s.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching message %s: %w", messageID, err)
	}
	return msg, nil
}

// emojiAPIName validates the emoji and returns the form the reaction
// endpoint expects: the emoji itself for Unicode, "name:id" for custom
// emojis.
func emojiAPIName(emoji string) (string, error) {
	name, id, found := strings.Cut(emoji, ":")
	if !found {
		return emoji, nil
	}
	if name == "" {
		return "", fmt.Errorf("custom emoji %q has no name", emoji)
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", fmt.Errorf("custom emoji %q has a non-numeric id", emoji)
	}
	return emoji, nil
}

func isThreadAlreadyExists(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) &&
		restErr.Message != nil &&
		restErr.Message.Code == threadAlreadyExistsCode
}
