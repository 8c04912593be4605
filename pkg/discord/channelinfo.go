package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/gatehook/gatehook/pkg/logger"
)

// StateChannelInfo implements bridge.ChannelInfo with a cache-first
// lookup against the gateway session's state, falling back to the REST
// API on a miss. The state cache is owned by the gateway library and
// is never written from here.
type StateChannelInfo struct {
	session *discordgo.Session
}

func NewStateChannelInfo(session *discordgo.Session) *StateChannelInfo {
	return &StateChannelInfo{session: session}
}

// GetChannel returns a snapshot of the channel, or nil for channels
// that are not guild channels (DMs). The state accessors release their
// internal lock before returning; the returned pointer aliases the
// live cache entry, so a value copy is taken before the snapshot can
// cross any suspension point.
func (c *StateChannelInfo) GetChannel(ctx context.Context, guildID, channelID string) (*discordgo.Channel, error) {
	var cached *discordgo.Channel
	var err error
	cached, err = c.session.State.Channel(channelID)
	if err == nil {
		snapshot := *cached
		if !isGuildChannel(snapshot.Type) {
			return nil, nil
		}
		return &snapshot, nil
	}

	logger.InfoCF("discord", "Channel cache miss, fetching from API", map[string]interface{}{
		"channel_id": channelID,
	})

	channel, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching channel %s: %w", channelID, err)
	}
	if !isGuildChannel(channel.Type) {
		return nil, nil
	}
	return channel, nil
}

// IsThread reports whether the channel is a thread. Non-guild channels
// (DMs) are not threads; a failed lookup is returned as an error.
func (c *StateChannelInfo) IsThread(ctx context.Context, guildID, channelID string) (bool, error) {
	channel, err := c.GetChannel(ctx, guildID, channelID)
	if err != nil {
		return false, err
	}
	if channel == nil {
		return false, nil
	}
	return IsThreadType(channel.Type), nil
}

// IsThreadType reports whether the channel type code is one of the
// thread types (announcement, public, private).
func IsThreadType(t discordgo.ChannelType) bool {
	return t == discordgo.ChannelTypeGuildNewsThread ||
		t == discordgo.ChannelTypeGuildPublicThread ||
		t == discordgo.ChannelTypeGuildPrivateThread
}

func isGuildChannel(t discordgo.ChannelType) bool {
	return t != discordgo.ChannelTypeDM && t != discordgo.ChannelTypeGroupDM
}
