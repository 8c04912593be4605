package bridge

import (
	"github.com/bwmarrin/discordgo"
)

// Webhook payloads. Each payload carries exactly one top-level key
// naming the event kind, plus an optional "channel" key with the
// enriched guild channel. The channel key is omitted entirely (never
// null) when no snapshot is available.

type MessagePayload struct {
	Message *discordgo.Message `json:"message"`
	Channel *discordgo.Channel `json:"channel,omitempty"`
}

type MessageUpdatePayload struct {
	// Partial by platform definition: only changed fields plus the
	// always-present identifiers arrive on the gateway.
	MessageUpdate *discordgo.Message `json:"message_update"`
	Channel       *discordgo.Channel `json:"channel,omitempty"`
}

type MessageDelete struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id,omitempty"`
}

type MessageDeletePayload struct {
	MessageDelete MessageDelete `json:"message_delete"`
}

type MessageDeleteBulk struct {
	IDs       []string `json:"ids"`
	ChannelID string   `json:"channel_id"`
	GuildID   string   `json:"guild_id,omitempty"`
}

type MessageDeleteBulkPayload struct {
	MessageDeleteBulk MessageDeleteBulk `json:"message_delete_bulk"`
}

type ReactionPayload struct {
	Reaction *discordgo.MessageReaction `json:"reaction"`
	Channel  *discordgo.Channel         `json:"channel,omitempty"`
}

type ReadyPayload struct {
	Ready *discordgo.Ready `json:"ready"`
}

type ResumedPayload struct {
	Resumed *discordgo.Resumed `json:"resumed"`
}
