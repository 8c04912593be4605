package bridge

import (
	"github.com/bwmarrin/discordgo"
)

// ActionTarget identifies the message a webhook response's actions
// operate on. It is derived once per event and passed to the executor.
// SourceContent feeds thread-name derivation; it is empty for events
// that carry no content (reactions).
type ActionTarget struct {
	MessageID     string
	ChannelID     string
	GuildID       string
	SourceContent string
}

func TargetFromMessage(m *discordgo.Message) ActionTarget {
	return ActionTarget{
		MessageID:     m.ID,
		ChannelID:     m.ChannelID,
		GuildID:       m.GuildID,
		SourceContent: m.Content,
	}
}

func TargetFromReaction(r *discordgo.MessageReaction) ActionTarget {
	return ActionTarget{
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		GuildID:   r.GuildID,
	}
}
