package bridge

import (
	"github.com/bwmarrin/discordgo"
)

// SenderKind categorizes the originator of a message or reaction.
// Classification is total and mutually exclusive: every event maps to
// exactly one kind.
type SenderKind int

const (
	SenderSelf SenderKind = iota
	SenderWebhook
	SenderSystem
	SenderBot
	SenderUser
)

func (k SenderKind) String() string {
	switch k {
	case SenderSelf:
		return "self"
	case SenderWebhook:
		return "webhook"
	case SenderSystem:
		return "system"
	case SenderBot:
		return "bot"
	case SenderUser:
		return "user"
	}
	return "unknown"
}

// ClassifyMessage determines the sender kind of a message. The order
// matters: webhooks carry the bot flag, so the webhook rule must run
// before the bot rule, and self must run first so the bot's own traffic
// never matches anything else.
func ClassifyMessage(m *discordgo.Message, botID string) SenderKind {
	if m.Author != nil && m.Author.ID == botID {
		return SenderSelf
	}
	if m.WebhookID != "" {
		return SenderWebhook
	}
	if m.Author != nil && m.Author.System {
		return SenderSystem
	}
	if m.Author != nil && m.Author.Bot {
		return SenderBot
	}
	return SenderUser
}

// ClassifyReaction determines the sender kind of a reaction. Reactions
// have no webhook or system originators, so the set collapses to
// self, bot, and user. The member is only delivered on guild
// reaction-add events; without it the bot flag is unknown and the
// sender falls through to user.
func ClassifyReaction(r *discordgo.MessageReaction, member *discordgo.Member, botID string) SenderKind {
	if r.UserID == botID {
		return SenderSelf
	}
	if member != nil && member.User != nil && member.User.Bot {
		return SenderBot
	}
	return SenderUser
}
