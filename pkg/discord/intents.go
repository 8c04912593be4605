package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/gatehook/gatehook/pkg/config"
)

// ComputeIntents derives the minimal gateway intent set from the
// configured event kinds. Message content is requested whenever any
// message or message-update policy is configured; the guilds intent is
// added alongside guild message policies so the channel cache can
// populate for payload enrichment.
func ComputeIntents(cfg *config.Config) discordgo.Intent {
	var intents discordgo.Intent

	guildMessages := cfg.Message.Guild != nil ||
		cfg.MessageUpdate.Guild != nil ||
		cfg.MessageDelete.Guild != nil ||
		cfg.MessageDeleteBulk != nil
	directMessages := cfg.Message.Direct != nil ||
		cfg.MessageUpdate.Direct != nil ||
		cfg.MessageDelete.Direct != nil

	if guildMessages {
		intents |= discordgo.IntentGuildMessages
	}
	if directMessages {
		intents |= discordgo.IntentDirectMessages
	}
	if cfg.Message.Enabled() || cfg.MessageUpdate.Enabled() {
		intents |= discordgo.IntentMessageContent
	}
	if cfg.Message.Guild != nil {
		intents |= discordgo.IntentGuilds
	}

	if cfg.ReactionAdd.Guild != nil || cfg.ReactionRemove.Guild != nil {
		intents |= discordgo.IntentGuildMessageReactions
	}
	if cfg.ReactionAdd.Direct != nil || cfg.ReactionRemove.Direct != nil {
		intents |= discordgo.IntentDirectMessageReactions
	}

	return intents
}
