package bridge

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Policy is an allow-set over sender kinds, parsed from a configuration
// string before the bot's identity is known. Binding it to a user ID
// produces a runtime filter.
type Policy struct {
	allowSelf    bool
	allowWebhook bool
	allowSystem  bool
	allowBot     bool
	allowUser    bool
}

// ParsePolicy parses a policy string:
//
//   - "all"            — every sender kind, including self
//   - "" (set, empty)  — every sender kind except self
//   - "user,bot,..."   — exactly the named kinds
//
// Unknown kind names are a configuration error. An unset variable is
// handled by the caller (the event is disabled entirely); this function
// only sees values that were explicitly set.
func ParsePolicy(s string) (Policy, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Policy{
			allowWebhook: true,
			allowSystem:  true,
			allowBot:     true,
			allowUser:    true,
		}, nil
	}

	if s == "all" {
		return Policy{
			allowSelf:    true,
			allowWebhook: true,
			allowSystem:  true,
			allowBot:     true,
			allowUser:    true,
		}, nil
	}

	var p Policy
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(name) {
		case "self":
			p.allowSelf = true
		case "webhook":
			p.allowWebhook = true
		case "system":
			p.allowSystem = true
		case "bot":
			p.allowBot = true
		case "user":
			p.allowUser = true
		default:
			return Policy{}, fmt.Errorf("unknown sender kind %q in policy %q", strings.TrimSpace(name), s)
		}
	}
	return p, nil
}

// Allows reports whether the policy admits the given sender kind.
func (p Policy) Allows(k SenderKind) bool {
	switch k {
	case SenderSelf:
		return p.allowSelf
	case SenderWebhook:
		return p.allowWebhook
	case SenderSystem:
		return p.allowSystem
	case SenderBot:
		return p.allowBot
	case SenderUser:
		return p.allowUser
	}
	return false
}

// ForUser binds the policy to the bot's user ID, producing a message
// filter. Only possible once the ready event has delivered the ID.
func (p Policy) ForUser(botID string) MessageFilter {
	return MessageFilter{botID: botID, policy: p}
}

// ForReaction binds the policy to the bot's user ID, producing a
// reaction filter.
func (p Policy) ForReaction(botID string) ReactionFilter {
	return ReactionFilter{botID: botID, policy: p}
}

// MessageFilter is a policy bound to the bot's own identifier.
type MessageFilter struct {
	botID  string
	policy Policy
}

// ShouldProcess classifies the message sender and tests membership
// against the allow-set.
func (f MessageFilter) ShouldProcess(m *discordgo.Message) bool {
	return f.policy.Allows(ClassifyMessage(m, f.botID))
}

// ReactionFilter is a policy bound to the bot's own identifier,
// operating on the collapsed reaction sender set.
type ReactionFilter struct {
	botID  string
	policy Policy
}

// ShouldProcess classifies the reaction sender and tests membership
// against the allow-set. member may be nil (DMs, reaction removals).
func (f ReactionFilter) ShouldProcess(r *discordgo.MessageReaction, member *discordgo.Member) bool {
	return f.policy.Allows(ClassifyReaction(r, member, f.botID))
}
