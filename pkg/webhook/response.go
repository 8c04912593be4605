package webhook

import (
	"encoding/json"
	"fmt"
)

// DefaultAutoArchiveMinutes is applied when a thread action omits
// auto_archive_duration.
const DefaultAutoArchiveMinutes = 1440

// Response is the body returned by the webhook endpoint. A missing
// body, an empty object, or an empty actions array all mean "no
// actions".
type Response struct {
	Actions []Action `json:"actions"`
}

// Action is a tagged union discriminated on "type". Exactly one of the
// parameter fields is non-nil for known types; unknown types keep the
// tag and carry no parameters, and are skipped at execution time so
// the taxonomy can grow without breaking older bridges.
type Action struct {
	Type   string
	Reply  *ReplyAction
	React  *ReactAction
	Thread *ThreadAction
}

// ReplyAction replies to the source message. Mention controls whether
// the original author is pinged by the reply.
type ReplyAction struct {
	Content string `json:"content"`
	Mention bool   `json:"mention"`
}

// ReactAction adds a reaction to the source message. Emoji is either a
// Unicode emoji or a custom emoji in "name:id" form.
type ReactAction struct {
	Emoji string `json:"emoji"`
}

// ThreadAction creates a thread from the source message (or posts into
// the existing one) and sends Content there. Name is optional; when
// absent the name is derived from the source message.
type ThreadAction struct {
	Name                string `json:"-"`
	HasName             bool   `json:"-"`
	Content             string `json:"content"`
	AutoArchiveDuration int    `json:"auto_archive_duration"`
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("decoding action: %w", err)
	}

	a.Type = head.Type
	switch head.Type {
	case "reply":
		var p ReplyAction
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decoding reply action: %w", err)
		}
		a.Reply = &p
	case "react":
		var p ReactAction
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decoding react action: %w", err)
		}
		a.React = &p
	case "thread":
		var raw struct {
			Name                *string `json:"name"`
			Content             string  `json:"content"`
			AutoArchiveDuration int     `json:"auto_archive_duration"`
		}
		raw.AutoArchiveDuration = DefaultAutoArchiveMinutes
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decoding thread action: %w", err)
		}
		p := ThreadAction{
			Content:             raw.Content,
			AutoArchiveDuration: raw.AutoArchiveDuration,
		}
		if raw.Name != nil {
			p.Name = *raw.Name
			p.HasName = true
		}
		a.Thread = &p
	}
	return nil
}
