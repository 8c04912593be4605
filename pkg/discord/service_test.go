package discord

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestEmojiAPIName_Unicode(t *testing.T) {
	for _, emoji := range []string{"👍", "🎉", "❤️"} {
		got, err := emojiAPIName(emoji)
		if err != nil {
			t.Errorf("emojiAPIName(%q) failed: %v", emoji, err)
		}
		if got != emoji {
			t.Errorf("Unicode emoji should pass through unchanged, got %q", got)
		}
	}
}

func TestEmojiAPIName_Custom(t *testing.T) {
	got, err := emojiAPIName("customemoji:123456789")
	if err != nil {
		t.Fatalf("emojiAPIName failed: %v", err)
	}
	if got != "customemoji:123456789" {
		t.Errorf("Custom emoji = %q, want name:id form", got)
	}
}

func TestEmojiAPIName_Invalid(t *testing.T) {
	for _, emoji := range []string{"name:notanumber", ":123", "name:"} {
		if _, err := emojiAPIName(emoji); err == nil {
			t.Errorf("emojiAPIName(%q) should fail", emoji)
		}
	}
}

func TestIsThreadAlreadyExists(t *testing.T) {
	matching := &discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{Code: threadAlreadyExistsCode},
	}
	if !isThreadAlreadyExists(matching) {
		t.Error("Platform code 160004 should be recognized")
	}
	if !isThreadAlreadyExists(fmt.Errorf("wrapped: %w", matching)) {
		t.Error("Wrapped REST errors should be recognized")
	}

	other := &discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{Code: 50001},
	}
	if isThreadAlreadyExists(other) {
		t.Error("Other platform codes should not match")
	}
	if isThreadAlreadyExists(errors.New("plain error")) {
		t.Error("Non-REST errors should not match")
	}
	if isThreadAlreadyExists(&discordgo.RESTError{}) {
		t.Error("REST error without an API message should not match")
	}
}

func TestIsThreadType(t *testing.T) {
	threads := []discordgo.ChannelType{
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread,
	}
	for _, ct := range threads {
		if !IsThreadType(ct) {
			t.Errorf("Channel type %d should be a thread", ct)
		}
	}

	nonThreads := []discordgo.ChannelType{
		discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeDM,
		discordgo.ChannelTypeGuildVoice,
		discordgo.ChannelTypeGuildCategory,
	}
	for _, ct := range nonThreads {
		if IsThreadType(ct) {
			t.Errorf("Channel type %d should not be a thread", ct)
		}
	}
}
