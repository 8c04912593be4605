package bridge

import (
	"strings"

	"github.com/gatehook/gatehook/pkg/logger"
)

const (
	// Discord caps message content at 2000 characters and thread names
	// at 100, counted in Unicode code points rather than bytes.
	MaxContentLen    = 2000
	MaxThreadNameLen = 100

	truncationSentinel = "…"
)

// Truncate shortens s to at most max code points. When a cut is made the
// result ends in the truncation sentinel and counts exactly max code
// points.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 1 {
		return ""
	}

	result := string(runes[:max-1]) + truncationSentinel

	logger.WarnCF("bridge", "Content truncated", map[string]interface{}{
		"original_len":  len(runes),
		"truncated_len": max,
	})

	return result
}

// TruncateThreadName cuts a thread name to the 100 code point limit.
// No sentinel is appended so operator-supplied names survive verbatim.
func TruncateThreadName(name string) string {
	runes := []rune(name)
	if len(runes) <= MaxThreadNameLen {
		return name
	}
	return string(runes[:MaxThreadNameLen])
}

// DeriveThreadName generates a thread name from message content: the
// first non-empty line, trimmed, cut to the thread name limit. Returns
// "Thread" when the content has no usable line.
func DeriveThreadName(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return TruncateThreadName(line)
		}
	}
	return "Thread"
}
