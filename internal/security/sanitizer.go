package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// SanitizeString trims and bounds user-supplied text before it is stored or
// echoed back into a chat.
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	if len(input) > 1000 {
		input = input[:1000]
	}

	return input
}

// SanitizeHTML strips all HTML tags. Display names and imported question text
// pass through here because quiz messages are sent with HTML parse mode.
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}

// SanitizeDisplayName cleans a Telegram name or username for rendering
// inside leaderboards and reveal messages.
func SanitizeDisplayName(input string) string {
	return SanitizeString(SanitizeHTML(input))
}

// ValidateOptionKey reports whether a callback carried a legal option label.
func ValidateOptionKey(key string) bool {
	switch key {
	case "a", "b", "c", "d":
		return true
	}
	return false
}
