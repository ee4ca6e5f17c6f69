package utils

import "strings"

// Truncate shortens s to at most max runes, appending "..." when cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// ProgressBar renders a fixed-width countdown bar for timer messages.
func ProgressBar(remaining, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := remaining * width / total
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
