package ui

import "unicode/utf8"

// Truncate shortens text to maxLen runes with a "..." suffix.
// UTF-8 safe.
func Truncate(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
