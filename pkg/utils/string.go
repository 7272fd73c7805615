package utils

// Truncate shortens s to at most maxLen runes, appending an ellipsis when
// anything was cut. Counting runes keeps multi-byte characters intact, so
// truncated log fields stay valid UTF-8.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
