package util

// Truncate shortens s to at most maxLen bytes, replacing the tail with
// "..." when truncation happens. For maxLen below 4 the cut is hard,
// with no ellipsis.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
