package contract

import (
	"fmt"
	"strings"
)

// Pluralize formats "n word" with an "s" appended unless n is 1.
func Pluralize(amount int, word string) string {
	if amount == 1 {
		return fmt.Sprintf("%d %s", amount, word)
	}
	return fmt.Sprintf("%d %ss", amount, word)
}

// TimeDisplay formats a second count as a compact human duration,
// e.g. 90 -> "1m 30s", 3700 -> "1h 1m 40s".
func TimeDisplay(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}

	var parts []string
	if h := seconds / 3600; h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
		seconds %= 3600
	}
	if m := seconds / 60; m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
		seconds %= 60
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}
