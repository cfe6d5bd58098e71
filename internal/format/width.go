package format

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis marks text that was cut to fit a column budget.
const Ellipsis = "..."

// Width returns the number of terminal columns s occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateLeft fits s into budget columns. When s is too wide the head is
// dropped and replaced by Ellipsis, keeping the tail, which for assembly paths
// and test names is the most specific part. The result never exceeds budget.
func TruncateLeft(s string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if Width(s) <= budget {
		return s
	}
	if budget <= len(Ellipsis) {
		return Ellipsis[:budget]
	}

	keep := budget - len(Ellipsis)
	runes := []rune(s)
	start := len(runes)
	used := 0
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if used+w > keep {
			break
		}
		used += w
		start--
	}
	return Ellipsis + string(runes[start:])
}

// PadRight pads s with spaces up to width columns. Wider strings are
// returned unchanged.
func PadRight(s string, width int) string {
	if pad := width - Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
