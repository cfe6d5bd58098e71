// Package format provides the pure text helpers shared by the terminal
// renderers: compact durations and column-budget truncation.
package format

import (
	"fmt"
	"strings"
	"time"
)

// Duration renders d the way progress lines show it: whole seconds and up,
// e.g. "0s", "42s", "1m 05s", "2h 00m 07s", "1d 03h 00m 00s".
func Duration(d time.Duration) string {
	return humanDuration(d, false)
}

// DurationMillis renders d with a trailing millisecond part, e.g. "512ms",
// "1s 020ms", "1m 00s 000ms". Used for per-test durations.
func DurationMillis(d time.Duration) string {
	return humanDuration(d, true)
}

// Parens wraps s in parentheses. An empty s stays empty.
func Parens(s string) string {
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

func humanDuration(d time.Duration, millis bool) string {
	if d < 0 {
		d = 0
	}

	days := int64(d / (24 * time.Hour))
	hours := int64(d/time.Hour) % 24
	minutes := int64(d/time.Minute) % 60
	seconds := int64(d/time.Second) % 60
	ms := int64(d/time.Millisecond) % 1000

	var b strings.Builder
	leading := false
	part := func(value int64, suffix string, pad int) {
		if leading {
			fmt.Fprintf(&b, " %0*d%s", pad, value, suffix)
		} else {
			fmt.Fprintf(&b, "%d%s", value, suffix)
		}
		leading = true
	}

	if days > 0 {
		part(days, "d", 1)
	}
	if hours > 0 || leading {
		part(hours, "h", 2)
	}
	if minutes > 0 || leading {
		part(minutes, "m", 2)
	}
	if seconds > 0 || leading || !millis {
		part(seconds, "s", 2)
	}
	if millis && (ms > 0 || leading) {
		part(ms, "ms", 3)
	}
	if b.Len() == 0 {
		return "0ms"
	}
	return b.String()
}
