package testparser

import (
	"regexp"
	"strings"

	"github.com/AndreyAkinshin/livetest/internal/reporter"
)

var (
	// "    foo_test.go:15: expected 42, got 0"
	goMessageLine = regexp.MustCompile(`^(\s+)(\S+\.go:\d+): ?(.*)$`)
	// "panic: boom [recovered]"
	goPanicLine = regexp.MustCompile(`^\s*panic: (.*?)(?: \[recovered\])?\s*$`)
)

// failure is what can be recovered from the output of one test.
type failure struct {
	messages  []string
	locations []string
	panic     *reporter.ErrorInfo
	expected  string
	actual    string
	output    []string
}

// parseFailure splits the output lines of a test into its t.Error messages,
// a panic with its goroutine trace, testify's expected/actual values, and
// whatever else the test printed.
func parseFailure(lines []string) failure {
	var f failure
	msgIndent := -1
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r\n")
		if isFraming(line) {
			msgIndent = -1
			continue
		}

		if m := goPanicLine.FindStringSubmatch(line); m != nil && f.panic == nil && !strings.HasPrefix(line, "\t") {
			f.panic = &reporter.ErrorInfo{Type: "panic", Message: m[1]}
			f.panic.StackTrace, i = collectTrace(lines, i+1)
			msgIndent = -1
			continue
		}

		if m := goMessageLine.FindStringSubmatch(line); m != nil {
			msgIndent = len(m[1])
			f.locations = append(f.locations, m[2])
			f.messages = append(f.messages, m[3])
			continue
		}

		if msgIndent >= 0 && indentOf(line) > msgIndent {
			cont := strings.TrimSpace(line)
			f.captureValue(cont)
			last := len(f.messages) - 1
			if f.messages[last] == "" {
				f.messages[last] = cont
			} else {
				f.messages[last] += "\n" + cont
			}
			continue
		}

		msgIndent = -1
		f.output = append(f.output, line)
	}
	return f
}

// captureValue records testify's "expected: " and "actual  : " lines. Only
// the first pair is kept.
func (f *failure) captureValue(line string) {
	if v, ok := strings.CutPrefix(line, "expected:"); ok && f.expected == "" {
		f.expected = strings.TrimSpace(v)
		return
	}
	if rest, ok := strings.CutPrefix(line, "actual"); ok && f.actual == "" {
		if v, ok := strings.CutPrefix(strings.TrimLeft(rest, " "), ":"); ok {
			f.actual = strings.TrimSpace(v)
		}
	}
}

// collectTrace gathers the lines after a panic message up to the next
// framing line. It returns the trace and the index of its last line.
func collectTrace(lines []string, start int) (string, int) {
	var trace []string
	i := start
	for ; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r\n")
		if isFraming(line) {
			break
		}
		trimmed := strings.TrimSpace(line)
		// The re-raised panic repeats the message under the first one.
		if trimmed == "" || strings.HasPrefix(trimmed, "panic: ") {
			continue
		}
		trace = append(trace, line)
	}
	return strings.Join(trace, "\n"), i - 1
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// apply copies the failure into res.
func (f failure) apply(res *reporter.TestResult) {
	if len(f.messages) > 0 {
		res.Errors = append(res.Errors, reporter.ErrorInfo{
			Message:    strings.Join(f.messages, "\n"),
			StackTrace: strings.Join(f.locations, "\n"),
		})
	}
	if f.panic != nil {
		res.Errors = append(res.Errors, *f.panic)
	}
	if f.expected != "" && f.actual != "" {
		res.Expected = f.expected
		res.Actual = f.actual
	}
	res.Stdout = joinOutput(f.output)
}

// skipReason returns the message passed to t.Skip, if any.
func skipReason(lines []string) string {
	var reasons []string
	for _, line := range lines {
		if m := goMessageLine.FindStringSubmatch(strings.TrimRight(line, "\r\n")); m != nil {
			reasons = append(reasons, m[3])
		}
	}
	return strings.Join(reasons, "\n")
}

func joinOutput(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		if isFraming(line) {
			continue
		}
		b.WriteString(strings.TrimRight(line, "\r\n"))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
