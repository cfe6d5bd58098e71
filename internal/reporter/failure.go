package reporter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/AndreyAkinshin/livetest/internal/format"
	"github.com/AndreyAkinshin/livetest/internal/terminal"
)

const (
	indent       = "  "
	doubleIndent = indent + indent
)

// outcomeLabel returns the word and colour a finished test is shown with.
func outcomeLabel(o Outcome) (string, terminal.Color) {
	switch o {
	case Failed:
		return "failed", terminal.Red
	case Error:
		return "error", terminal.DarkRed
	case Timeout:
		return "failed (timeout)", terminal.Magenta
	case Canceled:
		return "failed (canceled)", terminal.DarkYellow
	case Skipped:
		return "skipped", terminal.Yellow
	default:
		return "passed", terminal.Green
	}
}

// writeTestResult prints one finished test: the outcome line, then for
// anything but a pass the messages, expected/actual values, stack traces,
// causes, and captured output.
func writeTestResult(t terminal.Terminal, w WorkerInfo, showAssembly bool, res TestResult) {
	label, color := outcomeLabel(res.Outcome)
	t.SetColor(color)
	t.Append(label)
	t.ResetColor()
	t.Append(" " + res.DisplayName + " ")
	t.SetColor(terminal.DarkGray)
	t.Append(format.Parens(format.DurationMillis(res.Duration)))
	t.ResetColor()
	if showAssembly {
		t.AppendLine("")
		t.Append(indent + "from ")
		appendWorker(t, w)
	}
	t.AppendLine("")

	writeInformativeMessage(t, res.InformativeMessage)
	writeErrors(t, res)
	writeExpectedActual(t, res.Expected, res.Actual)
	writeOutput(t, "Standard output", res.Stdout)
	writeOutput(t, "Error output", res.Stderr)
}

// appendWorker writes the container path, as a link where possible, with its
// framework and architecture.
func appendWorker(t terminal.Terminal, w WorkerInfo) {
	t.AppendLink(w.Assembly, 0)
	if tags := workerTags(w); tags != "" {
		t.Append(" " + tags)
	}
}

func workerTags(w WorkerInfo) string {
	var parts []string
	if w.TargetFramework != "" {
		parts = append(parts, w.TargetFramework)
	}
	if w.Architecture != "" {
		parts = append(parts, w.Architecture)
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, "|") + ")"
}

func workerLabel(w WorkerInfo) string {
	if tags := workerTags(w); tags != "" {
		return w.Name + " " + tags
	}
	return w.Name
}

func writeInformativeMessage(t terminal.Terminal, msg string) {
	if strings.TrimSpace(msg) == "" {
		return
	}
	appendIndented(t, msg, indent)
}

// writeErrors prints the error chain. The type prefix is only shown when a
// stack trace came with the error; without one the message is usually a
// plain assertion text and the type adds nothing.
func writeErrors(t terminal.Terminal, res TestResult) {
	first := ErrorInfo{Message: res.ErrorMessage}
	if len(res.Errors) > 0 {
		first = res.Errors[0]
		if res.ErrorMessage != "" {
			first.Message = res.ErrorMessage
		}
	}

	if strings.TrimSpace(first.Message) != "" || first.Type != "" {
		msg := first.Message
		if first.StackTrace != "" && first.Type != "" {
			msg = first.Type + ": " + msg
		}
		t.SetColor(terminal.Red)
		appendIndented(t, msg, indent)
		t.ResetColor()
	}
	writeStackTrace(t, first.StackTrace)

	for _, cause := range res.Errors[min(1, len(res.Errors)):] {
		t.SetColor(terminal.Red)
		msg := cause.Message
		if cause.Type != "" {
			msg = cause.Type + ": " + msg
		}
		appendIndented(t, "---> "+msg, indent)
		t.ResetColor()
		writeStackTrace(t, cause.StackTrace)
	}
}

func writeExpectedActual(t terminal.Terminal, expected, actual string) {
	if strings.TrimSpace(expected) == "" || strings.TrimSpace(actual) == "" {
		return
	}
	t.SetColor(terminal.Red)
	t.AppendLine(indent + "Expected")
	appendIndented(t, expected, doubleIndent)
	t.AppendLine(indent + "Actual")
	appendIndented(t, actual, doubleIndent)
	t.ResetColor()
}

func writeOutput(t terminal.Terminal, header, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	t.SetColor(terminal.DarkGray)
	t.AppendLine(indent + header)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	appendIndented(t, normalizeControl(strings.TrimRight(text, "\n")), doubleIndent)
	t.ResetColor()
}

func appendIndented(t terminal.Terminal, text, prefix string) {
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		t.AppendLine(prefix + line)
	}
}

var (
	// "   at Namespace.Type.Method() in /src/File.cs:line 42"
	atFrame = regexp.MustCompile(`^\s*at (.+?)(?: in (.+):line (\d+))?\s*$`)
	// "\t/src/pkg/file_test.go:42 +0x1d"
	goFrame = regexp.MustCompile(`^\s*(\S+\.go):(\d+)(?: \+0x[0-9a-f]+)?\s*$`)
)

// writeStackTrace prints the frames of trace, linking the file of every
// frame it recognises. Anything else is printed as is.
func writeStackTrace(t terminal.Terminal, trace string) {
	if strings.TrimSpace(trace) == "" {
		return
	}
	t.SetColor(terminal.DarkGray)
	defer t.ResetColor()
	for _, frame := range strings.Split(strings.ReplaceAll(trace, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(frame) == "" {
			continue
		}
		if m := atFrame.FindStringSubmatch(frame); m != nil {
			t.Append(doubleIndent + "at " + m[1])
			if m[2] != "" {
				line, _ := strconv.Atoi(m[3])
				t.Append(" in ")
				t.AppendLink(m[2], line)
			}
			t.AppendLine("")
			continue
		}
		if m := goFrame.FindStringSubmatch(frame); m != nil {
			line, _ := strconv.Atoi(m[2])
			t.Append(doubleIndent)
			t.AppendLink(m[1], line)
			t.AppendLine("")
			continue
		}
		t.AppendLine(doubleIndent + strings.TrimSpace(frame))
	}
}

// normalizeControl replaces control characters that would move the cursor
// or change colours with their visible Control Pictures glyphs.
func normalizeControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n':
			return r
		case r < 0x20:
			return 0x2400 + r
		case r == 0x7f:
			return 0x2421
		default:
			return r
		}
	}, s)
}
