// Package output provides formatted output utilities for the CLI. It covers
// everything the CLI prints itself: help, version, configuration listings and
// CLI-level errors. Test run output goes through the reporter instead.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"

	"github.com/AndreyAkinshin/livetest/internal/format"
)

// Writer handles CLI output formatting.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

// New creates a new Writer with default settings. Colour follows
// fatih/color's detection, which honours NO_COLOR and TERM=dumb.
func New() *Writer {
	return &Writer{
		out:   colorable.NewColorableStdout(),
		err:   colorable.NewColorableStderr(),
		color: !color.NoColor,
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// SetColor forces colour on or off.
func (w *Writer) SetColor(enabled bool) {
	w.color = enabled
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Error writes to stderr.
func (w *Writer) Error(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format, args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s", w.paint(fmt.Sprintf(format, args...), color.FgGreen))
}

// Warning prints a warning message to stderr (skipped in quiet mode).
func (w *Writer) Warning(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Errorln("%s %s", w.paint("warning:", color.FgYellow), fmt.Sprintf(format, args...))
}

// ErrorPrefix prints an error message with the livetest prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	w.Errorln("%s %s", w.paint("livetest:", color.FgRed), fmt.Sprintf(format, args...))
}

// Hint prints a hint message for the user.
func (w *Writer) Hint(format string, args ...interface{}) {
	w.Errorln("%s", w.paint(fmt.Sprintf(format, args...), color.Faint))
}

// List prints a list of items.
func (w *Writer) List(items []string) {
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// Table prints a simple table. Widths are display widths, so wide runes
// keep the columns aligned.
func (w *Writer) Table(headers []string, rows [][]string) {
	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = format.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && format.Width(cell) > widths[i] {
				widths[i] = format.Width(cell)
			}
		}
	}

	// Print header
	var headerParts []string
	for i, h := range headers {
		headerParts = append(headerParts, w.paint(format.PadRight(h, widths[i]), color.Bold))
	}
	w.Println("%s", strings.TrimRight(strings.Join(headerParts, "  "), " "))

	// Print separator
	var sepParts []string
	for _, width := range widths {
		sepParts = append(sepParts, strings.Repeat("-", width))
	}
	w.Println("%s", strings.Join(sepParts, "  "))

	// Print rows
	for _, row := range rows {
		var rowParts []string
		for i, cell := range row {
			if i < len(widths) {
				rowParts = append(rowParts, format.PadRight(cell, widths[i]))
			}
		}
		w.Println("%s", strings.TrimRight(strings.Join(rowParts, "  "), " "))
	}
}

// Semantic color roles for help output.
var (
	colorTitle       = []color.Attribute{color.FgCyan, color.Bold}
	colorSection     = []color.Attribute{color.FgYellow, color.Bold}
	colorCommand     = []color.Attribute{color.FgCyan, color.Bold}
	colorPlaceholder = []color.Attribute{color.FgGreen}
	colorFlag        = []color.Attribute{color.FgYellow}
	colorDescription = []color.Attribute{color.Faint}
	colorExample     = []color.Attribute{color.FgCyan}
	colorEnvVar      = []color.Attribute{color.FgYellow}
)

// HelpTitle formats the main help title line.
func (w *Writer) HelpTitle(title string) {
	w.Println("%s", w.paint(title, colorTitle...))
}

// HelpSection formats a section header (e.g., "Commands:").
func (w *Writer) HelpSection(title string) {
	w.Println("")
	w.Println("%s", w.paint(title, colorSection...))
}

// HelpCommand formats a command with its description.
func (w *Writer) HelpCommand(name, description string, width int) {
	w.helpEntry(name, description, width, colorCommand)
}

// HelpFlag formats a flag with its description.
func (w *Writer) HelpFlag(name, description string, width int) {
	w.helpEntry(name, description, width, colorFlag)
}

// HelpEnvVar formats an environment variable.
func (w *Writer) HelpEnvVar(name, description string, width int) {
	w.helpEntry(name, description, width, colorEnvVar)
}

func (w *Writer) helpEntry(name, description string, width int, attrs []color.Attribute) {
	padding := max(width-format.Width(name), 0)
	w.Println("  %s%s  %s", w.colorPlaceholders(name, attrs), strings.Repeat(" ", padding), w.paint(description, colorDescription...))
}

// HelpExample formats an example command with description.
func (w *Writer) HelpExample(command, description string) {
	w.Println("  %s", w.paint(command, colorExample...))
	if description != "" {
		w.Println("      %s", w.paint(description, colorDescription...))
	}
}

// HelpUsage formats usage lines.
func (w *Writer) HelpUsage(usage string) {
	w.Println("  %s", w.colorPlaceholders(usage, nil))
}

// paint renders s with attrs when colour is enabled.
func (w *Writer) paint(s string, attrs ...color.Attribute) string {
	if !w.color || len(attrs) == 0 || s == "" {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// colorPlaceholders highlights <placeholder> patterns in text and paints the
// rest with base.
func (w *Writer) colorPlaceholders(text string, base []color.Attribute) string {
	var result strings.Builder
	for text != "" {
		start := strings.Index(text, "<")
		if start == -1 {
			result.WriteString(w.paint(text, base...))
			break
		}
		end := strings.Index(text[start:], ">")
		if end == -1 {
			result.WriteString(w.paint(text, base...))
			break
		}
		result.WriteString(w.paint(text[:start], base...))
		result.WriteString(w.paint(text[start:start+end+1], colorPlaceholder...))
		text = text[start+end+1:]
	}
	return result.String()
}
