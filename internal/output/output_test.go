package output

import (
	"bytes"
	"strings"
	"testing"
)

// newTestWriter creates a Writer with captured output for testing.
func newTestWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	w := &Writer{
		out:   stdout,
		err:   stderr,
		color: false, // Disable color for predictable test output
		quiet: false,
	}
	return w, stdout, stderr
}

func TestNew(t *testing.T) {
	w := New()
	if w == nil {
		t.Fatal("New() returned nil")
	}
	if w.out == nil {
		t.Error("out writer is nil")
	}
	if w.err == nil {
		t.Error("err writer is nil")
	}
}

func TestWriter_SetQuiet(t *testing.T) {
	w, _, _ := newTestWriter()

	w.SetQuiet(true)
	if !w.quiet {
		t.Error("SetQuiet(true) did not set quiet")
	}

	w.SetQuiet(false)
	if w.quiet {
		t.Error("SetQuiet(false) did not unset quiet")
	}
}

func TestWriter_Print(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Print("hello %s", "world")

	if got := stdout.String(); got != "hello world" {
		t.Errorf("Print() = %q, want %q", got, "hello world")
	}
}

func TestWriter_Println(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Println("hello %s", "world")

	if got := stdout.String(); got != "hello world\n" {
		t.Errorf("Println() = %q, want %q", got, "hello world\n")
	}
}

func TestWriter_Errorln(t *testing.T) {
	w, stdout, stderr := newTestWriter()

	w.Errorln("bad %d", 1)

	if got := stderr.String(); got != "bad 1\n" {
		t.Errorf("Errorln() = %q, want %q", got, "bad 1\n")
	}
	if stdout.Len() != 0 {
		t.Errorf("Errorln() wrote to stdout: %q", stdout.String())
	}
}

func TestWriter_Info(t *testing.T) {
	tests := []struct {
		name  string
		quiet bool
		want  string
	}{
		{"normal", false, "info message\n"},
		{"quiet", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, stdout, _ := newTestWriter()
			w.SetQuiet(tt.quiet)

			w.Info("info message")

			if got := stdout.String(); got != tt.want {
				t.Errorf("Info() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriter_Warning(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.Warning("unknown field %q", "x")

	if got := stderr.String(); got != "warning: unknown field \"x\"\n" {
		t.Errorf("Warning() = %q", got)
	}

	stderr.Reset()
	w.SetQuiet(true)
	w.Warning("hidden")
	if stderr.Len() != 0 {
		t.Errorf("Warning() in quiet mode = %q, want empty", stderr.String())
	}
}

func TestWriter_ErrorPrefix(t *testing.T) {
	w, _, stderr := newTestWriter()

	w.ErrorPrefix("cannot open %s", "events.json")

	if got := stderr.String(); got != "livetest: cannot open events.json\n" {
		t.Errorf("ErrorPrefix() = %q", got)
	}
}

func TestWriter_Color(t *testing.T) {
	stdout := &bytes.Buffer{}
	w := NewWithWriters(stdout, &bytes.Buffer{}, true)

	w.Success("done")

	got := stdout.String()
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("Success() with color = %q, want an escape sequence", got)
	}
	if !strings.Contains(got, "done") {
		t.Errorf("Success() with color = %q, want the message", got)
	}

	stdout.Reset()
	w.SetColor(false)
	w.Success("done")
	if got := stdout.String(); got != "done\n" {
		t.Errorf("Success() without color = %q, want %q", got, "done\n")
	}
}

func TestWriter_List(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.List([]string{"a", "b"})

	if got := stdout.String(); got != "  - a\n  - b\n" {
		t.Errorf("List() = %q", got)
	}
}

func TestWriter_List_Empty(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.List([]string{})

	if got := stdout.String(); got != "" {
		t.Errorf("List() with empty slice = %q, want empty", got)
	}
}

func TestWriter_Table(t *testing.T) {
	w, stdout, _ := newTestWriter()

	headers := []string{"Setting", "Value"}
	rows := [][]string{
		{"ansi", "auto"},
		{"show_progress", "true"},
	}

	w.Table(headers, rows)

	want := "Setting        Value\n" +
		"-------------  -----\n" +
		"ansi           auto\n" +
		"show_progress  true\n"
	if got := stdout.String(); got != want {
		t.Errorf("Table() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriter_Table_WideRunes(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Table([]string{"Name", "X"}, [][]string{{"日本", "1"}, {"ab", "2"}})

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Table() lines = %q", lines)
	}
	// "日本" is four columns wide, the same as "Name".
	if lines[2] != "日本  1" {
		t.Errorf("wide row = %q, want %q", lines[2], "日本  1")
	}
	if lines[3] != "ab    2" {
		t.Errorf("narrow row = %q, want %q", lines[3], "ab    2")
	}
}

func TestWriter_Table_Empty(t *testing.T) {
	w, stdout, _ := newTestWriter()

	headers := []string{"Name", "Value"}
	rows := [][]string{}

	w.Table(headers, rows)

	output := stdout.String()

	// Should still print headers and separator
	if !strings.Contains(output, "Name") {
		t.Error("Table() with empty rows should still print headers")
	}
}

func TestWriter_Table_RowShorterThanHeaders(t *testing.T) {
	w, stdout, _ := newTestWriter()

	headers := []string{"A", "B", "C"}
	rows := [][]string{
		{"1", "2"}, // Missing third column
	}

	w.Table(headers, rows)

	// Should not panic and should handle gracefully
	output := stdout.String()
	if !strings.Contains(output, "1") {
		t.Error("Table() should handle short rows gracefully")
	}
}

func TestWriter_HelpEntries(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.HelpTitle("livetest - live go test reporter")
	w.HelpSection("Commands:")
	w.HelpCommand("version", "Show version", 10)
	w.HelpFlag("--ansi <mode>", "Terminal mode", 14)
	w.HelpEnvVar("NO_COLOR", "Disable colour", 10)
	w.HelpExample("go test -json ./... | livetest", "Report a run")
	w.HelpUsage("livetest [flags] [<file>]")

	want := "livetest - live go test reporter\n" +
		"\n" +
		"Commands:\n" +
		"  version     Show version\n" +
		"  --ansi <mode>   Terminal mode\n" +
		"  NO_COLOR    Disable colour\n" +
		"  go test -json ./... | livetest\n" +
		"      Report a run\n" +
		"  livetest [flags] [<file>]\n"
	if got := stdout.String(); got != want {
		t.Errorf("help output =\n%q\nwant\n%q", got, want)
	}
}

func TestWriter_ColorPlaceholders(t *testing.T) {
	w := NewWithWriters(&bytes.Buffer{}, &bytes.Buffer{}, true)

	got := w.colorPlaceholders("run <file> now", nil)
	if !strings.Contains(got, "run ") || !strings.Contains(got, " now") {
		t.Errorf("colorPlaceholders() lost plain text: %q", got)
	}
	if !strings.Contains(got, "\x1b[") || !strings.Contains(got, "<file>") {
		t.Errorf("colorPlaceholders() = %q, want a coloured placeholder", got)
	}

	w.SetColor(false)
	if got := w.colorPlaceholders("a <b> c <unclosed", nil); got != "a <b> c <unclosed" {
		t.Errorf("colorPlaceholders() without color = %q", got)
	}
}
