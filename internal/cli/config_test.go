package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AndreyAkinshin/livetest/pkg/livetest"
)

func TestCmdConfig_ShowDefaults(t *testing.T) {
	ta := newTestApp(t, "")

	if code := ta.run([]string{"config"}); code != livetest.ExitSuccess {
		t.Fatalf("exit code = %d, stderr = %q", code, ta.errOut.String())
	}

	got := ta.printed.String()
	for _, want := range []string{"No livetest.yaml found", "show_progress", "true", "(working directory)"} {
		if !strings.Contains(got, want) {
			t.Errorf("config output missing %q:\n%s", want, got)
		}
	}
}

func TestCmdConfig_ShowWithFileAndFlags(t *testing.T) {
	ta := newTestApp(t, "")
	path := filepath.Join(ta.dir, "livetest.yaml")
	if err := os.WriteFile(path, []byte("run:\n  minimum_expected_tests: 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if code := ta.run([]string{"config", "show", "--ansi", "simple"}); code != livetest.ExitSuccess {
		t.Fatalf("exit code = %d, stderr = %q", code, ta.errOut.String())
	}

	got := ta.printed.String()
	if !strings.Contains(got, "Configuration: "+path) {
		t.Errorf("config output does not name the file:\n%s", got)
	}
	for _, row := range [][2]string{{"minimum_expected_tests", "12"}, {"ansi", "simple"}} {
		if !hasRow(got, row[0], row[1]) {
			t.Errorf("config output missing row %s = %s:\n%s", row[0], row[1], got)
		}
	}
}

func TestCmdConfig_ShowInvalid(t *testing.T) {
	ta := newTestApp(t, "")
	ta.env["LIVETEST_SHOW_PASSED_TESTS"] = "perhaps"

	if code := ta.run([]string{"config"}); code != livetest.ExitConfigError {
		t.Errorf("exit code = %d, want %d", code, livetest.ExitConfigError)
	}
}

func TestCmdConfig_Validate(t *testing.T) {
	ta := newTestApp(t, "")
	path := filepath.Join(ta.dir, "livetest.yaml")
	if err := os.WriteFile(path, []byte("output:\n  show_active_tests: true\nextra: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	code := ta.run([]string{"config", "validate"})

	if code != livetest.ExitSuccess {
		t.Fatalf("exit code = %d, stderr = %q", code, ta.errOut.String())
	}
	if !strings.Contains(ta.printed.String(), path+" is valid.") {
		t.Errorf("stdout = %q", ta.printed.String())
	}
	if !strings.Contains(ta.printed.String(), "Warnings: 1") {
		t.Errorf("stdout = %q, want the warning count", ta.printed.String())
	}
	if !strings.Contains(ta.errOut.String(), `unknown field "extra"`) {
		t.Errorf("stderr = %q", ta.errOut.String())
	}
}

func TestCmdConfig_ValidateErrors(t *testing.T) {
	ta := newTestApp(t, "")
	bad := filepath.Join(ta.dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("output:\n  ansi: sometimes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"invalid file", []string{"config", "validate", bad}},
		{"missing file", []string{"config", "validate", filepath.Join(ta.dir, "missing.yaml")}},
		{"too many files", []string{"config", "validate", "a.yaml", "b.yaml"}},
		{"unknown subcommand", []string{"config", "frobnicate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, "")
			if code := ta.run(tt.args); code != livetest.ExitConfigError {
				t.Errorf("run(%q) = %d, want %d", tt.args, code, livetest.ExitConfigError)
			}
		})
	}
}

func TestCmdConfig_Schema(t *testing.T) {
	ta := newTestApp(t, "")

	if code := ta.run([]string{"config", "schema"}); code != livetest.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(ta.printed.String(), `"max_parallelism"`) {
		t.Errorf("schema output = %q", ta.printed.String())
	}
}

func TestCmdConfig_Help(t *testing.T) {
	ta := newTestApp(t, "")

	if code := ta.run([]string{"config", "--help"}); code != livetest.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{
		"livetest config validate [<file>]",
		"  - LIVETEST_CONFIG environment variable\n",
		"  - livetest.yaml in the working directory or the nearest parent\n",
	} {
		if !strings.Contains(ta.printed.String(), want) {
			t.Errorf("help missing %q:\n%s", want, ta.printed.String())
		}
	}
}

// hasRow reports whether a table line holds key followed by value.
func hasRow(table, key, value string) bool {
	for _, line := range strings.Split(table, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == key && fields[1] == value {
			return true
		}
	}
	return false
}
