// Package cli provides the command-line interface of livetest.
package cli

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AndreyAkinshin/livetest/internal/output"
	"github.com/AndreyAkinshin/livetest/pkg/livetest"
)

// Version is set at build time.
var Version = "dev"

// app carries the process surroundings so commands can run against temporary
// files in tests.
type app struct {
	out    *output.Writer
	stdin  *os.File
	stdout *os.File
	stderr io.Writer
	getenv func(string) string
	getwd  func() (string, error)
}

func newApp() *app {
	return &app{
		out:    output.New(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
		getwd:  os.Getwd,
	}
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	return newApp().run(args)
}

// wantsHelp reports whether args contain -h or --help before any "--".
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
		if arg == "--" {
			return false
		}
	}
	return false
}

func (a *app) run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help", "help":
			a.printUsage()
			return livetest.ExitSuccess
		case "--version", "version":
			a.out.Println("livetest %s", Version)
			return livetest.ExitSuccess
		case "completion":
			return a.cmdCompletion(args[1:])
		case "config":
			if wantsHelp(args[1:]) {
				a.printConfigUsage()
				return livetest.ExitSuccess
			}
		}
	}
	if wantsHelp(args) {
		a.printUsage()
		return livetest.ExitSuccess
	}

	opts, remaining, err := parseFlags(args)
	if err != nil {
		a.out.ErrorPrefix("%v", err)
		a.out.Hint("Run 'livetest --help' for usage.")
		return livetest.ExitConfigError
	}
	a.out.SetQuiet(opts.Quiet)

	if len(remaining) > 0 && remaining[0] == "config" {
		return a.cmdConfig(remaining[1:], opts)
	}
	if len(remaining) > 0 && remaining[0] == "--" {
		remaining = remaining[1:]
	}
	return a.cmdRun(opts, remaining)
}

// Help column widths.
const (
	helpCommandWidth = 12
	helpFlagWidth    = 26
	helpEnvWidth     = 32
)

func (a *app) printUsage() {
	w := a.out

	w.HelpTitle("livetest - live console reporter for go test")

	w.HelpSection("Usage:")
	w.HelpUsage("go test -json ./... | livetest [flags]")
	w.HelpUsage("livetest [flags] <file>")
	w.HelpUsage("livetest <command> [args]")

	w.HelpSection("Commands:")
	w.HelpCommand("config", "Show or validate the resolved settings", helpCommandWidth)
	w.HelpCommand("completion", "Generate shell completion", helpCommandWidth)
	w.HelpCommand("version", "Show version information", helpCommandWidth)
	w.HelpCommand("help", "Show this help", helpCommandWidth)

	w.HelpSection("Flags:")
	for _, f := range flagSpecs {
		w.HelpFlag(flagLabel(f), f.usage, helpFlagWidth)
	}
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidth)
	w.HelpFlag("--version", "Show version", helpFlagWidth)

	w.HelpSection("Environment:")
	for _, e := range envVars {
		w.HelpEnvVar(e.name, e.usage, helpEnvWidth)
	}

	w.HelpSection("Exit codes:")
	for _, c := range exitCodes {
		w.HelpCommand(strconv.Itoa(c.code), c.meaning, 3)
	}

	w.HelpSection("Examples:")
	for _, e := range examples {
		w.HelpExample(e.command, e.what)
	}
	w.Println("")
}

func flagLabel(f flagSpec) string {
	names := f.long
	if f.short != "" {
		names = f.short + ", " + f.long
	}
	return strings.TrimSpace(names + " " + f.value)
}

var envVars = []struct{ name, usage string }{
	{"LIVETEST_CONFIG", "Configuration file to use"},
	{"LIVETEST_ANSI", "Terminal mode, like --ansi"},
	{"LIVETEST_SHOW_PASSED_TESTS", "Print passed tests (true/false)"},
	{"LIVETEST_MINIMUM_EXPECTED_TESTS", "Like --minimum-expected"},
	{"NO_COLOR", "Disable colour when the mode is auto"},
}

var exitCodes = []struct {
	code    int
	meaning string
}{
	{livetest.ExitSuccess, "All tests passed"},
	{livetest.ExitFailure, "Input could not be read"},
	{livetest.ExitTestsFailed, "Tests failed or a package exited with an error"},
	{livetest.ExitAborted, "The run was canceled"},
	{livetest.ExitZeroTests, "No test ran"},
	{livetest.ExitMinimumExpected, "Fewer tests ran than --minimum-expected"},
	{livetest.ExitConfigError, "Invalid flags or configuration"},
}

var examples = []struct{ command, what string }{
	{"go test -json ./... | livetest", "Report a test run"},
	{"go test -json -p 4 ./... | livetest -p 4", "Match the package parallelism"},
	{"go test -json -list . ./... | livetest --list", "List tests without running them"},
	{"livetest --ansi off test-output.json", "Replay a saved run as plain text"},
}
