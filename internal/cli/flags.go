package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AndreyAkinshin/livetest/internal/config"
	"github.com/AndreyAkinshin/livetest/internal/terminal"
)

// flagSpec describes one command-line flag. The table drives parsing, help
// and shell completion.
type flagSpec struct {
	long  string
	short string
	value string // placeholder when the flag takes a value
	usage string
}

var flagSpecs = []flagSpec{
	{long: "--quiet", short: "-q", usage: "Only print test results and the summary"},
	{long: "--verbose", short: "-v", usage: "Log diagnostics to stderr"},
	{long: "--config", value: "<file>", usage: "Read settings from <file> instead of livetest.yaml"},
	{long: "--ansi", value: "<mode>", usage: "Terminal mode: auto, on, off or simple"},
	{long: "--show-passed", usage: "Print passed tests too"},
	{long: "--no-progress", usage: "Do not draw the live progress region"},
	{long: "--show-active", usage: "Show the tests currently running in each package"},
	{long: "--no-assembly", usage: "Do not prefix results with their package"},
	{long: "--show-assembly-events", usage: "Print when each package starts and completes"},
	{long: "--minimum-expected", value: "<n>", usage: "Fail when fewer than <n> tests ran"},
	{long: "--parallel", short: "-p", value: "<n>", usage: "Packages go test runs at once (its -p value)"},
	{long: "--base-dir", value: "<dir>", usage: "Directory file paths in output are relative to"},
	{long: "--list", usage: "Read go test -list output and report discovered tests"},
}

// globalOptions holds parsed command-line flags. Unset values leave the
// configured setting alone.
type globalOptions struct {
	Quiet              bool
	Verbose            bool
	ConfigPath         string
	Ansi               string
	ShowPassed         bool
	NoProgress         bool
	ShowActive         bool
	NoAssembly         bool
	ShowAssemblyEvents bool
	MinimumExpected    *int
	Parallel           *int
	BaseDir            string
	List               bool
}

func lookupFlag(name string) (flagSpec, bool) {
	for _, f := range flagSpecs {
		if name == f.long || (f.short != "" && name == f.short) {
			return f, true
		}
	}
	return flagSpec{}, false
}

// parseFlags parses flags anywhere in args and returns the remaining
// positional arguments. Everything after "--" is positional; the "--" itself
// is kept so callers can tell a file named like a command from the command.
func parseFlags(args []string) (*globalOptions, []string, error) {
	opts := &globalOptions{}
	var remaining []string

	i := 0
	for i < len(args) {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i:]...)
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			remaining = append(remaining, arg)
			i++
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		spec, ok := lookupFlag(name)
		if !ok {
			return nil, nil, fmt.Errorf("unknown flag: %s", name)
		}
		if spec.value == "" {
			if hasValue {
				return nil, nil, fmt.Errorf("%s does not take a value", spec.long)
			}
			i++
		} else {
			if !hasValue {
				if i+1 >= len(args) {
					return nil, nil, fmt.Errorf("%s requires a value", spec.long)
				}
				value = args[i+1]
				i++
			}
			i++
		}
		if err := opts.set(spec.long, value); err != nil {
			return nil, nil, err
		}
	}

	if err := validateGlobalOptions(opts); err != nil {
		return nil, nil, err
	}
	return opts, remaining, nil
}

func (o *globalOptions) set(name, value string) error {
	switch name {
	case "--quiet":
		o.Quiet = true
	case "--verbose":
		o.Verbose = true
	case "--config":
		o.ConfigPath = value
	case "--ansi":
		if _, err := terminal.ParseMode(value); err != nil {
			return fmt.Errorf("--ansi: %w", err)
		}
		o.Ansi = value
	case "--show-passed":
		o.ShowPassed = true
	case "--no-progress":
		o.NoProgress = true
	case "--show-active":
		o.ShowActive = true
	case "--no-assembly":
		o.NoAssembly = true
	case "--show-assembly-events":
		o.ShowAssemblyEvents = true
	case "--minimum-expected":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("--minimum-expected: %q is not a non-negative integer", value)
		}
		o.MinimumExpected = &n
	case "--parallel":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("--parallel: %q is not a positive integer", value)
		}
		o.Parallel = &n
	case "--base-dir":
		if value == "" {
			return fmt.Errorf("--base-dir requires a value")
		}
		o.BaseDir = value
	case "--list":
		o.List = true
	}
	return nil
}

// validateGlobalOptions checks for conflicting flags.
func validateGlobalOptions(opts *globalOptions) error {
	if opts.Quiet && opts.Verbose {
		return fmt.Errorf("--quiet and --verbose cannot be used together")
	}
	return nil
}

// apply overlays the flags onto resolved options. Flags win over the
// environment and the configuration file.
func (o *globalOptions) apply(opts *config.Options) error {
	if o.Ansi != "" {
		mode, err := terminal.ParseMode(o.Ansi)
		if err != nil {
			return &config.ValidationError{Field: "--ansi", Message: err.Error()}
		}
		opts.Ansi = mode
	}
	if o.ShowPassed {
		opts.ShowPassedTests = true
	}
	if o.NoProgress {
		opts.ShowProgress = false
	}
	if o.ShowActive {
		opts.ShowActiveTests = true
	}
	if o.NoAssembly {
		opts.ShowAssembly = false
	}
	if o.ShowAssemblyEvents {
		opts.ShowAssemblyStartAndComplete = true
	}
	if o.MinimumExpected != nil {
		opts.MinimumExpectedTests = *o.MinimumExpected
	}
	if o.Parallel != nil {
		opts.MaxParallelism = *o.Parallel
	}
	if o.BaseDir != "" {
		dir, err := filepath.Abs(o.BaseDir)
		if err != nil {
			return &config.ValidationError{Field: "--base-dir", Message: err.Error()}
		}
		opts.BaseDirectory = dir
	}
	return nil
}
