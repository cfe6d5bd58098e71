package config

import (
	"os"
	"strconv"

	"github.com/AndreyAkinshin/livetest/internal/terminal"
)

// Environment variables read by ApplyEnv. NO_COLOR is honoured by the
// terminal probe itself.
const (
	EnvConfig          = "LIVETEST_CONFIG"
	EnvAnsi            = "LIVETEST_ANSI"
	EnvShowPassedTests = "LIVETEST_SHOW_PASSED_TESTS"
	EnvMinimumExpected = "LIVETEST_MINIMUM_EXPECTED_TESTS"
)

// ApplyEnv overlays environment settings onto opts. A nil getenv reads the
// process environment.
func ApplyEnv(opts *Options, getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvAnsi); v != "" {
		mode, err := terminal.ParseMode(v)
		if err != nil {
			return &ValidationError{Field: EnvAnsi, Message: err.Error()}
		}
		opts.Ansi = mode
	}
	if v := getenv(EnvShowPassedTests); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ValidationError{Field: EnvShowPassedTests, Message: "must be a boolean"}
		}
		opts.ShowPassedTests = b
	}
	if v := getenv(EnvMinimumExpected); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Field: EnvMinimumExpected, Message: "must be an integer"}
		}
		opts.MinimumExpectedTests = n
	}
	return nil
}
