package config

import (
	"runtime"

	"github.com/AndreyAkinshin/livetest/internal/terminal"
)

// Default configuration values.
const (
	DefaultShowPassedTests              = false
	DefaultShowProgress                 = true
	DefaultShowActiveTests              = false
	DefaultShowAssembly                 = true
	DefaultShowAssemblyStartAndComplete = false
	DefaultAnsi                         = terminal.ModeAuto
	DefaultMinimumExpectedTests         = 0
)

// Defaults returns the options used when nothing else is configured.
// Parallelism defaults to the number of packages go test runs at once.
func Defaults() Options {
	return Options{
		ShowPassedTests:              DefaultShowPassedTests,
		ShowProgress:                 DefaultShowProgress,
		ShowActiveTests:              DefaultShowActiveTests,
		ShowAssembly:                 DefaultShowAssembly,
		ShowAssemblyStartAndComplete: DefaultShowAssemblyStartAndComplete,
		Ansi:                         DefaultAnsi,
		MinimumExpectedTests:         DefaultMinimumExpectedTests,
		MaxParallelism:               runtime.GOMAXPROCS(0),
	}
}
