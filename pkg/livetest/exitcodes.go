// Package livetest provides public constants for tools that run livetest and
// act on its exit status.
package livetest

// Exit codes returned by the livetest CLI.
// These constants allow external tools to check exit codes symbolically
// rather than using magic numbers.
const (
	// ExitSuccess indicates every test ran and passed.
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure unrelated to test outcomes
	// (unreadable input, I/O error, etc.).
	ExitFailure = 1

	// ExitTestsFailed indicates at least one test failed, errored, timed out
	// or was canceled.
	ExitTestsFailed = 2

	// ExitAborted indicates the run was canceled before it completed.
	ExitAborted = 3

	// ExitZeroTests indicates no test ran, or every test was skipped.
	ExitZeroTests = 8

	// ExitMinimumExpected indicates fewer tests ran than the configured
	// minimum.
	ExitMinimumExpected = 9

	// ExitConfigError indicates invalid options or configuration file.
	ExitConfigError = 10
)
