package reporter

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/AndreyAkinshin/livetest/internal/progress"
	"github.com/AndreyAkinshin/livetest/pkg/livetest"
)

// Outcome is the final state of a test.
type Outcome = progress.Outcome

const (
	Passed   = progress.Passed
	Failed   = progress.Failed
	Error    = progress.Error
	Timeout  = progress.Timeout
	Canceled = progress.Canceled
	Skipped  = progress.Skipped
)

// WorkerInfo identifies a test container.
type WorkerInfo = progress.WorkerInfo

// ErrorInfo is one error of a failed test. A chain lists the outermost
// error first and its causes after it.
type ErrorInfo struct {
	Type       string
	Message    string
	StackTrace string
}

// TestResult is everything known about a finished test.
type TestResult struct {
	UID                string
	DisplayName        string
	Outcome            Outcome
	Duration           time.Duration
	InformativeMessage string
	// ErrorMessage overrides the message of the first error when set.
	ErrorMessage string
	Errors       []ErrorInfo
	Expected     string
	Actual       string
	Stdout       string
	Stderr       string
}

// RunResult is the overall verdict of a run.
type RunResult int

const (
	RunPassed RunResult = iota
	RunFailed
	RunAborted
	RunZeroTests
	RunBelowMinimum
)

func (r RunResult) String() string {
	switch r {
	case RunPassed:
		return "passed"
	case RunFailed:
		return "failed"
	case RunAborted:
		return "aborted"
	case RunZeroTests:
		return "zero tests ran"
	case RunBelowMinimum:
		return "minimum expected tests policy violation"
	default:
		return "unknown"
	}
}

// ExitCode maps the verdict onto the process exit code.
func (r RunResult) ExitCode() int {
	switch r {
	case RunPassed:
		return livetest.ExitSuccess
	case RunFailed:
		return livetest.ExitTestsFailed
	case RunAborted:
		return livetest.ExitAborted
	case RunZeroTests:
		return livetest.ExitZeroTests
	case RunBelowMinimum:
		return livetest.ExitMinimumExpected
	default:
		return livetest.ExitFailure
	}
}

// Summary is the outcome of a completed run.
type Summary struct {
	Result    RunResult
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	Duration  time.Duration
	Workers   int
	Minimum   int
	Discovery bool
}

// Artifact is a file a test or test host produced.
type Artifact struct {
	OutOfProcess bool
	Worker       string
	TestName     string
	Path         string
}

// titleCase upper-cases the first letter of each word. A Caser is stateful,
// so every call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// formatCount groups the digits of a test count ("12,345"). Printers are not
// safe for concurrent use, so every call gets its own.
func formatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
