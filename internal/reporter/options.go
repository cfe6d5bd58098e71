package reporter

import (
	"log/slog"
	"time"

	"github.com/AndreyAkinshin/livetest/internal/progress"
)

// Options are the resolved display settings. They are taken as given; the
// config layer validates them.
type Options struct {
	ShowPassedTests              bool
	ShowProgress                 bool
	ShowActiveTests              bool
	ShowAssembly                 bool
	ShowAssemblyStartAndComplete bool
	MinimumExpectedTests         int

	// RefreshInterval overrides the tier's redraw cadence when positive.
	RefreshInterval time.Duration
	// NewStopwatch starts the clocks of the run, workers and tests.
	// Defaults to the wall clock.
	NewStopwatch func() progress.Stopwatch
	// Restore undoes console changes made while probing the terminal. Close
	// calls it once.
	Restore func()
	Logger  *slog.Logger
}
