// Package reporter is the surface test event producers call. It turns
// lifecycle events from concurrently running workers into progress state,
// immediate messages for notable results, and the final run summary.
//
// All methods are safe for concurrent use. Events of one worker must be
// delivered in order; events of different workers may interleave freely.
package reporter

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/AndreyAkinshin/livetest/internal/display"
	"github.com/AndreyAkinshin/livetest/internal/progress"
	"github.com/AndreyAkinshin/livetest/internal/terminal"
)

// Reporter renders a test run to a terminal.
//
// Callbacks passed to the display run under its lock and must not take mu:
// worker registration holds mu while it adds to the board.
type Reporter struct {
	opts    Options
	term    terminal.Terminal
	display *display.Refresher
	logger  *slog.Logger
	seq     progress.Sequence

	mu            sync.Mutex
	workers       map[string]*progress.Worker
	order         []*progress.Worker
	failedWorkers int
	artifacts     []Artifact
	runWatch      progress.Stopwatch
	discovery     bool
	summary       *Summary

	canceling atomic.Bool
	closeOnce sync.Once
}

// New creates a reporter drawing to t.
func New(t terminal.Terminal, opts Options) *Reporter {
	if opts.NewStopwatch == nil {
		opts.NewStopwatch = progress.StartStopwatch
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reporter{
		opts: opts,
		term: t,
		display: display.New(t, display.Options{
			ShowActiveTests: opts.ShowActiveTests,
			Interval:        opts.RefreshInterval,
			Logger:          logger,
		}),
		logger:  logger,
		workers: make(map[string]*progress.Worker),
	}
}

// RunStarted prepares a run of up to parallelism concurrent workers. In
// discovery mode tests are listed instead of executed.
func (r *Reporter) RunStarted(parallelism int, discovery bool) {
	r.mu.Lock()
	r.runWatch = r.opts.NewStopwatch()
	r.discovery = discovery
	r.summary = nil
	r.mu.Unlock()

	r.display.SetBoard(progress.NewBoard(max(parallelism, 1)))
	if r.opts.ShowProgress {
		r.display.Start()
	}
	r.logger.Debug("run started", "parallelism", parallelism, "discovery", discovery, "tier", r.term.Tier().String())
}

// WorkerStarted registers a test container. Events for a container that was
// never announced register it implicitly.
func (r *Reporter) WorkerStarted(info WorkerInfo) {
	w, created := r.worker(info)
	if !created || !r.opts.ShowAssembly || !r.opts.ShowAssemblyStartAndComplete {
		return
	}
	verb := "Running tests from "
	if r.isDiscovery() {
		verb = "Discovering tests from "
	}
	r.display.Write(func(t terminal.Terminal) {
		t.Append(verb)
		appendWorker(t, w.Info())
		t.AppendLine("")
	})
}

// WorkerCompleted removes the container from the progress region. A
// non-zero exit code fails the run and prints the captured output.
func (r *Reporter) WorkerCompleted(info WorkerInfo, exitCode *int, stdout, stderr string) {
	w, _ := r.worker(info)
	if slot := w.Slot(); slot >= 0 {
		r.display.RemoveWorker(slot)
	}
	w.Complete(exitCode)

	failed := exitCode != nil && *exitCode != 0
	if failed {
		r.mu.Lock()
		r.failedWorkers++
		r.mu.Unlock()
	}

	showSummary := r.opts.ShowAssembly && r.opts.ShowAssemblyStartAndComplete && !r.isDiscovery()
	if !failed && !showSummary {
		return
	}
	r.display.Write(func(t terminal.Terminal) {
		if showSummary {
			writeWorkerSummary(t, w)
		}
		if failed {
			writeWorkerExit(t, w.Info(), *exitCode, stdout, stderr)
		}
	})
}

// TestInProgress marks a test as running in its worker.
func (r *Reporter) TestInProgress(info WorkerInfo, uid, displayName string) {
	if !r.opts.ShowActiveTests {
		return
	}
	w, _ := r.worker(info)
	r.update(w, func(w *progress.Worker) {
		w.AddRunningDetail(uid, displayName, r.opts.NewStopwatch())
	})
}

// TestCompleted counts a finished test. Failures and skips are printed right
// away; passes only when passed tests are shown.
func (r *Reporter) TestCompleted(info WorkerInfo, res TestResult) {
	w, _ := r.worker(info)
	r.update(w, func(w *progress.Worker) {
		if r.opts.ShowActiveTests {
			w.RemoveRunningDetail(res.UID)
		}
		w.RecordOutcome(res.Outcome)
	})

	if res.Outcome == Passed && !r.opts.ShowPassedTests {
		return
	}
	r.display.Write(func(t terminal.Terminal) {
		writeTestResult(t, w.Info(), r.opts.ShowAssembly, res)
	})
}

// TestDiscovered records a test found in discovery mode.
func (r *Reporter) TestDiscovered(info WorkerInfo, displayName, uid string) {
	w, _ := r.worker(info)
	r.update(w, func(w *progress.Worker) {
		w.AddDiscovered(displayName, uid)
	})
}

// ArtifactAdded records a file produced during the run. The list is printed
// with the summary.
func (r *Reporter) ArtifactAdded(outOfProcess bool, info *WorkerInfo, testName, path string) {
	a := Artifact{OutOfProcess: outOfProcess, TestName: testName, Path: path}
	if info != nil {
		a.Worker = info.Name
		if a.Worker == "" {
			a.Worker = info.Assembly
		}
	}
	r.mu.Lock()
	r.artifacts = append(r.artifacts, a)
	r.mu.Unlock()
}

// StartCancelling prints the cancellation notice. Only the first call has an
// effect. Rendering is not interrupted; the run finishes as usual and is
// reported as aborted.
func (r *Reporter) StartCancelling() {
	if !r.canceling.CompareAndSwap(false, true) {
		return
	}
	r.display.Write(func(t terminal.Terminal) {
		t.SetColor(terminal.DarkYellow)
		t.Append("Canceling the test session...")
		t.ResetColor()
		t.AppendLine("")
	})
}

// WriteError prints msg in red.
func (r *Reporter) WriteError(msg string) {
	r.writeColored(msg, terminal.Red)
}

// WriteWarning prints msg in yellow.
func (r *Reporter) WriteWarning(msg string) {
	r.writeColored(msg, terminal.Yellow)
}

// WriteMessage prints msg as is.
func (r *Reporter) WriteMessage(msg string) {
	r.display.Write(func(t terminal.Terminal) {
		appendIndented(t, msg, "")
	})
}

func (r *Reporter) writeColored(msg string, color terminal.Color) {
	r.display.Write(func(t terminal.Terminal) {
		t.SetColor(color)
		appendIndented(t, msg, "")
		t.ResetColor()
	})
}

// RunCompleted stops the progress display and prints the artifacts and the
// summary.
func (r *Reporter) RunCompleted() Summary {
	r.display.Stop()

	r.mu.Lock()
	s := r.summarizeLocked()
	workers := append([]*progress.Worker(nil), r.order...)
	artifacts := append([]Artifact(nil), r.artifacts...)
	r.summary = &s
	r.mu.Unlock()

	r.display.Write(func(t terminal.Terminal) {
		writeArtifacts(t, artifacts)
		if s.Discovery {
			writeDiscoverySummary(t, workers, s)
		} else {
			writeSummary(t, s)
		}
	})
	r.logger.Debug("run completed", "result", s.Result.String(), "total", s.Total, "failed", s.Failed)
	return s
}

// SummaryText renders the last summary as plain text for other reports.
// It is empty until RunCompleted.
func (r *Reporter) SummaryText() string {
	r.mu.Lock()
	s := r.summary
	workers := append([]*progress.Worker(nil), r.order...)
	r.mu.Unlock()
	if s == nil {
		return ""
	}

	var b strings.Builder
	t := terminal.NewNoAnsi(&b, "", nil)
	if s.Discovery {
		writeDiscoverySummary(t, workers, *s)
	} else {
		writeSummary(t, *s)
	}
	return b.String()
}

// Artifacts returns the recorded artifacts in the order they were added.
func (r *Reporter) Artifacts() []Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Artifact(nil), r.artifacts...)
}

// Close stops the display and restores the console. It is safe to call
// more than once and is meant to be deferred.
func (r *Reporter) Close() {
	r.closeOnce.Do(func() {
		r.display.Stop()
		if r.opts.Restore != nil {
			r.opts.Restore()
		}
	})
}

func (r *Reporter) summarizeLocked() Summary {
	s := Summary{Workers: len(r.order), Discovery: r.discovery}
	if r.runWatch != nil {
		r.runWatch.Stop()
		s.Duration = r.runWatch.Elapsed()
	}
	for _, w := range r.order {
		if r.discovery {
			s.Total += len(w.Discovered())
			continue
		}
		c := w.Counts()
		s.Total += c.Total
		s.Passed += c.Passed
		s.Failed += c.Failed
		s.Skipped += c.Skipped
	}
	if !r.discovery {
		s.Minimum = r.opts.MinimumExpectedTests
	}
	s.Result = verdict(s, r.canceling.Load(), r.failedWorkers)
	return s
}

func (r *Reporter) isDiscovery() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.discovery
}

// worker returns the worker for info, registering it on first use.
func (r *Reporter) worker(info WorkerInfo) (*progress.Worker, bool) {
	key := info.Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.workers[key]; ok {
		return w, false
	}
	w := progress.NewWorker(&r.seq, info, r.opts.NewStopwatch())
	r.workers[key] = w
	r.order = append(r.order, w)
	r.display.AddWorker(w)
	return w, true
}

// update mutates w through its board slot while it is visible.
func (r *Reporter) update(w *progress.Worker, mutate func(*progress.Worker)) {
	if slot := w.Slot(); slot >= 0 {
		r.display.UpdateWorker(slot, mutate)
		return
	}
	mutate(w)
}

func writeWorkerSummary(t terminal.Terminal, w *progress.Worker) {
	c := w.Counts()
	label, color := "Passed!", terminal.Green
	if c.Failed > 0 {
		label, color = "Failed!", terminal.Red
	}
	if code, ok := w.ExitCode(); ok && code != 0 {
		label, color = "Failed!", terminal.Red
	}
	t.SetColor(color)
	t.Append(label)
	t.ResetColor()
	t.Append(" - ")
	appendWorker(t, w.Info())
	t.AppendLine("")
	t.AppendLine(indent + "total: " + strconv.Itoa(c.Total) +
		", failed: " + strconv.Itoa(c.Failed) +
		", succeeded: " + strconv.Itoa(c.Passed) +
		", skipped: " + strconv.Itoa(c.Skipped) +
		", duration: " + formatElapsed(w))
}

func writeWorkerExit(t terminal.Terminal, info WorkerInfo, code int, stdout, stderr string) {
	t.SetColor(terminal.Red)
	t.Append(workerLabel(info) + " exited with error code " + strconv.Itoa(code))
	t.ResetColor()
	t.AppendLine("")
	writeOutput(t, "Standard output", stdout)
	writeOutput(t, "Error output", stderr)
}
