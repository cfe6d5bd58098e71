// Package progress holds the live state the renderer draws: one Worker per
// concurrently executing test container, their counters and running tests,
// and the fixed slot board they occupy while visible.
//
// Identity and version numbers come from a shared Sequence. Every mutation
// of a Worker takes a fresh number from it after the change is applied, so a
// renderer that reads the version before the content can only ever record a
// version that is older than or equal to what it drew.
package progress

import (
	"sync"
	"sync/atomic"
	"time"
)

// Sequence hands out identities and versions from one monotonic counter.
type Sequence struct {
	n atomic.Int64
}

// Next returns the next number. The first call returns 1.
func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

// WorkerInfo identifies a test container.
type WorkerInfo struct {
	// Assembly is the full path or import path of the container.
	Assembly        string
	TargetFramework string
	Architecture    string
	ExecutionID     string
	// Name is what progress lines show. Defaults to Assembly.
	Name string
}

// Key returns the string that identifies the same worker across events.
func (i WorkerInfo) Key() string {
	return i.Assembly + "|" + i.TargetFramework + "|" + i.Architecture + "|" + i.ExecutionID
}

// Counts is a snapshot of a worker's counters.
type Counts struct {
	Passed  int
	Failed  int
	Skipped int
	Total   int
}

// DiscoveredTest is a test found in discovery mode.
type DiscoveredTest struct {
	Name string
	UID  string
}

// Worker is the progress state of one test container. Counters are atomic
// so producers never wait on the renderer.
type Worker struct {
	info  WorkerInfo
	id    int64
	seq   *Sequence
	watch Stopwatch

	version atomic.Int64
	slot    atomic.Int64

	passed  atomic.Int64
	failed  atomic.Int64
	skipped atomic.Int64
	total   atomic.Int64

	details atomic.Pointer[ActiveDetails]

	mu         sync.Mutex
	discovered []DiscoveredTest
	exitCode   *int
}

// NewWorker creates a worker with a fresh identity from seq.
func NewWorker(seq *Sequence, info WorkerInfo, watch Stopwatch) *Worker {
	if info.Name == "" {
		info.Name = info.Assembly
	}
	if watch == nil {
		watch = StartStopwatch()
	}
	id := seq.Next()
	w := &Worker{info: info, id: id, seq: seq, watch: watch}
	w.version.Store(id)
	w.slot.Store(-1)
	return w
}

func (w *Worker) ID() int64              { return w.id }
func (w *Worker) Version() int64         { return w.version.Load() }
func (w *Worker) Info() WorkerInfo       { return w.info }
func (w *Worker) Name() string           { return w.info.Name }
func (w *Worker) Elapsed() time.Duration { return w.watch.Elapsed() }

// Slot returns the board slot the worker occupies, or -1.
func (w *Worker) Slot() int { return int(w.slot.Load()) }

// Counts returns the current counters.
func (w *Worker) Counts() Counts {
	return Counts{
		Passed:  int(w.passed.Load()),
		Failed:  int(w.failed.Load()),
		Skipped: int(w.skipped.Load()),
		Total:   int(w.total.Load()),
	}
}

// ActiveDetails returns the running-test set, which only exists once a test
// was reported in progress with active tests shown.
func (w *Worker) ActiveDetails() (*ActiveDetails, bool) {
	d := w.details.Load()
	return d, d != nil
}

// Discovered returns the tests found in discovery mode.
func (w *Worker) Discovered() []DiscoveredTest {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]DiscoveredTest, len(w.discovered))
	copy(out, w.discovered)
	return out
}

// ExitCode returns the container's exit code once it completed with one.
func (w *Worker) ExitCode() (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.exitCode == nil {
		return 0, false
	}
	return *w.exitCode, true
}

// RecordOutcome counts one finished test. Every failure kind counts as
// failed; every outcome counts towards the total.
func (w *Worker) RecordOutcome(o Outcome) {
	switch {
	case o == Skipped:
		w.skipped.Add(1)
	case o.IsFailure():
		w.failed.Add(1)
	default:
		w.passed.Add(1)
	}
	w.total.Add(1)
	w.touch()
}

// AddRunningDetail marks a test as running.
func (w *Worker) AddRunningDetail(uid, text string, watch Stopwatch) {
	d := w.details.Load()
	if d == nil {
		w.details.CompareAndSwap(nil, newActiveDetails(w.seq))
		d = w.details.Load()
	}
	d.add(uid, text, watch)
	w.touch()
}

// RemoveRunningDetail drops a finished test from the running set.
func (w *Worker) RemoveRunningDetail(uid string) {
	if d := w.details.Load(); d != nil {
		d.remove(uid)
	}
	w.touch()
}

// AddDiscovered records a test found in discovery mode.
func (w *Worker) AddDiscovered(name, uid string) {
	w.mu.Lock()
	w.discovered = append(w.discovered, DiscoveredTest{Name: name, UID: uid})
	w.mu.Unlock()
	w.touch()
}

// Complete stops the worker's clock and records the exit code, if known.
func (w *Worker) Complete(exitCode *int) {
	w.watch.Stop()
	w.mu.Lock()
	if exitCode != nil {
		code := *exitCode
		w.exitCode = &code
	}
	w.mu.Unlock()
	w.touch()
}

// touch moves the version forward. Concurrent callers may finish out of
// order, so the larger number always wins.
func (w *Worker) touch() {
	next := w.seq.Next()
	for {
		cur := w.version.Load()
		if cur >= next || w.version.CompareAndSwap(cur, next) {
			return
		}
	}
}
