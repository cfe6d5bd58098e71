// Package display owns the terminal while progress is shown. A single
// background goroutine redraws the progress region on a fixed cadence, and
// every other write goes through the same mutex so messages and redraws
// never interleave.
package display

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/AndreyAkinshin/livetest/internal/errors"
	"github.com/AndreyAkinshin/livetest/internal/progress"
	"github.com/AndreyAkinshin/livetest/internal/render"
	"github.com/AndreyAkinshin/livetest/internal/terminal"
)

// Redraw cadences. Seconds are the smallest unit a progress line shows, so
// an interactive terminal gains nothing from redrawing faster than twice a
// second. Append-only tiers keep every redraw in the log, so they redraw
// rarely.
const (
	FullAnsiInterval   = 500 * time.Millisecond
	AppendOnlyInterval = 3 * time.Second
)

// Options configures a Refresher.
type Options struct {
	ShowActiveTests bool
	// Interval overrides the tier's cadence when positive.
	Interval time.Duration
	Logger   *slog.Logger
}

// Refresher paces progress redraws and serialises terminal access.
type Refresher struct {
	mu       sync.Mutex
	term     terminal.Terminal
	renderer *render.Renderer
	board    *progress.Board
	running  bool

	interval time.Duration
	logger   *slog.Logger
	wake     chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates a refresher drawing to t. Progress is not shown until Start.
func New(t terminal.Terminal, opts Options) *Refresher {
	interval := opts.Interval
	if interval <= 0 {
		interval = AppendOnlyInterval
		if t.Tier().CursorControl() {
			interval = FullAnsiInterval
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Refresher{
		term:     t,
		renderer: render.New(opts.ShowActiveTests),
		interval: interval,
		logger:   logger,
		wake:     make(chan struct{}, 1),
	}
}

// Tier returns the capability tier of the terminal.
func (r *Refresher) Tier() terminal.Tier {
	return r.term.Tier()
}

// SetBoard replaces the slot board to draw. The run's parallelism is known
// only when it starts, so the board arrives after construction.
func (r *Refresher) SetBoard(b *progress.Board) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.board = b
}

// Board returns the current slot board, or nil before the run started.
func (r *Refresher) Board() *progress.Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board
}

// Start begins showing progress and draws the first frame without waiting
// for a tick. Calling Start twice is a no-op.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.done = make(chan struct{})
	select {
	case <-r.wake:
	default:
	}

	r.term.StartUpdate()
	r.term.HideCursor()
	r.term.StartBusyIndicator()
	if r.board != nil && r.term.Tier().CursorControl() {
		r.renderer.Render(r.term, r.board.Snapshot())
	}
	r.term.StopUpdate()

	r.wg.Add(1)
	go r.loop(r.done)
	r.logger.Debug("progress refresher started", "tier", r.term.Tier().String(), "interval", r.interval)
}

// Stop ends the background loop, waits for it to exit, then erases the
// progress region so the terminal is left clean.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.term.StartUpdate()
	r.renderer.Erase(r.term)
	r.term.ShowCursor()
	r.term.StopBusyIndicator()
	r.term.StopUpdate()
	r.logger.Debug("progress refresher stopped")
}

// Write runs fn with exclusive access to the terminal. While progress is
// shown the region is erased first and, on terminals that can redraw in
// place, drawn again below the new output.
func (r *Refresher) Write(fn func(t terminal.Terminal)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.term.StartUpdate()
	defer r.term.StopUpdate()
	if r.running {
		r.renderer.Erase(r.term)
	}
	fn(r.term)
	if r.running && r.board != nil && r.term.Tier().CursorControl() {
		r.renderer.Render(r.term, r.board.Snapshot())
	}
}

// Wake asks the loop to redraw before its next tick. Only interactive
// terminals are woken early; append-only output keeps its cadence.
func (r *Refresher) Wake() {
	if !r.term.Tier().CursorControl() {
		return
	}
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// AddWorker puts w on the board and returns its slot.
func (r *Refresher) AddWorker(w *progress.Worker) int {
	slot := r.mustBoard().Add(w)
	r.Wake()
	return slot
}

// RemoveWorker frees slot.
func (r *Refresher) RemoveWorker(slot int) {
	r.mustBoard().Remove(slot)
	r.Wake()
}

// UpdateWorker mutates the worker in slot. The change shows on the next tick.
func (r *Refresher) UpdateWorker(slot int, mutate func(*progress.Worker)) {
	r.mustBoard().Update(slot, mutate)
}

func (r *Refresher) mustBoard() *progress.Board {
	b := r.Board()
	if b == nil {
		panic(errors.Unreachable("worker registered before the run started"))
	}
	return b
}

func (r *Refresher) loop(done <-chan struct{}) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		case <-r.wake:
		}

		r.mu.Lock()
		if r.running && r.board != nil {
			r.renderLocked()
		}
		r.mu.Unlock()
	}
}

func (r *Refresher) renderLocked() {
	if r.board == nil {
		panic(errors.Unreachable("progress rendered before the run started"))
	}
	r.term.StartUpdate()
	r.renderer.Render(r.term, r.board.Snapshot())
	r.term.StopUpdate()
}
