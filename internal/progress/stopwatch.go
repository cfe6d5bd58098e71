package progress

import (
	"sync"
	"time"
)

// Stopwatch measures how long a worker or a running test has taken.
type Stopwatch interface {
	Elapsed() time.Duration
	Stop()
}

// StartStopwatch returns a running stopwatch backed by the monotonic clock.
func StartStopwatch() Stopwatch {
	return &wallStopwatch{start: time.Now()}
}

type wallStopwatch struct {
	mu      sync.Mutex
	start   time.Time
	stopped bool
	elapsed time.Duration
}

func (s *wallStopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return s.elapsed
	}
	return time.Since(s.start)
}

func (s *wallStopwatch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.elapsed = time.Since(s.start)
	s.stopped = true
}

// ManualStopwatch reports whatever duration it was last set to. It lets
// tests and replays control the durations the renderer prints.
type ManualStopwatch struct {
	mu      sync.Mutex
	elapsed time.Duration
	stopped bool
}

// NewManualStopwatch returns a stopwatch reading d.
func NewManualStopwatch(d time.Duration) *ManualStopwatch {
	return &ManualStopwatch{elapsed: d}
}

// Set changes the reading unless the stopwatch was stopped.
func (s *ManualStopwatch) Set(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.elapsed = d
	}
}

func (s *ManualStopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *ManualStopwatch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}
