package progress

import (
	"fmt"
	"sort"
	"sync"
)

// Detail is one line under a worker naming a running test. Details are
// immutable; the summary line that stands for hidden tests is rebuilt with a
// fresh identity every time, so it always compares as changed.
type Detail struct {
	id    int64
	text  string
	watch Stopwatch
}

func (d *Detail) ID() int64 { return d.id }

// Version equals the identity: a detail never changes after creation.
func (d *Detail) Version() int64 { return d.id }
func (d *Detail) Text() string   { return d.text }

// Stopwatch returns the test's clock, or nil for the summary line.
func (d *Detail) Stopwatch() Stopwatch { return d.watch }

// ActiveDetails is the set of tests currently running in a worker.
type ActiveDetails struct {
	seq     *Sequence
	mu      sync.Mutex
	running map[string]*Detail
}

func newActiveDetails(seq *Sequence) *ActiveDetails {
	return &ActiveDetails{seq: seq, running: make(map[string]*Detail)}
}

func (a *ActiveDetails) add(uid, text string, watch Stopwatch) {
	if watch == nil {
		watch = StartStopwatch()
	}
	d := &Detail{id: a.seq.Next(), text: text, watch: watch}
	a.mu.Lock()
	a.running[uid] = d
	a.mu.Unlock()
}

func (a *ActiveDetails) remove(uid string) {
	a.mu.Lock()
	delete(a.running, uid)
	a.mu.Unlock()
}

// Count returns the number of running tests.
func (a *ActiveDetails) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.running)
}

// Running returns at most limit lines, longest-running first. When more
// tests run than fit, the last line is a summary "... and N more tests
// running" standing for the rest.
func (a *ActiveDetails) Running(limit int) []*Detail {
	if limit <= 0 {
		return nil
	}
	sorted := a.sorted()
	if len(sorted) <= limit {
		return sorted
	}
	shown := sorted[:limit-1]
	out := make([]*Detail, 0, limit)
	out = append(out, shown...)
	out = append(out, &Detail{
		id:   a.seq.Next(),
		text: fmt.Sprintf("... and %d more tests running", len(sorted)-len(shown)),
	})
	return out
}

// Longest returns the test that has been running the longest.
func (a *ActiveDetails) Longest() (*Detail, bool) {
	sorted := a.sorted()
	if len(sorted) == 0 {
		return nil, false
	}
	return sorted[0], true
}

func (a *ActiveDetails) sorted() []*Detail {
	a.mu.Lock()
	out := make([]*Detail, 0, len(a.running))
	for _, d := range a.running {
		out = append(out, d)
	}
	a.mu.Unlock()

	elapsed := make(map[*Detail]int64, len(out))
	for _, d := range out {
		elapsed[d] = int64(d.watch.Elapsed())
	}
	sort.Slice(out, func(i, j int) bool {
		if elapsed[out[i]] != elapsed[out[j]] {
			return elapsed[out[i]] > elapsed[out[j]]
		}
		return out[i].id < out[j].id
	})
	return out
}
