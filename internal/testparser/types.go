// Package testparser turns a `go test -json` event stream into reporter
// calls: every package becomes a worker, every test a progress detail and a
// result.
package testparser

import (
	"github.com/AndreyAkinshin/livetest/internal/reporter"
)

// Sink receives the events a Source decodes. *reporter.Reporter implements
// it.
type Sink interface {
	WorkerStarted(info reporter.WorkerInfo)
	WorkerCompleted(info reporter.WorkerInfo, exitCode *int, stdout, stderr string)
	TestInProgress(info reporter.WorkerInfo, uid, displayName string)
	TestCompleted(info reporter.WorkerInfo, res reporter.TestResult)
	TestDiscovered(info reporter.WorkerInfo, displayName, uid string)
}

var _ Sink = (*reporter.Reporter)(nil)

// Stats holds counts of what a Source read.
type Stats struct {
	Packages  int
	Passed    int
	Failed    int
	Skipped   int
	Total     int
	Malformed int // lines that were not a JSON event
}

// Add adds another Stats to this one.
func (s *Stats) Add(other *Stats) {
	if other == nil {
		return
	}
	s.Packages += other.Packages
	s.Passed += other.Passed
	s.Failed += other.Failed
	s.Skipped += other.Skipped
	s.Total += other.Total
	s.Malformed += other.Malformed
}
