package testparser

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/AndreyAkinshin/livetest/internal/reporter"
)

// maxLineSize bounds one event line. Test output lines are embedded in the
// JSON, so a test that prints a large blob produces a large event.
const maxLineSize = 16 * 1024 * 1024

// Messages for tests that never reported a result.
const (
	reasonIncomplete = "test did not complete"
	reasonTimeout    = "test timed out"
	reasonCanceled   = "test run was canceled"

	timeoutPanic = "panic: test timed out"
)

// "TestFoo", "BenchmarkBar", "ExampleBaz", "FuzzQux" as printed by go test -list.
var listedName = regexp.MustCompile(`^(Test|Benchmark|Example|Fuzz)\S*$`)

// Options configure a Source.
type Options struct {
	// Capacity is the number of packages shown at once. Events of further
	// packages are held back until a shown package completes. It must not
	// exceed the parallelism the reporter run was started with.
	Capacity int
	// Discovery reads the output of go test -list -json: package output
	// lines name tests instead of being output.
	Discovery bool
	Logger    *slog.Logger
}

// Source feeds go test -json events into a Sink. A Source is not safe for
// concurrent use; it is driven by one reader.
type Source struct {
	sink   Sink
	opts   Options
	logger *slog.Logger

	packages map[string]*pkgState
	order    []*pkgState
	pending  []*pkgState
	live     int
	builds   map[string][]string
	stats    Stats
}

type pkgState struct {
	info    reporter.WorkerInfo
	live    bool
	done    bool
	queued  []TestEvent
	running map[string]*testState
	started []string
	output  []string
	late    []string
	failed  int
}

type testState struct {
	output []string
}

// NewSource creates a Source that reports to sink.
func NewSource(sink Sink, opts Options) *Source {
	if opts.Capacity < 1 {
		opts.Capacity = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Source{
		sink:     sink,
		opts:     opts,
		logger:   logger,
		packages: make(map[string]*pkgState),
		builds:   make(map[string][]string),
	}
}

// Stats returns what was read so far.
func (s *Source) Stats() Stats {
	return s.stats
}

// Run reads events from r until EOF and then completes every package still
// open. When ctx is canceled it stops reading, reports unfinished tests as
// canceled, and returns ctx.Err().
func (s *Source) Run(ctx context.Context, r io.Reader) (Stats, error) {
	lines := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := bytes.Clone(scanner.Bytes())
			select {
			case lines <- line:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			s.flush(reporter.Canceled, reasonCanceled)
			return s.stats, ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := ctx.Err(); err != nil {
					s.flush(reporter.Canceled, reasonCanceled)
					return s.stats, err
				}
				s.Close()
				return s.stats, <-errc
			}
			s.Feed(line)
		}
	}
}

// Feed handles one line of go test -json output. Lines that are not events
// are counted and skipped.
func (s *Source) Feed(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}
	e, err := ParseEvent(line)
	if err != nil {
		s.stats.Malformed++
		s.logger.Debug("skipping malformed event line", "line", preview(line), "error", err)
		return
	}
	s.Handle(e)
}

// Handle processes one decoded event.
func (s *Source) Handle(e TestEvent) {
	switch e.Action {
	case ActionBuildOutput:
		s.builds[e.ImportPath] = append(s.builds[e.ImportPath], e.Output)
		return
	case ActionBuildFail:
		return
	}
	if e.Package == "" {
		return
	}

	p := s.pkg(e.Package)
	switch {
	case p.done:
		s.logger.Debug("event after package completed", "package", e.Package, "action", e.Action)
	case !p.live:
		p.queued = append(p.queued, e)
	default:
		s.dispatch(p, e)
	}
}

// Close completes every package that is still open, reporting tests that
// never finished as errors. Run calls it at EOF.
func (s *Source) Close() {
	s.flush(reporter.Error, reasonIncomplete)
}

// pkg returns the state of a package, admitting it to the display or
// queueing it on first sight.
func (s *Source) pkg(name string) *pkgState {
	if p, ok := s.packages[name]; ok {
		return p
	}
	p := &pkgState{
		info:    reporter.WorkerInfo{Assembly: name, Name: name},
		running: make(map[string]*testState),
	}
	s.packages[name] = p
	s.order = append(s.order, p)
	s.stats.Packages++
	if s.live < s.opts.Capacity {
		s.admit(p)
	} else {
		s.pending = append(s.pending, p)
		s.logger.Debug("package queued", "package", name, "live", s.live)
	}
	return p
}

func (s *Source) admit(p *pkgState) {
	p.live = true
	s.live++
	s.sink.WorkerStarted(p.info)
}

// promote admits queued packages while there is room and replays what they
// received in the meantime.
func (s *Source) promote() {
	for s.live < s.opts.Capacity && len(s.pending) > 0 {
		p := s.pending[0]
		s.pending = s.pending[1:]
		s.admit(p)
		events := p.queued
		p.queued = nil
		for _, e := range events {
			if p.done {
				break
			}
			s.dispatch(p, e)
		}
	}
}

func (s *Source) dispatch(p *pkgState, e TestEvent) {
	if e.Test == "" {
		s.packageEvent(p, e)
		return
	}

	switch e.Action {
	case ActionRun:
		if _, ok := p.running[e.Test]; !ok {
			p.started = append(p.started, e.Test)
		}
		p.running[e.Test] = &testState{}
		s.sink.TestInProgress(p.info, e.Test, e.Test)
	case ActionOutput:
		if t, ok := p.running[e.Test]; ok {
			t.output = append(t.output, e.Output)
		} else {
			p.late = append(p.late, e.Output)
		}
	case ActionPass, ActionFail, ActionSkip:
		s.testCompleted(p, e)
	}
}

func (s *Source) testCompleted(p *pkgState, e TestEvent) {
	var output []string
	if t, ok := p.running[e.Test]; ok {
		output = t.output
	}
	p.forget(e.Test)

	res := reporter.TestResult{UID: e.Test, DisplayName: e.Test, Duration: e.Duration()}
	switch e.Action {
	case ActionPass:
		res.Outcome = reporter.Passed
		res.Stdout = joinOutput(output)
		s.stats.Passed++
	case ActionSkip:
		res.Outcome = reporter.Skipped
		res.InformativeMessage = skipReason(output)
		s.stats.Skipped++
	default:
		res.Outcome = reporter.Failed
		parseFailure(output).apply(&res)
		p.failed++
		s.stats.Failed++
	}
	s.stats.Total++
	s.sink.TestCompleted(p.info, res)
}

func (s *Source) packageEvent(p *pkgState, e TestEvent) {
	switch e.Action {
	case ActionOutput:
		if s.opts.Discovery {
			if name := strings.TrimSpace(e.Output); listedName.MatchString(name) {
				s.stats.Total++
				s.sink.TestDiscovered(p.info, name, name)
				return
			}
		}
		p.output = append(p.output, e.Output)
	case ActionPass, ActionSkip:
		code := 0
		s.finish(p, reporter.Error, reasonIncomplete, &code, "", "")
	case ActionFail:
		s.packageFailed(p, e)
	}
}

// packageFailed completes a failed package. The exit code is reported when
// the failure is not explained by failed tests alone: nothing failed, the
// build failed, or the binary printed something outside of any test.
func (s *Source) packageFailed(p *pkgState, e TestEvent) {
	var lines []string
	for _, line := range p.output {
		if !isPackageTrailer(line) {
			lines = append(lines, line)
		}
	}
	lines = append(lines, p.late...)
	stdout := joinOutput(lines)

	var stderr string
	if e.FailedBuild != "" {
		stderr = strings.TrimRight(strings.Join(s.builds[e.FailedBuild], ""), "\n")
	}

	outcome, reason := reporter.Error, reasonIncomplete
	if strings.Contains(stdout, timeoutPanic) || p.runningOutputContains(timeoutPanic) {
		outcome, reason = reporter.Timeout, reasonTimeout
	}

	var exitCode *int
	if p.failed == 0 || strings.TrimSpace(stdout) != "" || stderr != "" {
		code := 1
		exitCode = &code
	}
	s.finish(p, outcome, reason, exitCode, stdout, stderr)
}

// finish reports the tests of p that never completed, then the package
// itself, and makes room for the next queued package.
func (s *Source) finish(p *pkgState, outcome reporter.Outcome, reason string, exitCode *int, stdout, stderr string) {
	for _, name := range append([]string(nil), p.started...) {
		t := p.running[name]
		p.forget(name)
		res := reporter.TestResult{
			UID:          name,
			DisplayName:  name,
			Outcome:      outcome,
			ErrorMessage: reason,
			Stdout:       joinOutput(t.output),
		}
		s.stats.Failed++
		s.stats.Total++
		s.sink.TestCompleted(p.info, res)
	}

	p.done = true
	p.live = false
	s.live--
	s.sink.WorkerCompleted(p.info, exitCode, stdout, stderr)
	s.promote()
}

// flush finishes every open package, oldest first.
func (s *Source) flush(outcome reporter.Outcome, reason string) {
	for {
		var open *pkgState
		for _, p := range s.order {
			if p.live && !p.done {
				open = p
				break
			}
		}
		if open == nil {
			return
		}
		s.finish(open, outcome, reason, nil, "", "")
	}
}

func (p *pkgState) runningOutputContains(substr string) bool {
	for _, t := range p.running {
		for _, line := range t.output {
			if strings.Contains(line, substr) {
				return true
			}
		}
	}
	return false
}

func (p *pkgState) forget(test string) {
	if _, ok := p.running[test]; !ok {
		return
	}
	delete(p.running, test)
	for i, name := range p.started {
		if name == test {
			p.started = append(p.started[:i], p.started[i+1:]...)
			break
		}
	}
}

func preview(line []byte) string {
	const maxLen = 120
	if len(line) > maxLen {
		return string(line[:maxLen-3]) + "..."
	}
	return string(line)
}
