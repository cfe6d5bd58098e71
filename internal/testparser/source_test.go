package testparser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/AndreyAkinshin/livetest/internal/reporter"
)

// call is one Sink method invocation.
type call struct {
	method   string
	pkg      string
	test     string
	exitCode *int
	stdout   string
	stderr   string
	result   reporter.TestResult
}

type recordingSink struct {
	calls []call
	live  int
	peak  int
}

func (s *recordingSink) WorkerStarted(info reporter.WorkerInfo) {
	s.live++
	s.peak = max(s.peak, s.live)
	s.calls = append(s.calls, call{method: "start", pkg: info.Assembly})
}

func (s *recordingSink) WorkerCompleted(info reporter.WorkerInfo, exitCode *int, stdout, stderr string) {
	s.live--
	s.calls = append(s.calls, call{method: "done", pkg: info.Assembly, exitCode: exitCode, stdout: stdout, stderr: stderr})
}

func (s *recordingSink) TestInProgress(info reporter.WorkerInfo, uid, displayName string) {
	s.calls = append(s.calls, call{method: "run", pkg: info.Assembly, test: displayName})
}

func (s *recordingSink) TestCompleted(info reporter.WorkerInfo, res reporter.TestResult) {
	s.calls = append(s.calls, call{method: "result", pkg: info.Assembly, test: res.DisplayName, result: res})
}

func (s *recordingSink) TestDiscovered(info reporter.WorkerInfo, displayName, uid string) {
	s.calls = append(s.calls, call{method: "discovered", pkg: info.Assembly, test: displayName})
}

func (s *recordingSink) methods() []string {
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.method + " " + c.pkg
		if c.test != "" {
			out[i] += " " + c.test
		}
	}
	return out
}

func (s *recordingSink) results() []reporter.TestResult {
	var out []reporter.TestResult
	for _, c := range s.calls {
		if c.method == "result" {
			out = append(out, c.result)
		}
	}
	return out
}

func (s *recordingSink) completion(pkg string) (call, bool) {
	for _, c := range s.calls {
		if c.method == "done" && c.pkg == pkg {
			return c, true
		}
	}
	return call{}, false
}

// ev builds one go test -json line.
func ev(action, pkg, test string, extra ...string) string {
	s := fmt.Sprintf(`{"Time":"2024-01-01T00:00:00Z","Action":%q,"Package":%q`, action, pkg)
	if test != "" {
		s += fmt.Sprintf(`,"Test":%q`, test)
	}
	for _, e := range extra {
		s += "," + e
	}
	return s + "}"
}

func out(pkg, test, text string) string {
	return ev("output", pkg, test, fmt.Sprintf(`"Output":%q`, text))
}

func run(t *testing.T, opts Options, lines ...string) (*recordingSink, Stats) {
	t.Helper()
	sink := &recordingSink{}
	src := NewSource(sink, opts)
	stats, err := src.Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return sink, stats
}

func equalStrings(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d\ngot:  %q\nwant: %q", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSource_PassingPackage(t *testing.T) {
	t.Parallel()
	sink, stats := run(t, Options{Capacity: 2},
		ev("start", "example.com/a", ""),
		ev("run", "example.com/a", "TestFoo"),
		out("example.com/a", "TestFoo", "=== RUN   TestFoo\n"),
		out("example.com/a", "TestFoo", "--- PASS: TestFoo (0.01s)\n"),
		ev("pass", "example.com/a", "TestFoo", `"Elapsed":0.01`),
		out("example.com/a", "", "PASS\n"),
		out("example.com/a", "", "ok  \texample.com/a\t0.012s\n"),
		ev("pass", "example.com/a", "", `"Elapsed":0.012`),
	)

	equalStrings(t, sink.methods(), []string{
		"start example.com/a",
		"run example.com/a TestFoo",
		"result example.com/a TestFoo",
		"done example.com/a",
	})
	res := sink.results()[0]
	if res.Outcome != reporter.Passed {
		t.Errorf("Outcome = %v, want passed", res.Outcome)
	}
	if res.Duration != 10*time.Millisecond {
		t.Errorf("Duration = %v, want 10ms", res.Duration)
	}
	if res.Stdout != "" {
		t.Errorf("Stdout = %q, want framing stripped", res.Stdout)
	}
	done, _ := sink.completion("example.com/a")
	if done.exitCode == nil || *done.exitCode != 0 {
		t.Errorf("exit code = %v, want 0", done.exitCode)
	}
	want := Stats{Packages: 1, Passed: 1, Total: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestSource_FailedTest(t *testing.T) {
	t.Parallel()
	sink, stats := run(t, Options{Capacity: 1},
		ev("run", "example.com/a", "TestBar"),
		out("example.com/a", "TestBar", "=== RUN   TestBar\n"),
		out("example.com/a", "TestBar", "some log line\n"),
		out("example.com/a", "TestBar", "    bar_test.go:15: expected 42, got 0\n"),
		out("example.com/a", "TestBar", "--- FAIL: TestBar (0.02s)\n"),
		ev("fail", "example.com/a", "TestBar", `"Elapsed":0.02`),
		out("example.com/a", "", "FAIL\n"),
		out("example.com/a", "", "FAIL\texample.com/a\t0.020s\n"),
		ev("fail", "example.com/a", "", `"Elapsed":0.02`),
	)

	res := sink.results()[0]
	if res.Outcome != reporter.Failed {
		t.Fatalf("Outcome = %v, want failed", res.Outcome)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("Errors = %+v, want one", res.Errors)
	}
	if res.Errors[0].Message != "expected 42, got 0" {
		t.Errorf("Message = %q", res.Errors[0].Message)
	}
	if res.Errors[0].StackTrace != "bar_test.go:15" {
		t.Errorf("StackTrace = %q", res.Errors[0].StackTrace)
	}
	if res.Stdout != "some log line" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "some log line")
	}

	// The failure is explained by the failed test, so no exit block.
	done, _ := sink.completion("example.com/a")
	if done.exitCode != nil {
		t.Errorf("exit code = %d, want none", *done.exitCode)
	}
	if stats.Failed != 1 || stats.Total != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSource_PackageFailWithoutTestFailures(t *testing.T) {
	t.Parallel()
	sink, _ := run(t, Options{Capacity: 1},
		ev("start", "example.com/a", ""),
		out("example.com/a", "", "TestMain setup failed: no database\n"),
		out("example.com/a", "", "FAIL\texample.com/a\t0.001s\n"),
		ev("fail", "example.com/a", "", `"Elapsed":0.001`),
	)

	done, ok := sink.completion("example.com/a")
	if !ok {
		t.Fatal("package was not completed")
	}
	if done.exitCode == nil || *done.exitCode != 1 {
		t.Fatalf("exit code = %v, want 1", done.exitCode)
	}
	if done.stdout != "TestMain setup failed: no database" {
		t.Errorf("stdout = %q", done.stdout)
	}
}

func TestSource_BuildFailure(t *testing.T) {
	t.Parallel()
	sink, _ := run(t, Options{Capacity: 1},
		`{"ImportPath":"example.com/a [example.com/a.test]","Action":"build-output","Output":"# example.com/a\n"}`,
		`{"ImportPath":"example.com/a [example.com/a.test]","Action":"build-output","Output":"./a.go:3:1: syntax error\n"}`,
		`{"ImportPath":"example.com/a [example.com/a.test]","Action":"build-fail"}`,
		ev("start", "example.com/a", ""),
		out("example.com/a", "", "FAIL\texample.com/a [build failed]\n"),
		ev("fail", "example.com/a", "", `"Elapsed":0`, `"FailedBuild":"example.com/a [example.com/a.test]"`),
	)

	done, _ := sink.completion("example.com/a")
	if done.exitCode == nil || *done.exitCode != 1 {
		t.Fatalf("exit code = %v, want 1", done.exitCode)
	}
	if done.stderr != "# example.com/a\n./a.go:3:1: syntax error" {
		t.Errorf("stderr = %q", done.stderr)
	}
	if done.stdout != "" {
		t.Errorf("stdout = %q, want trailer dropped", done.stdout)
	}
}

func TestSource_SkippedTest(t *testing.T) {
	t.Parallel()
	sink, stats := run(t, Options{Capacity: 1},
		ev("run", "example.com/a", "TestSlow"),
		out("example.com/a", "TestSlow", "    slow_test.go:9: skipping in short mode\n"),
		out("example.com/a", "TestSlow", "--- SKIP: TestSlow (0.00s)\n"),
		ev("skip", "example.com/a", "TestSlow"),
		ev("pass", "example.com/a", ""),
	)

	res := sink.results()[0]
	if res.Outcome != reporter.Skipped {
		t.Errorf("Outcome = %v, want skipped", res.Outcome)
	}
	if res.InformativeMessage != "skipping in short mode" {
		t.Errorf("InformativeMessage = %q", res.InformativeMessage)
	}
	if stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSource_PanicAfterFail(t *testing.T) {
	t.Parallel()
	sink, _ := run(t, Options{Capacity: 1},
		ev("run", "example.com/a", "TestPanic"),
		out("example.com/a", "TestPanic", "--- FAIL: TestPanic (0.00s)\n"),
		ev("fail", "example.com/a", "TestPanic"),
		out("example.com/a", "TestPanic", "panic: boom [recovered]\n"),
		out("example.com/a", "TestPanic", "\tpanic: boom\n"),
		out("example.com/a", "", "FAIL\texample.com/a\t0.005s\n"),
		ev("fail", "example.com/a", ""),
	)

	done, _ := sink.completion("example.com/a")
	if done.exitCode == nil {
		t.Fatal("late panic output should be reported with the exit code")
	}
	if !strings.Contains(done.stdout, "panic: boom [recovered]") {
		t.Errorf("stdout = %q, want the panic", done.stdout)
	}
}

func TestSource_Timeout(t *testing.T) {
	t.Parallel()
	sink, _ := run(t, Options{Capacity: 1},
		ev("run", "example.com/a", "TestSlow"),
		out("example.com/a", "TestSlow", "=== RUN   TestSlow\n"),
		out("example.com/a", "TestSlow", "panic: test timed out after 1s\n"),
		out("example.com/a", "", "FAIL\texample.com/a\t1.005s\n"),
		ev("fail", "example.com/a", "", `"Elapsed":1.005`),
	)

	results := sink.results()
	if len(results) != 1 {
		t.Fatalf("results = %+v, want one", results)
	}
	if results[0].Outcome != reporter.Timeout {
		t.Errorf("Outcome = %v, want timeout", results[0].Outcome)
	}
	if results[0].ErrorMessage != reasonTimeout {
		t.Errorf("ErrorMessage = %q", results[0].ErrorMessage)
	}
}

func TestSource_CapacityQueuesPackages(t *testing.T) {
	t.Parallel()
	sink, stats := run(t, Options{Capacity: 1},
		ev("run", "example.com/a", "TestA"),
		ev("run", "example.com/b", "TestB"),
		ev("pass", "example.com/b", "TestB"),
		ev("pass", "example.com/b", ""),
		ev("pass", "example.com/a", "TestA"),
		ev("pass", "example.com/a", ""),
	)

	equalStrings(t, sink.methods(), []string{
		"start example.com/a",
		"run example.com/a TestA",
		"result example.com/a TestA",
		"done example.com/a",
		"start example.com/b",
		"run example.com/b TestB",
		"result example.com/b TestB",
		"done example.com/b",
	})
	if sink.peak != 1 {
		t.Errorf("peak live packages = %d, want 1", sink.peak)
	}
	if stats.Packages != 2 || stats.Passed != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSource_InterleavedPackages(t *testing.T) {
	t.Parallel()
	sink, _ := run(t, Options{Capacity: 2},
		ev("run", "example.com/a", "TestA"),
		ev("run", "example.com/b", "TestB"),
		ev("pass", "example.com/b", "TestB"),
		ev("pass", "example.com/a", "TestA"),
		ev("pass", "example.com/a", ""),
		ev("pass", "example.com/b", ""),
	)

	equalStrings(t, sink.methods(), []string{
		"start example.com/a",
		"run example.com/a TestA",
		"start example.com/b",
		"run example.com/b TestB",
		"result example.com/b TestB",
		"result example.com/a TestA",
		"done example.com/a",
		"done example.com/b",
	})
	if sink.peak != 2 {
		t.Errorf("peak live packages = %d, want 2", sink.peak)
	}
}

func TestSource_TruncatedStream(t *testing.T) {
	t.Parallel()
	sink, stats := run(t, Options{Capacity: 1},
		ev("run", "example.com/a", "TestA"),
		out("example.com/a", "TestA", "working\n"),
	)

	results := sink.results()
	if len(results) != 1 || results[0].Outcome != reporter.Error {
		t.Fatalf("results = %+v, want one error", results)
	}
	if results[0].ErrorMessage != reasonIncomplete || results[0].Stdout != "working" {
		t.Errorf("result = %+v", results[0])
	}
	if _, ok := sink.completion("example.com/a"); !ok {
		t.Error("package was not completed at EOF")
	}
	if stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSource_MalformedLines(t *testing.T) {
	t.Parallel()
	sink, stats := run(t, Options{Capacity: 1},
		"not json at all",
		`{"Action":`,
		`{"Package":"example.com/a"}`,
		"",
		ev("run", "example.com/a", "TestA"),
		ev("pass", "example.com/a", "TestA"),
		ev("pass", "example.com/a", ""),
	)

	if stats.Malformed != 3 {
		t.Errorf("Malformed = %d, want 3", stats.Malformed)
	}
	if len(sink.results()) != 1 {
		t.Errorf("results = %d, want 1", len(sink.results()))
	}
}

func TestSource_Discovery(t *testing.T) {
	t.Parallel()
	sink, stats := run(t, Options{Capacity: 1, Discovery: true},
		ev("start", "example.com/a", ""),
		out("example.com/a", "", "TestAlpha\n"),
		out("example.com/a", "", "BenchmarkBeta\n"),
		out("example.com/a", "", "ok  \texample.com/a\t0.002s\n"),
		ev("pass", "example.com/a", ""),
	)

	equalStrings(t, sink.methods(), []string{
		"start example.com/a",
		"discovered example.com/a TestAlpha",
		"discovered example.com/a BenchmarkBeta",
		"done example.com/a",
	})
	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
}

func TestSource_EventsAfterCompletionIgnored(t *testing.T) {
	t.Parallel()
	sink, _ := run(t, Options{Capacity: 1},
		ev("pass", "example.com/a", ""),
		ev("run", "example.com/a", "TestLate"),
	)
	equalStrings(t, sink.methods(), []string{
		"start example.com/a",
		"done example.com/a",
	})
}

// blockingReader returns one chunk and then blocks until closed.
type blockingReader struct {
	data   []byte
	closed chan struct{}
}

func (r *blockingReader) Read(p []byte) (int, error) {
	if len(r.data) > 0 {
		n := copy(p, r.data)
		r.data = r.data[n:]
		return n, nil
	}
	<-r.closed
	return 0, io.EOF
}

func TestSource_RunCanceled(t *testing.T) {
	t.Parallel()
	r := &blockingReader{
		data:   []byte(ev("run", "example.com/a", "TestA") + "\n"),
		closed: make(chan struct{}),
	}
	defer close(r.closed)

	sink := &recordingSink{}
	src := NewSource(sink, Options{Capacity: 1})
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := src.Run(ctx, r)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	results := sink.results()
	if len(results) != 1 || results[0].Outcome != reporter.Canceled {
		t.Fatalf("results = %+v, want one canceled test", results)
	}
	if _, ok := sink.completion("example.com/a"); !ok {
		t.Error("package was not completed on cancel")
	}
}
