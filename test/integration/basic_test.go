// Package integration replays recorded go test -json streams through the
// parser and the reporter.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/AndreyAkinshin/livetest/internal/progress"
	"github.com/AndreyAkinshin/livetest/internal/reporter"
	"github.com/AndreyAkinshin/livetest/internal/terminal"
	"github.com/AndreyAkinshin/livetest/internal/testparser"
	"github.com/AndreyAkinshin/livetest/pkg/livetest"
)

var (
	fixturesDirOnce sync.Once
	fixturesDirPath string
)

// fixturesDir returns the path to the test fixtures directory.
func fixturesDir() string {
	fixturesDirOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		fixturesDirPath = filepath.Join(filepath.Dir(filename), "..", "fixtures")
	})
	return fixturesDirPath
}

type replayResult struct {
	text    string
	summary reporter.Summary
	stats   testparser.Stats
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(fixturesDir(), name))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	return string(data)
}

// replay feeds a fixture through a Source into a plain-text reporter.
func replay(t *testing.T, fixture string, opts reporter.Options, parallelism int, discovery bool) replayResult {
	t.Helper()
	return replayInput(t, readFixture(t, fixture), opts, parallelism, discovery)
}

func replayInput(t *testing.T, input string, opts reporter.Options, parallelism int, discovery bool) replayResult {
	t.Helper()
	var out strings.Builder
	term := terminal.NewNoAnsi(&out, "/home/dev/shop", terminal.FixedSize(120, 40))
	opts.NewStopwatch = func() progress.Stopwatch { return progress.NewManualStopwatch(0) }
	rep := reporter.New(term, opts)
	defer rep.Close()

	rep.RunStarted(parallelism, discovery)
	src := testparser.NewSource(rep, testparser.Options{Capacity: parallelism, Discovery: discovery})
	stats, err := src.Run(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	summary := rep.RunCompleted()
	return replayResult{text: out.String(), summary: summary, stats: stats}
}

func assertContains(t *testing.T, text string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestMixedRun(t *testing.T) {
	t.Parallel()

	r := replay(t, "mixed.jsonl", reporter.Options{ShowAssembly: true}, 4, false)

	if r.summary.Result != reporter.RunFailed {
		t.Errorf("Result = %v, want %v", r.summary.Result, reporter.RunFailed)
	}
	if code := r.summary.Result.ExitCode(); code != livetest.ExitTestsFailed {
		t.Errorf("exit code = %d, want %d", code, livetest.ExitTestsFailed)
	}
	if r.summary.Total != 3 || r.summary.Passed != 1 || r.summary.Failed != 1 || r.summary.Skipped != 1 {
		t.Errorf("summary = %+v, want 3 total, 1 passed, 1 failed, 1 skipped", r.summary)
	}
	if r.stats.Packages != 3 {
		t.Errorf("Packages = %d, want 3", r.stats.Packages)
	}
	assertContains(t, r.text,
		"failed TestDiscount",
		"from example.com/shop/price",
		"Expected",
		"90",
		"Actual",
		"95",
		"skipped TestCart_Remove",
		"flaky on CI, see issue 88",
		"Test run summary: Failed!",
		"total: 3",
	)
	if strings.Contains(r.text, "TestCart_Add") {
		t.Errorf("passed test printed without ShowPassedTests:\n%s", r.text)
	}
	// A package whose failure is explained by its failed test is not
	// reported as a failed process.
	if strings.Contains(r.text, "exited with error code") {
		t.Errorf("unexpected exit block:\n%s", r.text)
	}
}

func TestMixedRun_ShowPassed(t *testing.T) {
	t.Parallel()

	r := replay(t, "mixed.jsonl", reporter.Options{ShowPassedTests: true}, 4, false)

	assertContains(t, r.text, "passed TestCart_Add")
}

func TestMixedRun_AssemblyEvents(t *testing.T) {
	t.Parallel()

	r := replay(t, "mixed.jsonl", reporter.Options{ShowAssembly: true, ShowAssemblyStartAndComplete: true}, 4, false)

	assertContains(t, r.text,
		"Running tests from example.com/shop/cart",
		"Running tests from example.com/shop/price",
		"Passed! - example.com/shop/cart",
		"Failed! - example.com/shop/price",
	)
}

// A single slot forces the second package to wait for the first.
func TestMixedRun_SingleSlot(t *testing.T) {
	t.Parallel()

	r := replay(t, "mixed.jsonl", reporter.Options{ShowAssembly: true, ShowAssemblyStartAndComplete: true}, 1, false)

	if r.summary.Total != 3 {
		t.Errorf("Total = %d, want 3", r.summary.Total)
	}
	cart := strings.Index(r.text, "Passed! - example.com/shop/cart")
	price := strings.Index(r.text, "Running tests from example.com/shop/price")
	if cart < 0 || price < 0 || price < cart {
		t.Errorf("price started before cart completed:\n%s", r.text)
	}
}

func TestMinimumExpected(t *testing.T) {
	t.Parallel()

	r := replay(t, "mixed.jsonl", reporter.Options{MinimumExpectedTests: 10}, 4, false)

	if code := r.summary.Result.ExitCode(); code != livetest.ExitMinimumExpected {
		t.Errorf("exit code = %d, want %d", code, livetest.ExitMinimumExpected)
	}
	assertContains(t, r.text, "tests ran 3, minimum expected 10")
}

func TestDiscovery(t *testing.T) {
	t.Parallel()

	r := replay(t, "list.jsonl", reporter.Options{ShowAssembly: true}, 4, true)

	if !r.summary.Discovery || r.summary.Total != 3 {
		t.Errorf("summary = %+v, want 3 discovered tests", r.summary)
	}
	assertContains(t, r.text, "Discovered 3 tests in example.com/shop/cart:", "TestCart_Add", "TestCart_Remove", "ExampleCart")
}
