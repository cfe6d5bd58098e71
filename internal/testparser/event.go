package testparser

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Actions emitted by go test -json.
const (
	ActionStart       = "start"
	ActionRun         = "run"
	ActionPause       = "pause"
	ActionCont        = "cont"
	ActionOutput      = "output"
	ActionPass        = "pass"
	ActionFail        = "fail"
	ActionSkip        = "skip"
	ActionBench       = "bench"
	ActionBuildOutput = "build-output" // keyed by ImportPath, not Package
	ActionBuildFail   = "build-fail"
)

// TestEvent represents a single event from go test -json output.
type TestEvent struct {
	Time        string  `json:"Time"`
	Action      string  `json:"Action"`
	Package     string  `json:"Package"`
	ImportPath  string  `json:"ImportPath"`
	Test        string  `json:"Test"`
	Elapsed     float64 `json:"Elapsed"`
	Output      string  `json:"Output"`
	FailedBuild string  `json:"FailedBuild"`
}

// ParseEvent decodes one line of go test -json output.
func ParseEvent(line []byte) (TestEvent, error) {
	var e TestEvent
	if err := json.Unmarshal(line, &e); err != nil {
		return TestEvent{}, err
	}
	if e.Action == "" {
		return TestEvent{}, fmt.Errorf("event has no Action")
	}
	return e, nil
}

// Duration converts Elapsed, in seconds, to a time.Duration.
func (e TestEvent) Duration() time.Duration {
	if e.Elapsed <= 0 {
		return 0
	}
	return time.Duration(e.Elapsed * float64(time.Second))
}

// isFraming reports whether an output line is one of the markers go test
// prints around a test rather than something the test wrote.
func isFraming(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "=== RUN") ||
		strings.HasPrefix(trimmed, "=== PAUSE") ||
		strings.HasPrefix(trimmed, "=== CONT") ||
		strings.HasPrefix(trimmed, "=== NAME") ||
		strings.HasPrefix(trimmed, "--- PASS:") ||
		strings.HasPrefix(trimmed, "--- FAIL:") ||
		strings.HasPrefix(trimmed, "--- SKIP:")
}

// isPackageTrailer reports whether a package-level output line is part of
// the result lines go test prints after the tests ran.
func isPackageTrailer(line string) bool {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "", trimmed == "PASS", trimmed == "FAIL":
		return true
	case strings.HasPrefix(trimmed, "ok "), strings.HasPrefix(trimmed, "ok\t"):
		return true
	case strings.HasPrefix(trimmed, "FAIL\t"), strings.HasPrefix(trimmed, "FAIL "):
		return true
	case strings.HasPrefix(trimmed, "? "), strings.HasPrefix(trimmed, "exit status "):
		return true
	case strings.HasPrefix(trimmed, "coverage: "), strings.HasPrefix(trimmed, "testing: warning: no tests to run"):
		return true
	}
	return false
}
