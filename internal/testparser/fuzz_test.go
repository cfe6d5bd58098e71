package testparser

import (
	"strings"
	"testing"
)

// FuzzSource feeds arbitrary input to a Source.
// Run: go test -fuzz=FuzzSource -fuzztime=30s ./internal/testparser
func FuzzSource(f *testing.F) {
	// Seed corpus with representative inputs
	seeds := []string{
		jsonTestOutput,
		`{"Action":"run","Package":"p","Test":"T"}`,
		`{"Action":"pass","Package":"p"}` + "\n" + `{"Action":"run","Package":"p","Test":"T"}`,
		`{"Action":"output","Package":"p","Test":"T","Output":"panic: x\n"}`,
		`{"ImportPath":"p [p.test]","Action":"build-output","Output":"# p\n"}`,
		`{"Action":"fail","Package":"p","FailedBuild":"p [p.test]"}`,
		// Empty and edge cases
		"",
		"\n",
		"=== RUN   TestFoo\n--- PASS: TestFoo (0.00s)\nPASS",
		// Partial/malformed
		`{"Action":`,
		`{"Action":"run"}`,
		`{"Action":"pass","Package":"p","Elapsed":-1}`,
		// Edge cases: very long test names
		`{"Action":"run","Package":"p","Test":"` + strings.Repeat("x", 10000) + `"}`,
		// Edge cases: binary-like prefix before valid output
		"\x00\x01\x02" + `{"Action":"run","Package":"p","Test":"T"}`,
	}

	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		sink := &recordingSink{}
		src := NewSource(sink, Options{Capacity: 2})
		for _, line := range strings.Split(input, "\n") {
			src.Feed([]byte(line))
		}
		src.Close()
		stats := src.Stats()

		// Basic invariants that must hold for any input
		if stats.Passed < 0 || stats.Failed < 0 || stats.Skipped < 0 || stats.Malformed < 0 {
			t.Errorf("negative count: %+v", stats)
		}
		if !src.opts.Discovery && stats.Total != stats.Passed+stats.Failed+stats.Skipped {
			t.Errorf("total mismatch: %+v", stats)
		}

		// Every started package is completed exactly once and never more
		// than Capacity are shown at a time.
		if sink.live != 0 {
			t.Errorf("%d packages left open", sink.live)
		}
		if sink.peak > 2 {
			t.Errorf("peak live packages = %d, want <= 2", sink.peak)
		}
		started, done := 0, 0
		for _, c := range sink.calls {
			switch c.method {
			case "start":
				started++
			case "done":
				done++
			}
		}
		if started != stats.Packages || done != stats.Packages {
			t.Errorf("started=%d done=%d packages=%d", started, done, stats.Packages)
		}
	})
}

// FuzzParseFailure checks that failure extraction never panics and keeps
// messages and locations paired.
// Run: go test -fuzz=FuzzParseFailure -fuzztime=30s ./internal/testparser
func FuzzParseFailure(f *testing.F) {
	seeds := []string{
		"    foo_test.go:15: expected 42, got 0\n",
		"    foo_test.go:12: \n        \texpected: 1\n        \tactual  : 2\n",
		"panic: boom [recovered]\n\tpanic: boom\n\ngoroutine 1 [running]:\n",
		"panic: \n",
		"\t\t\t\n",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		fl := parseFailure(strings.SplitAfter(input, "\n"))
		if len(fl.messages) != len(fl.locations) {
			t.Errorf("messages=%d locations=%d", len(fl.messages), len(fl.locations))
		}
	})
}
