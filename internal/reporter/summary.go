package reporter

import (
	"github.com/AndreyAkinshin/livetest/internal/format"
	"github.com/AndreyAkinshin/livetest/internal/progress"
	"github.com/AndreyAkinshin/livetest/internal/terminal"
)

// verdict decides the run result. Cancellation wins over everything, then
// the minimum-count policy, then "nothing ran" (including all skipped),
// then failures.
func verdict(s Summary, canceled bool, failedWorkers int) RunResult {
	switch {
	case canceled:
		return RunAborted
	case s.Minimum > 0 && s.Total < s.Minimum:
		return RunBelowMinimum
	case s.Total == s.Skipped && failedWorkers == 0:
		return RunZeroTests
	case s.Failed > 0 || failedWorkers > 0:
		return RunFailed
	default:
		return RunPassed
	}
}

func resultText(s Summary) string {
	switch s.Result {
	case RunAborted:
		return "Aborted"
	case RunBelowMinimum:
		return "Minimum expected tests policy violation, tests ran " + formatCount(s.Total) + ", minimum expected " + formatCount(s.Minimum)
	case RunZeroTests:
		return "Zero tests ran"
	default:
		return titleCase(s.Result.String()) + "!"
	}
}

func writeSummary(t terminal.Terminal, s Summary) {
	color := terminal.Green
	if s.Result != RunPassed {
		color = terminal.Red
	}
	t.SetColor(color)
	t.Append("Test run summary: " + resultText(s))
	t.ResetColor()
	t.AppendLine("")

	writeCount(t, "total", s.Total, terminal.Default)
	writeCount(t, "failed", s.Failed, terminal.Red)
	writeCount(t, "succeeded", s.Passed, terminal.Green)
	writeCount(t, "skipped", s.Skipped, terminal.Yellow)
	t.AppendLine(indent + "duration: " + format.DurationMillis(s.Duration))
}

// writeCount colours a count only when it is non-zero.
func writeCount(t terminal.Terminal, name string, n int, color terminal.Color) {
	line := indent + name + ": " + formatCount(n)
	if n == 0 || color == terminal.Default {
		t.AppendLine(line)
		return
	}
	t.SetColor(color)
	t.Append(line)
	t.ResetColor()
	t.AppendLine("")
}

func writeDiscoverySummary(t terminal.Terminal, workers []*progress.Worker, s Summary) {
	for _, w := range workers {
		tests := w.Discovered()
		if len(tests) == 0 {
			continue
		}
		t.Append("Discovered " + formatCount(len(tests)) + " tests in ")
		appendWorker(t, w.Info())
		t.AppendLine(":")
		for _, test := range tests {
			t.AppendLine(indent + test.Name)
		}
		t.AppendLine("")
	}

	color := terminal.Green
	if s.Result != RunPassed {
		color = terminal.Red
	}
	t.SetColor(color)
	if s.Result == RunZeroTests {
		t.Append("Test discovery summary: " + resultText(s))
	} else {
		t.Append("Test discovery summary: found " + formatCount(s.Total) + " tests in " + formatCount(s.Workers) + " test containers")
	}
	t.ResetColor()
	t.AppendLine("")
	t.AppendLine(indent + "duration: " + format.DurationMillis(s.Duration))
}

func writeArtifacts(t terminal.Terminal, artifacts []Artifact) {
	writeArtifactGroup(t, "In process file artifacts produced:", artifacts, false)
	writeArtifactGroup(t, "Out of process file artifacts produced:", artifacts, true)
}

func writeArtifactGroup(t terminal.Terminal, header string, artifacts []Artifact, outOfProcess bool) {
	wrote := false
	for _, a := range artifacts {
		if a.OutOfProcess != outOfProcess {
			continue
		}
		if !wrote {
			t.AppendLine(header)
			wrote = true
		}
		t.Append(indent + "- ")
		t.AppendLink(a.Path, 0)
		t.AppendLine("")
	}
}

func formatElapsed(w *progress.Worker) string {
	return format.DurationMillis(w.Elapsed())
}
