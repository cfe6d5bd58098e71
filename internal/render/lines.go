package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AndreyAkinshin/livetest/internal/format"
	"github.com/AndreyAkinshin/livetest/internal/progress"
	"github.com/AndreyAkinshin/livetest/internal/terminal"
)

// detailHeightShare is the share of terminal rows the progress region may
// use before running tests collapse into "... and N more".
const detailHeightShare = 0.7

// DetailBudget returns how many running-test lines each of workers may show
// on a terminal height rows tall. It is 0 when the workers alone use up the
// share.
func DetailBudget(height, workers int) int {
	if workers <= 0 {
		return 0
	}
	total := int(float64(height)*detailHeightShare) - 1 - workers
	return max(total/workers, 0)
}

// MaxLines is the number of render-list rows that fit on a terminal height
// rows tall: the region adds a blank row above and below, and the cursor
// rests on the row after it.
func MaxLines(height int) int {
	return max(height-3, 0)
}

// line is one row of the render list.
type line struct {
	id       int64
	version  int64
	duration string
	// volatile lines have no stable identity and are redrawn every pass.
	volatile bool
	draw     func(t terminal.Terminal, budget int)
}

// flatten turns the slot snapshot into the ordered render list, never longer
// than MaxLines(height). Workers that do not fit collapse into one summary
// line; running tests get only the rows the workers leave over.
//
// Versions are read before content, so a mutation racing with the pass is at
// worst drawn without being recorded, and the next pass redraws it.
func flatten(workers []*progress.Worker, showActive bool, height int) []line {
	var live []*progress.Worker
	for _, w := range workers {
		if w != nil {
			live = append(live, w)
		}
	}
	room := MaxLines(height)
	if len(live) == 0 || room == 0 {
		return nil
	}

	var hidden int
	if len(live) > room {
		hidden = len(live) - (room - 1)
		live = live[:room-1]
	}
	room -= len(live)
	if hidden > 0 {
		room--
	}
	budget := DetailBudget(height, len(live))

	var out []line
	for _, w := range live {
		out = append(out, workerLine(w))
		if !showActive || budget == 0 || room == 0 {
			continue
		}
		details, ok := w.ActiveDetails()
		if !ok {
			continue
		}
		for _, d := range details.Running(min(budget, room)) {
			out = append(out, detailLine(d))
			room--
		}
	}
	if hidden > 0 {
		out = append(out, hiddenWorkersLine(hidden))
	}
	return out
}

func workerLine(w *progress.Worker) line {
	version := w.Version()
	counts := w.Counts()
	name := w.Name()
	tags := workerTags(w.Info())
	duration := format.Parens(format.Duration(w.Elapsed()))

	return line{
		id:       w.ID(),
		version:  version,
		duration: duration,
		draw: func(t terminal.Terminal, budget int) {
			counters := counterWidth(counts)
			rest := budget - counters - 1 - format.Width(tags)
			if rest < len(format.Ellipsis) {
				t.Append(format.TruncateLeft(plainCounters(counts)+" "+name+tags, budget))
				return
			}
			appendCounters(t, counts)
			t.Append(" ")
			t.Append(format.TruncateLeft(name, rest))
			if tags != "" {
				t.SetColor(terminal.DarkGray)
				t.Append(tags)
				t.ResetColor()
			}
		},
	}
}

func detailLine(d *progress.Detail) line {
	var duration string
	if watch := d.Stopwatch(); watch != nil {
		duration = format.Parens(format.Duration(watch.Elapsed()))
	}
	text := d.Text()
	return line{
		id:       d.ID(),
		version:  d.Version(),
		duration: duration,
		draw: func(t terminal.Terminal, budget int) {
			const indent = "  "
			t.Append(indent)
			t.SetColor(terminal.DarkGray)
			t.Append(format.TruncateLeft(text, budget-len(indent)))
			t.ResetColor()
		},
	}
}

func hiddenWorkersLine(n int) line {
	text := fmt.Sprintf("... and %d more packages running", n)
	return line{
		volatile: true,
		draw: func(t terminal.Terminal, budget int) {
			t.SetColor(terminal.DarkGray)
			t.Append(format.TruncateLeft(text, budget))
			t.ResetColor()
		},
	}
}

// workerTags renders " (tf|arch)" with whichever parts are known.
func workerTags(info progress.WorkerInfo) string {
	var parts []string
	if info.TargetFramework != "" {
		parts = append(parts, info.TargetFramework)
	}
	if info.Architecture != "" {
		parts = append(parts, info.Architecture)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "|") + ")"
}

const (
	passedMark  = "✓"
	failedMark  = "x"
	skippedMark = "↓"
)

func appendCounters(t terminal.Terminal, c progress.Counts) {
	t.Append("[")
	t.SetColor(terminal.Green)
	t.Append(passedMark + strconv.Itoa(c.Passed))
	t.ResetColor()
	t.Append("/")
	t.SetColor(terminal.Red)
	t.Append(failedMark + strconv.Itoa(c.Failed))
	t.ResetColor()
	t.Append("/")
	t.SetColor(terminal.Yellow)
	t.Append(skippedMark + strconv.Itoa(c.Skipped))
	t.ResetColor()
	t.Append("]")
}

func plainCounters(c progress.Counts) string {
	return "[" + passedMark + strconv.Itoa(c.Passed) +
		"/" + failedMark + strconv.Itoa(c.Failed) +
		"/" + skippedMark + strconv.Itoa(c.Skipped) + "]"
}

func counterWidth(c progress.Counts) int {
	return format.Width(plainCounters(c))
}

// appendOnlyLine is the single-line worker summary for tiers without cursor
// control: "[+1/x0/?0] name (tf|arch) (3s) - LongestRunningTest".
func appendOnlyLine(t terminal.Terminal, w *progress.Worker, showActive bool) {
	c := w.Counts()
	t.Append("[")
	t.SetColor(terminal.Green)
	t.Append("+" + strconv.Itoa(c.Passed))
	t.ResetColor()
	t.Append("/")
	t.SetColor(terminal.Red)
	t.Append("x" + strconv.Itoa(c.Failed))
	t.ResetColor()
	t.Append("/")
	t.SetColor(terminal.Yellow)
	t.Append("?" + strconv.Itoa(c.Skipped))
	t.ResetColor()
	t.Append("] " + w.Name() + workerTags(w.Info()) + " " + format.Parens(format.Duration(w.Elapsed())))

	if showActive {
		if details, ok := w.ActiveDetails(); ok {
			if d, ok := details.Longest(); ok {
				t.Append(" - " + d.Text())
				if watch := d.Stopwatch(); watch != nil {
					t.Append(" " + format.Parens(format.Duration(watch.Elapsed())))
				}
			}
		}
	}
	t.AppendLine("")
}
