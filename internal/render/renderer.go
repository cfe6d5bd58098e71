package render

import (
	"github.com/AndreyAkinshin/livetest/internal/format"
	"github.com/AndreyAkinshin/livetest/internal/progress"
	"github.com/AndreyAkinshin/livetest/internal/terminal"
)

// Renderer converges the progress region on screen to the current worker
// state. It is not safe for concurrent use; the refresher serialises calls
// and brackets each one in a terminal update.
type Renderer struct {
	showActive bool
	prev       *Frame
}

// New creates a renderer. showActiveTests adds running-test lines below each
// worker.
func New(showActiveTests bool) *Renderer {
	return &Renderer{showActive: showActiveTests}
}

// Frame returns what the last pass left on screen, if anything.
func (r *Renderer) Frame() (Frame, bool) {
	if r.prev == nil {
		return Frame{}, false
	}
	f := *r.prev
	f.Lines = append([]RenderedLine(nil), r.prev.Lines...)
	return f, true
}

// Render draws workers. Nil entries are empty slots and are skipped.
//
// Terminals without cursor control get every worker appended as one plain
// line; nothing is remembered because nothing can be redrawn.
func (r *Renderer) Render(t terminal.Terminal, workers []*progress.Worker) {
	if !t.Tier().CursorControl() {
		r.renderAppendOnly(t, workers)
		return
	}

	width, height := t.Width(), t.Height()
	if r.prev != nil && !r.prev.sameSize(width, height) {
		// Reflow moved every row; positions in the old frame mean nothing.
		t.EraseRegion(r.prev.regionHeight())
		r.prev = nil
	}

	lines := flatten(workers, r.showActive, height)
	if len(lines) == 0 {
		r.Erase(t)
		return
	}

	var prev []RenderedLine
	if r.prev != nil {
		prev = r.prev.Lines
		t.MoveCursorUp(r.prev.regionHeight())
	}
	t.AppendLine("")

	next := &Frame{Width: width, Height: height, Lines: make([]RenderedLine, 0, len(lines))}
	for i, l := range lines {
		durationWidth := format.Width(l.duration)
		column := width - durationWidth
		if column < 2 {
			// No room left of the duration; drop it rather than let it
			// reach the last column.
			durationWidth, column = 0, width
		}

		switch {
		case i < len(prev) && !l.volatile && prev[i].ID == l.id && prev[i].Version == l.version && prev[i].DurationWidth == durationWidth:
			if durationWidth > 0 {
				t.SetCursorHorizontal(column)
				t.Append(l.duration)
			}
		case i < len(prev):
			t.EraseLine()
			drawLine(t, l, column, durationWidth)
		default:
			drawLine(t, l, column, durationWidth)
		}
		t.AppendLine("")

		next.Lines = append(next.Lines, RenderedLine{ID: l.id, Version: l.version, DurationWidth: durationWidth})
	}

	if len(prev) > len(lines) {
		t.EraseBelow()
	}
	t.AppendLine("")
	r.prev = next
}

// Erase removes the progress region and forgets it. The cursor ends where
// the region started, ready for ordinary output.
func (r *Renderer) Erase(t terminal.Terminal) {
	if r.prev == nil {
		return
	}
	if t.Tier().CursorControl() {
		t.EraseRegion(r.prev.regionHeight())
	}
	r.prev = nil
}

func drawLine(t terminal.Terminal, l line, column, durationWidth int) {
	// One column between text and duration, and the duration stops short of
	// the last column so the terminal never wraps.
	budget := column - 2
	if durationWidth == 0 {
		budget = column - 1
	}
	l.draw(t, max(budget, 0))
	if durationWidth > 0 {
		t.SetCursorHorizontal(column)
		t.Append(l.duration)
	}
}

func (r *Renderer) renderAppendOnly(t terminal.Terminal, workers []*progress.Worker) {
	wrote := false
	for _, w := range workers {
		if w == nil {
			continue
		}
		appendOnlyLine(t, w, r.showActive)
		wrote = true
	}
	if wrote {
		t.AppendLine("")
	}
}
