// Package render draws the live progress region: one line per worker plus
// its running tests, redrawn in place on capable terminals and appended as
// plain lines everywhere else.
package render

// RenderedLine remembers what was drawn on one row of the progress region.
type RenderedLine struct {
	ID      int64
	Version int64
	// DurationWidth is the display width of the duration printed last.
	DurationWidth int
}

// Frame is the renderer's model of what is currently on screen.
type Frame struct {
	Width  int
	Height int
	Lines  []RenderedLine
}

// sameSize reports whether the terminal kept its dimensions since f was drawn.
func (f *Frame) sameSize(width, height int) bool {
	return f.Width == width && f.Height == height
}

// regionHeight is the number of rows the frame occupies above the cursor:
// a blank separator, the lines, and the trailing blank.
func (f *Frame) regionHeight() int {
	return len(f.Lines) + 2
}
