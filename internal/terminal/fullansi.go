package terminal

import "io"

// FullAnsiTerminal supports colour, cursor positioning and erasing, which the
// renderer uses to redraw the progress region in place.
type FullAnsiTerminal struct {
	out     sink
	baseDir string
	size    SizeFunc
}

// NewFullAnsi creates an interactive terminal writing to w.
func NewFullAnsi(w io.Writer, baseDir string, size SizeFunc) *FullAnsiTerminal {
	return &FullAnsiTerminal{out: sink{w: w}, baseDir: baseDir, size: size}
}

func (t *FullAnsiTerminal) Tier() Tier { return FullAnsi }

func (t *FullAnsiTerminal) Width() int {
	w, _ := querySize(t.size)
	return w
}

func (t *FullAnsiTerminal) Height() int {
	_, h := querySize(t.size)
	return h
}

func (t *FullAnsiTerminal) Append(text string) { t.out.write(text) }

func (t *FullAnsiTerminal) AppendLine(text string) { t.out.write(text + "\n") }

func (t *FullAnsiTerminal) AppendLink(path string, line int) {
	if path == "" {
		return
	}
	text := displayPath(path, t.baseDir, line)
	target := linkTarget(path)
	if target == "" {
		t.out.write(text)
		return
	}
	t.SetColor(DarkGray)
	t.out.write(linkPrefix + target + st + text + linkSuffix)
	t.ResetColor()
}

func (t *FullAnsiTerminal) SetColor(c Color) { t.out.write(setColor(c)) }
func (t *FullAnsiTerminal) ResetColor()      { t.out.write(resetColor) }

func (t *FullAnsiTerminal) SetCursorHorizontal(column int) {
	t.out.write(cursorColumn(max(column, 1)))
}

func (t *FullAnsiTerminal) MoveCursorUp(lines int) {
	if lines > 0 {
		t.out.write(cursorPrevLine(lines))
	}
}

func (t *FullAnsiTerminal) EraseLine()  { t.out.write(eraseInLine) }
func (t *FullAnsiTerminal) EraseBelow() { t.out.write(eraseInDisplay) }

func (t *FullAnsiTerminal) EraseRegion(lines int) {
	t.MoveCursorUp(lines)
	t.out.write(eraseInDisplay)
}

func (t *FullAnsiTerminal) HideCursor()         { t.out.write(hideCursor) }
func (t *FullAnsiTerminal) ShowCursor()         { t.out.write(showCursor) }
func (t *FullAnsiTerminal) StartBusyIndicator() { t.out.write(busyStart) }
func (t *FullAnsiTerminal) StopBusyIndicator()  { t.out.write(busyStop) }

func (t *FullAnsiTerminal) StartUpdate() { t.out.start() }
func (t *FullAnsiTerminal) StopUpdate()  { t.out.stop() }
