package terminal

import "io"

// SimpleAnsiTerminal emits 4-bit SGR colours but never moves the cursor, so
// the output stays append-only and safe to capture in CI logs.
type SimpleAnsiTerminal struct {
	out     sink
	baseDir string
	size    SizeFunc
}

// NewSimpleAnsi creates a colour-only terminal writing to w.
func NewSimpleAnsi(w io.Writer, baseDir string, size SizeFunc) *SimpleAnsiTerminal {
	return &SimpleAnsiTerminal{out: sink{w: w}, baseDir: baseDir, size: size}
}

func (t *SimpleAnsiTerminal) Tier() Tier { return SimpleAnsi }

func (t *SimpleAnsiTerminal) Width() int {
	w, _ := querySize(t.size)
	return w
}

func (t *SimpleAnsiTerminal) Height() int {
	_, h := querySize(t.size)
	return h
}

func (t *SimpleAnsiTerminal) Append(text string) { t.out.write(text) }

func (t *SimpleAnsiTerminal) AppendLine(text string) { t.out.write(text + "\n") }

func (t *SimpleAnsiTerminal) AppendLink(path string, line int) {
	if path == "" {
		return
	}
	t.out.write(displayPath(path, t.baseDir, line))
}

func (t *SimpleAnsiTerminal) SetColor(c Color) { t.out.write(setColor(c)) }
func (t *SimpleAnsiTerminal) ResetColor()      { t.out.write(resetColor) }

func (t *SimpleAnsiTerminal) SetCursorHorizontal(int) {}
func (t *SimpleAnsiTerminal) MoveCursorUp(int)        {}
func (t *SimpleAnsiTerminal) EraseLine()              {}
func (t *SimpleAnsiTerminal) EraseBelow()             {}
func (t *SimpleAnsiTerminal) EraseRegion(int)         {}
func (t *SimpleAnsiTerminal) HideCursor()             {}
func (t *SimpleAnsiTerminal) ShowCursor()             {}
func (t *SimpleAnsiTerminal) StartBusyIndicator()     {}
func (t *SimpleAnsiTerminal) StopBusyIndicator()      {}

func (t *SimpleAnsiTerminal) StartUpdate() { t.out.start() }
func (t *SimpleAnsiTerminal) StopUpdate()  { t.out.stop() }
