package terminal

import (
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// NoAnsiTerminal writes plain text. Cursor movement and erasing are no-ops.
// On a Windows console colours are still shown: SGR codes go through
// go-colorable, which turns them into console attribute calls. Everywhere
// else colours are dropped.
type NoAnsiTerminal struct {
	out         sink
	nativeColor bool
	baseDir     string
	size        SizeFunc
}

// NewNoAnsi creates a plain-text terminal writing to w.
func NewNoAnsi(w io.Writer, baseDir string, size SizeFunc) *NoAnsiTerminal {
	t := &NoAnsiTerminal{out: sink{w: w}, baseDir: baseDir, size: size}
	if f, ok := w.(*os.File); ok && runtime.GOOS == "windows" && isatty.IsTerminal(f.Fd()) {
		t.out.w = colorable.NewColorable(f)
		t.nativeColor = true
	}
	return t
}

func (t *NoAnsiTerminal) Tier() Tier { return NoAnsi }

func (t *NoAnsiTerminal) Width() int {
	w, _ := querySize(t.size)
	return w
}

func (t *NoAnsiTerminal) Height() int {
	_, h := querySize(t.size)
	return h
}

func (t *NoAnsiTerminal) Append(text string) { t.out.write(text) }

func (t *NoAnsiTerminal) AppendLine(text string) { t.out.write(text + "\n") }

func (t *NoAnsiTerminal) AppendLink(path string, line int) {
	if path == "" {
		return
	}
	t.out.write(displayPath(path, t.baseDir, line))
}

func (t *NoAnsiTerminal) SetColor(c Color) {
	if t.nativeColor {
		t.out.write(setColor(c))
	}
}

func (t *NoAnsiTerminal) ResetColor() {
	if t.nativeColor {
		t.out.write(resetColor)
	}
}

func (t *NoAnsiTerminal) SetCursorHorizontal(int) {}
func (t *NoAnsiTerminal) MoveCursorUp(int)        {}
func (t *NoAnsiTerminal) EraseLine()              {}
func (t *NoAnsiTerminal) EraseBelow()             {}
func (t *NoAnsiTerminal) EraseRegion(int)         {}
func (t *NoAnsiTerminal) HideCursor()             {}
func (t *NoAnsiTerminal) ShowCursor()             {}
func (t *NoAnsiTerminal) StartBusyIndicator()     {}
func (t *NoAnsiTerminal) StopBusyIndicator()      {}

func (t *NoAnsiTerminal) StartUpdate() { t.out.start() }
func (t *NoAnsiTerminal) StopUpdate()  { t.out.stop() }
