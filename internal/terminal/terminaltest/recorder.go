// Package terminaltest provides a Terminal that records primitive calls
// instead of writing escape sequences.
package terminaltest

import (
	"strconv"
	"strings"
	"sync"

	"github.com/AndreyAkinshin/livetest/internal/terminal"
)

// Op names, one per Terminal method that writes.
const (
	OpAppend              = "Append"
	OpAppendLine          = "AppendLine"
	OpAppendLink          = "AppendLink"
	OpSetColor            = "SetColor"
	OpResetColor          = "ResetColor"
	OpSetCursorHorizontal = "SetCursorHorizontal"
	OpMoveCursorUp        = "MoveCursorUp"
	OpEraseLine           = "EraseLine"
	OpEraseBelow          = "EraseBelow"
	OpEraseRegion         = "EraseRegion"
	OpHideCursor          = "HideCursor"
	OpShowCursor          = "ShowCursor"
	OpStartBusy           = "StartBusyIndicator"
	OpStopBusy            = "StopBusyIndicator"
	OpStartUpdate         = "StartUpdate"
	OpStopUpdate          = "StopUpdate"
)

// Op is one recorded call.
type Op struct {
	Name string
	Arg  int
	Text string
}

func (o Op) String() string {
	switch {
	case o.Text != "":
		return o.Name + "(" + strconv.Quote(o.Text) + ")"
	case o.Arg != 0:
		return o.Name + "(" + strconv.Itoa(o.Arg) + ")"
	default:
		return o.Name
	}
}

// Recorder implements terminal.Terminal. It is safe for concurrent use so
// tests can inspect it while a refresher is running.
type Recorder struct {
	mu      sync.Mutex
	tier    terminal.Tier
	width   int
	height  int
	ops     []Op
	text    strings.Builder
	open    int
	maxOpen int
}

var _ terminal.Terminal = (*Recorder)(nil)

// New creates a recorder reporting tier and the given size.
func New(tier terminal.Tier, width, height int) *Recorder {
	return &Recorder{tier: tier, width: width, height: height}
}

// SetSize changes what Width and Height report.
func (r *Recorder) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Text returns everything appended as text, without colours or cursor moves.
func (r *Recorder) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text.String()
}

// Lines returns Text split into lines, without the final empty element.
func (r *Recorder) Lines() []string {
	text := strings.TrimSuffix(r.Text(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// Reset forgets all recorded calls and text.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
	r.text.Reset()
}

// Count returns how many calls named name were recorded.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, op := range r.ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// CursorOps counts calls that move the cursor or erase.
func (r *Recorder) CursorOps() int {
	return r.Count(OpSetCursorHorizontal) + r.Count(OpMoveCursorUp) +
		r.Count(OpEraseLine) + r.Count(OpEraseBelow) + r.Count(OpEraseRegion)
}

// MaxNesting returns the deepest StartUpdate nesting seen. Anything above 1
// means two updates interleaved.
func (r *Recorder) MaxNesting() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxOpen
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	switch op.Name {
	case OpAppend, OpAppendLink:
		r.text.WriteString(op.Text)
	case OpAppendLine:
		r.text.WriteString(op.Text + "\n")
	case OpStartUpdate:
		r.open++
		r.maxOpen = max(r.maxOpen, r.open)
	case OpStopUpdate:
		r.open--
	}
}

func (r *Recorder) Tier() terminal.Tier { return r.tier }

func (r *Recorder) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

func (r *Recorder) Height() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.height
}

func (r *Recorder) Append(text string)     { r.record(Op{Name: OpAppend, Text: text}) }
func (r *Recorder) AppendLine(text string) { r.record(Op{Name: OpAppendLine, Text: text}) }

func (r *Recorder) AppendLink(path string, line int) {
	if line > 0 {
		path += ":" + strconv.Itoa(line)
	}
	r.record(Op{Name: OpAppendLink, Text: path})
}

func (r *Recorder) SetColor(c terminal.Color) { r.record(Op{Name: OpSetColor, Arg: int(c)}) }
func (r *Recorder) ResetColor()               { r.record(Op{Name: OpResetColor}) }

func (r *Recorder) SetCursorHorizontal(column int) {
	r.record(Op{Name: OpSetCursorHorizontal, Arg: column})
}
func (r *Recorder) MoveCursorUp(lines int) { r.record(Op{Name: OpMoveCursorUp, Arg: lines}) }
func (r *Recorder) EraseLine()             { r.record(Op{Name: OpEraseLine}) }
func (r *Recorder) EraseBelow()            { r.record(Op{Name: OpEraseBelow}) }
func (r *Recorder) EraseRegion(lines int)  { r.record(Op{Name: OpEraseRegion, Arg: lines}) }
func (r *Recorder) HideCursor()            { r.record(Op{Name: OpHideCursor}) }
func (r *Recorder) ShowCursor()            { r.record(Op{Name: OpShowCursor}) }
func (r *Recorder) StartBusyIndicator()    { r.record(Op{Name: OpStartBusy}) }
func (r *Recorder) StopBusyIndicator()     { r.record(Op{Name: OpStopBusy}) }
func (r *Recorder) StartUpdate()           { r.record(Op{Name: OpStartUpdate}) }
func (r *Recorder) StopUpdate()            { r.record(Op{Name: OpStopUpdate}) }
