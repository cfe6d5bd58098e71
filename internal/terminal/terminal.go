// Package terminal implements the write primitives the progress renderer
// targets, in three capability tiers: plain text, colour-only ANSI for
// captured CI logs, and full ANSI with cursor control for interactive use.
package terminal

// MaxColumn caps the column budget regardless of how wide the terminal is.
const MaxColumn = 250

// Default size used when the output device cannot report one.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Tier is the feature level of the output device.
type Tier int

const (
	NoAnsi Tier = iota
	SimpleAnsi
	FullAnsi
)

func (t Tier) String() string {
	switch t {
	case NoAnsi:
		return "no-ansi"
	case SimpleAnsi:
		return "simple-ansi"
	case FullAnsi:
		return "full-ansi"
	default:
		return "unknown"
	}
}

// CursorControl reports whether the tier can move the cursor and erase,
// which is what in-place progress redraws need.
func (t Tier) CursorControl() bool {
	return t == FullAnsi
}

// Color is a foreground colour from the 4-bit palette. The value is the SGR
// parameter that selects it.
type Color int

const (
	Black       Color = 30
	DarkRed     Color = 31
	DarkGreen   Color = 32
	DarkYellow  Color = 33
	DarkBlue    Color = 34
	DarkMagenta Color = 35
	DarkCyan    Color = 36
	Gray        Color = 37
	Default     Color = 39
	DarkGray    Color = 90
	Red         Color = 91
	Green       Color = 92
	Yellow      Color = 93
	Blue        Color = 94
	Magenta     Color = 95
	Cyan        Color = 96
	White       Color = 97
)

// Terminal is the set of primitives every tier implements. Tiers that cannot
// perform an operation treat it as a no-op, so callers never branch on the
// tier to stay correct, only to stay cheap.
//
// A Terminal is not safe for concurrent use; the owner serialises access and
// brackets each logical update with StartUpdate/StopUpdate so the device
// receives it as a single write.
type Terminal interface {
	Tier() Tier
	// Width and Height report the current usable size in cells.
	Width() int
	Height() int

	Append(text string)
	AppendLine(text string)
	// AppendLink writes a file path, as a hyperlink when the tier allows it.
	// A line <= 0 is omitted.
	AppendLink(path string, line int)

	SetColor(c Color)
	ResetColor()

	// SetCursorHorizontal moves the cursor to the 1-based column.
	SetCursorHorizontal(column int)
	// MoveCursorUp moves the cursor up lines rows, to the start of the row.
	MoveCursorUp(lines int)
	// EraseLine clears from the cursor to the end of the row.
	EraseLine()
	// EraseBelow clears from the cursor to the end of the screen.
	EraseBelow()
	// EraseRegion removes the lines rows directly above the cursor and
	// everything below them, leaving the cursor where the region started.
	EraseRegion(lines int)

	HideCursor()
	ShowCursor()
	StartBusyIndicator()
	StopBusyIndicator()

	StartUpdate()
	StopUpdate()
}
