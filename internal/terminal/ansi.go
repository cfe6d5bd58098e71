package terminal

import "strconv"

// ANSI escape sequences.
const (
	csi = "\x1b["
	osc = "\x1b]"
	st  = "\x1b\\"

	resetColor     = csi + "m"
	eraseInLine    = csi + "K"
	eraseInDisplay = csi + "J"
	hideCursor     = csi + "?25l"
	showCursor     = csi + "?25h"

	linkPrefix = osc + "8;;"
	linkSuffix = osc + "8;;" + st

	// ConEmu/Windows Terminal taskbar progress: state 3 is indeterminate.
	busyStart = osc + "9;4;3;" + st
	busyStop  = osc + "9;4;0;" + st
)

func setColor(c Color) string {
	return csi + strconv.Itoa(int(c)) + "m"
}

func cursorColumn(column int) string {
	return csi + strconv.Itoa(column) + "G"
}

func cursorPrevLine(lines int) string {
	return csi + strconv.Itoa(lines) + "F"
}
