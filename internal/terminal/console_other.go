//go:build !windows

package terminal

import "os"

// enableVirtualTerminal has nothing to switch on outside Windows; ANSI
// support there is declared through TERM.
func enableVirtualTerminal(*os.File) (func(), error) {
	return nil, errNoConsoleMode
}
