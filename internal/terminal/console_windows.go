//go:build windows

package terminal

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// enableVirtualTerminal turns on ANSI processing for the console behind f and
// returns a function restoring the original mode.
func enableVirtualTerminal(f *os.File) (func(), error) {
	h := windows.Handle(f.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return nil, errNoConsoleMode
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return func() {}, nil
	}
	if err := windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
		return nil, fmt.Errorf("set console mode: %w", err)
	}
	return func() {
		_ = windows.SetConsoleMode(h, mode)
	}, nil
}
