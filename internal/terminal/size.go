package terminal

import (
	"os"

	"golang.org/x/term"
)

// SizeFunc reports the device size in cells. ok is false when the device
// cannot tell, e.g. when output is redirected.
type SizeFunc func() (width, height int, ok bool)

// FileSize queries the console behind f.
func FileSize(f *os.File) SizeFunc {
	return func() (int, int, bool) {
		w, h, err := term.GetSize(int(f.Fd()))
		if err != nil || w <= 0 || h <= 0 {
			return 0, 0, false
		}
		return w, h, true
	}
}

// FixedSize always reports the same size. Used for tests and for devices
// without a size, where DefaultWidth/DefaultHeight apply.
func FixedSize(width, height int) SizeFunc {
	return func() (int, int, bool) {
		return width, height, true
	}
}

func querySize(size SizeFunc) (int, int) {
	if size == nil {
		return DefaultWidth, DefaultHeight
	}
	w, h, ok := size()
	if !ok {
		return DefaultWidth, DefaultHeight
	}
	return min(w, MaxColumn), h
}
