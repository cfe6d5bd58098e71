package terminal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Mode is the user's ANSI preference.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeOn     Mode = "on"
	ModeOff    Mode = "off"
	ModeSimple Mode = "simple"
)

// ParseMode converts a flag or config value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeOn, ModeOff, ModeSimple:
		return m, nil
	case "true", "force":
		return ModeOn, nil
	case "false", "never":
		return ModeOff, nil
	default:
		return "", fmt.Errorf("invalid ansi mode %q (want auto, on, off or simple)", s)
	}
}

// Probe decides which tier to use for an output file.
type Probe struct {
	Mode   Mode
	Getenv func(string) string
	Logger *slog.Logger

	// Overridable for tests.
	isTerminal func(fd uintptr) bool
	enableVT   func(f *os.File) (func(), error)
}

// Resolve returns the tier for out and a function undoing any console mode
// change the probe made. restore is never nil and is safe to call more than
// once.
func (p *Probe) Resolve(out *os.File) (tier Tier, restore func()) {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	isTerminal := p.isTerminal
	if isTerminal == nil {
		isTerminal = func(fd uintptr) bool {
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		}
	}
	enableVT := p.enableVT
	if enableVT == nil {
		enableVT = enableVirtualTerminal
	}

	restore = func() {}
	switch p.Mode {
	case ModeOff:
		return NoAnsi, restore
	case ModeSimple:
		return SimpleAnsi, restore
	case ModeOn:
		if r, err := enableVT(out); err == nil {
			restore = once(r)
		} else {
			logger.Debug("virtual terminal mode unavailable, forcing ansi anyway", "error", err)
		}
		return FullAnsi, restore
	}

	if getenv("NO_COLOR") != "" {
		logger.Debug("NO_COLOR set, using plain output")
		return NoAnsi, restore
	}

	if !isTerminal(out.Fd()) {
		if getenv("CI") != "" && termSupportsAnsi(getenv("TERM")) {
			return SimpleAnsi, restore
		}
		return NoAnsi, restore
	}

	r, err := enableVT(out)
	if err == nil {
		return FullAnsi, once(r)
	}
	if err != errNoConsoleMode {
		logger.Debug("enabling virtual terminal processing failed", "error", err)
	}

	if termSupportsAnsi(getenv("TERM")) {
		return FullAnsi, restore
	}
	return NoAnsi, restore
}

// New creates the terminal for tier writing to w.
func New(tier Tier, w io.Writer, baseDir string, size SizeFunc) Terminal {
	switch tier {
	case FullAnsi:
		return NewFullAnsi(w, baseDir, size)
	case SimpleAnsi:
		return NewSimpleAnsi(w, baseDir, size)
	default:
		return NewNoAnsi(w, baseDir, size)
	}
}

var ansiTermTypes = []string{
	"xterm", "ansi", "color", "screen", "tmux", "vt100", "vt220",
	"rxvt", "linux", "cygwin", "konsole", "alacritty", "kitty", "wezterm",
}

func termSupportsAnsi(term string) bool {
	term = strings.ToLower(term)
	if term == "" || term == "dumb" {
		return false
	}
	for _, t := range ansiTermTypes {
		if strings.Contains(term, t) {
			return true
		}
	}
	return false
}

func once(f func()) func() {
	done := false
	return func() {
		if done || f == nil {
			return
		}
		done = true
		f()
	}
}
