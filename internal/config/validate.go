package config

import (
	"fmt"
	"path/filepath"

	"github.com/AndreyAkinshin/livetest/internal/terminal"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks resolved options. The schema already constrains the file;
// this covers values that arrive from flags and the environment.
func Validate(opts Options) error {
	switch opts.Ansi {
	case terminal.ModeAuto, terminal.ModeOn, terminal.ModeOff, terminal.ModeSimple:
	default:
		return &ValidationError{Field: "ansi", Message: fmt.Sprintf("unknown mode %q", opts.Ansi)}
	}
	if opts.MinimumExpectedTests < 0 {
		return &ValidationError{Field: "minimum_expected_tests", Message: "must not be negative"}
	}
	if opts.MaxParallelism < 1 {
		return &ValidationError{Field: "max_parallelism", Message: "must be at least 1"}
	}
	if opts.BaseDirectory != "" && !filepath.IsAbs(opts.BaseDirectory) {
		return &ValidationError{Field: "base_directory", Message: "must be an absolute path"}
	}
	return nil
}
