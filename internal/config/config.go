// Package config resolves livetest options from built-in defaults, a
// livetest.yaml file, and the environment. Command-line flags are applied on
// top by the CLI.
package config

import (
	"github.com/AndreyAkinshin/livetest/internal/terminal"
)

// File is the on-disk livetest.yaml. Pointer fields distinguish "unset"
// from an explicit zero value.
type File struct {
	Schema string        `yaml:"$schema,omitempty"`
	Output *OutputConfig `yaml:"output,omitempty"`
	Run    *RunConfig    `yaml:"run,omitempty"`
}

// OutputConfig controls what the console shows.
type OutputConfig struct {
	ShowPassedTests              *bool  `yaml:"show_passed_tests,omitempty"`
	ShowProgress                 *bool  `yaml:"show_progress,omitempty"`
	ShowActiveTests              *bool  `yaml:"show_active_tests,omitempty"`
	ShowAssembly                 *bool  `yaml:"show_assembly,omitempty"`
	ShowAssemblyStartAndComplete *bool  `yaml:"show_assembly_start_and_complete,omitempty"`
	Ansi                         string `yaml:"ansi,omitempty"`
}

// RunConfig describes the run being reported.
type RunConfig struct {
	MinimumExpectedTests *int   `yaml:"minimum_expected_tests,omitempty"`
	MaxParallelism       *int   `yaml:"max_parallelism,omitempty"`
	BaseDirectory        string `yaml:"base_directory,omitempty"`
}

// Options are the fully resolved settings.
type Options struct {
	ShowPassedTests              bool
	ShowProgress                 bool
	ShowActiveTests              bool
	ShowAssembly                 bool
	ShowAssemblyStartAndComplete bool
	Ansi                         terminal.Mode
	MinimumExpectedTests         int
	MaxParallelism               int
	BaseDirectory                string
}

// Apply overlays the values set in f onto opts.
func (f *File) Apply(opts *Options) error {
	if f == nil {
		return nil
	}
	if o := f.Output; o != nil {
		setBool(&opts.ShowPassedTests, o.ShowPassedTests)
		setBool(&opts.ShowProgress, o.ShowProgress)
		setBool(&opts.ShowActiveTests, o.ShowActiveTests)
		setBool(&opts.ShowAssembly, o.ShowAssembly)
		setBool(&opts.ShowAssemblyStartAndComplete, o.ShowAssemblyStartAndComplete)
		if o.Ansi != "" {
			mode, err := terminal.ParseMode(o.Ansi)
			if err != nil {
				return &ValidationError{Field: "output.ansi", Message: err.Error()}
			}
			opts.Ansi = mode
		}
	}
	if r := f.Run; r != nil {
		if r.MinimumExpectedTests != nil {
			opts.MinimumExpectedTests = *r.MinimumExpectedTests
		}
		if r.MaxParallelism != nil {
			opts.MaxParallelism = *r.MaxParallelism
		}
		if r.BaseDirectory != "" {
			opts.BaseDirectory = r.BaseDirectory
		}
	}
	return nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
