package cli

import (
	"strconv"

	"github.com/AndreyAkinshin/livetest/internal/config"
	livetesterrors "github.com/AndreyAkinshin/livetest/internal/errors"
	"github.com/AndreyAkinshin/livetest/pkg/livetest"
	schemafs "github.com/AndreyAkinshin/livetest/schema"
)

// cmdConfig inspects the settings a run would use.
func (a *app) cmdConfig(args []string, g *globalOptions) int {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "show":
		return a.cmdConfigShow(g)
	case "validate":
		return a.cmdConfigValidate(args[1:], g)
	case "schema":
		data, err := schemafs.FS.ReadFile("config.schema.json")
		if err != nil {
			panic(livetesterrors.Unreachablef("embedded schema: %v", err))
		}
		a.out.Print("%s", data)
		return livetest.ExitSuccess
	default:
		a.out.ErrorPrefix("config: unknown subcommand %q", sub)
		a.printConfigUsage()
		return livetest.ExitConfigError
	}
}

func (a *app) cmdConfigShow(g *globalOptions) int {
	path, err := a.configPath(g)
	if err != nil {
		a.out.ErrorPrefix("%v", err)
		return livetest.ExitFailure
	}
	opts, err := a.resolveOptions(g, a.newLogger(g))
	if err != nil {
		a.out.ErrorPrefix("%v", err)
		return livetesterrors.GetExitCode(err)
	}

	if path == "" {
		a.out.Info("No %s found; using defaults.", config.FileName)
	} else {
		a.out.Info("Configuration: %s", path)
	}
	a.out.Info("")
	a.out.Table([]string{"Setting", "Value"}, optionRows(opts))
	return livetest.ExitSuccess
}

// cmdConfigValidate checks a configuration file. Without an argument it
// checks the file a run would use.
func (a *app) cmdConfigValidate(args []string, g *globalOptions) int {
	var path string
	switch len(args) {
	case 0:
		p, err := a.configPath(g)
		if err != nil {
			a.out.ErrorPrefix("%v", err)
			return livetest.ExitFailure
		}
		if p == "" {
			a.out.ErrorPrefix("config: no %s found", config.FileName)
			return livetest.ExitConfigError
		}
		path = p
	case 1:
		path = args[0]
	default:
		a.out.ErrorPrefix("config validate: expected at most one file")
		return livetest.ExitConfigError
	}

	f, warnings, err := config.Load(path)
	for _, w := range warnings {
		a.out.Warning("%s", w)
	}
	if err != nil {
		a.out.ErrorPrefix("%v", configError(path, err))
		return livetest.ExitConfigError
	}
	opts := config.Defaults()
	if err := f.Apply(&opts); err != nil {
		a.out.ErrorPrefix("%v", configError(path, err))
		return livetest.ExitConfigError
	}

	a.out.Success("%s is valid.", path)
	if len(warnings) > 0 {
		a.out.Info("Warnings: %d", len(warnings))
	}
	return livetest.ExitSuccess
}

func optionRows(opts config.Options) [][]string {
	baseDir := opts.BaseDirectory
	if baseDir == "" {
		baseDir = "(working directory)"
	}
	return [][]string{
		{"show_passed_tests", strconv.FormatBool(opts.ShowPassedTests)},
		{"show_progress", strconv.FormatBool(opts.ShowProgress)},
		{"show_active_tests", strconv.FormatBool(opts.ShowActiveTests)},
		{"show_assembly", strconv.FormatBool(opts.ShowAssembly)},
		{"show_assembly_start_and_complete", strconv.FormatBool(opts.ShowAssemblyStartAndComplete)},
		{"ansi", string(opts.Ansi)},
		{"minimum_expected_tests", strconv.Itoa(opts.MinimumExpectedTests)},
		{"max_parallelism", strconv.Itoa(opts.MaxParallelism)},
		{"base_directory", baseDir},
	}
}

func (a *app) printConfigUsage() {
	w := a.out

	w.HelpTitle("livetest config - inspect settings")

	w.HelpSection("Usage:")
	w.HelpUsage("livetest config [show] [flags]")
	w.HelpUsage("livetest config validate [<file>]")
	w.HelpUsage("livetest config schema")

	w.HelpSection("Subcommands:")
	w.HelpCommand("show", "Print the settings a run would use (default)", helpCommandWidth)
	w.HelpCommand("validate", "Check a livetest.yaml against the schema", helpCommandWidth)
	w.HelpCommand("schema", "Print the JSON schema of livetest.yaml", helpCommandWidth)

	w.HelpSection("Configuration file:")
	w.Println("  The first of these is used:")
	w.List([]string{
		"--config <file>",
		config.EnvConfig + " environment variable",
		config.FileName + " in the working directory or the nearest parent",
	})

	w.HelpSection("Examples:")
	w.HelpExample("livetest config --ansi off", "Show settings with a flag applied")
	w.HelpExample("livetest config validate ci/livetest.yaml", "Validate a specific file")
	w.Println("")
}
