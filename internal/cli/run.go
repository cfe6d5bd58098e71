package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/AndreyAkinshin/livetest/internal/config"
	livetesterrors "github.com/AndreyAkinshin/livetest/internal/errors"
	"github.com/AndreyAkinshin/livetest/internal/reporter"
	"github.com/AndreyAkinshin/livetest/internal/terminal"
	"github.com/AndreyAkinshin/livetest/internal/testparser"
	"github.com/AndreyAkinshin/livetest/pkg/livetest"
)

// cmdRun reads go test -json events from the input and reports them live.
func (a *app) cmdRun(g *globalOptions, args []string) int {
	logger := a.newLogger(g)

	opts, err := a.resolveOptions(g, logger)
	if err != nil {
		a.out.ErrorPrefix("%v", err)
		return livetesterrors.GetExitCode(err)
	}

	in, name, err := a.openInput(args)
	if err != nil {
		a.out.ErrorPrefix("%v", err)
		if errors.Is(err, errInteractiveInput) {
			a.out.Hint("Pipe go test output into livetest: go test -json ./... | livetest")
		}
		return livetesterrors.GetExitCode(err)
	}
	defer in.Close()

	baseDir := opts.BaseDirectory
	if baseDir == "" {
		if wd, err := a.getwd(); err == nil {
			baseDir = wd
		}
	}

	probe := terminal.Probe{Mode: opts.Ansi, Getenv: a.getenv, Logger: logger}
	tier, restore := probe.Resolve(a.stdout)
	term := terminal.New(tier, a.stdout, baseDir, terminal.FileSize(a.stdout))

	rep := reporter.New(term, reporter.Options{
		ShowPassedTests:              opts.ShowPassedTests,
		ShowProgress:                 opts.ShowProgress,
		ShowActiveTests:              opts.ShowActiveTests,
		ShowAssembly:                 opts.ShowAssembly,
		ShowAssemblyStartAndComplete: opts.ShowAssemblyStartAndComplete,
		MinimumExpectedTests:         opts.MinimumExpectedTests,
		Restore:                      restore,
		Logger:                       logger,
	})
	defer rep.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopSignals := watchSignals(ctx, rep, cancel, logger)
	defer stopSignals()

	logger.Debug("reading test events", "input", name, "tier", tier.String(), "parallelism", opts.MaxParallelism)
	rep.RunStarted(opts.MaxParallelism, g.List)
	src := testparser.NewSource(rep, testparser.Options{
		Capacity:  opts.MaxParallelism,
		Discovery: g.List,
		Logger:    logger,
	})
	stats, err := src.Run(ctx, in)
	readFailed := err != nil && !errors.Is(err, context.Canceled)
	if readFailed {
		rep.WriteError(livetesterrors.Input("reading test events failed", err).Error())
	}
	if stats.Packages == 0 && stats.Malformed > 0 {
		rep.WriteWarning(fmt.Sprintf("No test events found in %d input lines. Was go test run with -json?", stats.Malformed))
	}
	logger.Debug("input done", "packages", stats.Packages, "tests", stats.Total, "malformed", stats.Malformed)

	summary := rep.RunCompleted()
	if readFailed {
		return livetest.ExitFailure
	}
	return summary.Result.ExitCode()
}

func (a *app) newLogger(g *globalOptions) *slog.Logger {
	w, level := a.stderr, slog.LevelWarn
	switch {
	case g.Quiet:
		w = io.Discard
	case g.Verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// resolveOptions merges defaults, the configuration file, the environment
// and the flags, in that order.
func (a *app) resolveOptions(g *globalOptions, logger *slog.Logger) (config.Options, error) {
	path, err := a.configPath(g)
	if err != nil {
		return config.Options{}, livetesterrors.Wrap(err, "locating configuration")
	}
	if path != "" {
		logger.Debug("using configuration file", "path", path)
	}

	opts, warnings, err := config.LoadOptions(path, a.getenv)
	for _, w := range warnings {
		a.out.Warning("%s", w)
	}
	if err != nil {
		return config.Options{}, configError(path, err)
	}
	if err := g.apply(&opts); err != nil {
		return config.Options{}, configError("", err)
	}
	if err := config.Validate(opts); err != nil {
		return config.Options{}, configError("", err)
	}
	return opts, nil
}

// configPath returns the configuration file to load, or "" when there is
// none.
func (a *app) configPath(g *globalOptions) (string, error) {
	if g.ConfigPath != "" {
		return g.ConfigPath, nil
	}
	if p := a.getenv(config.EnvConfig); p != "" {
		return p, nil
	}
	wd, err := a.getwd()
	if err != nil {
		return "", err
	}
	p, err := config.Find(wd)
	if errors.Is(err, config.ErrNotFound) {
		return "", nil
	}
	return p, err
}

func configError(path string, err error) error {
	if path == "" {
		return &livetesterrors.ReportError{Kind: livetesterrors.KindConfig, Message: "invalid options", Cause: err}
	}
	return &livetesterrors.ReportError{Kind: livetesterrors.KindConfig, Message: path, Cause: err}
}

var errInteractiveInput = livetesterrors.Environment("no input: standard input is a terminal")

// openInput opens the event file named in args, or standard input when there
// is none or it is "-".
func (a *app) openInput(args []string) (io.ReadCloser, string, error) {
	if len(args) > 1 {
		return nil, "", livetesterrors.Configf("expected at most one input file, got %d", len(args))
	}
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, "", livetesterrors.Input("cannot open input", err)
		}
		return f, args[0], nil
	}
	if fd := a.stdin.Fd(); isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return nil, "", errInteractiveInput
	}
	return io.NopCloser(a.stdin), "<stdin>", nil
}

// watchSignals turns the first interrupt into a graceful cancel: the notice
// is printed and reading goes on until go test, which got the same signal,
// closes the stream. A second interrupt stops reading at once.
func watchSignals(ctx context.Context, rep *reporter.Reporter, cancel context.CancelFunc, logger *slog.Logger) (stop func()) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		defer close(done)
		received := 0
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				received++
				logger.Debug("signal received", "signal", sig.String(), "count", received)
				if received == 1 {
					rep.StartCancelling()
					continue
				}
				cancel()
				return
			}
		}
	}()
	return func() {
		signal.Stop(sigCh)
		cancel()
		<-done
	}
}
