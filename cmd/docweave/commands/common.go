// Package commands implements the docweave command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docweave/internal/config"
)

// Global is shared state bound into every command's Run.
type Global struct {
	Context context.Context
	Out     io.Writer
}

func (g *Global) ctx() context.Context {
	if g == nil || g.Context == nil {
		return context.Background()
	}
	return g.Context
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: $DOCWEAVE_CONFIG or ./docweave.yaml)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate  GenerateCmd  `cmd:"" default:"withargs" help:"Generate documentation for a file, directory or git URL (default command)"`
	Init      InitCmd      `cmd:"" help:"Write an example configuration file"`
	Templates TemplatesCmd `cmd:"" help:"List available templates and their sections"`
	History   HistoryCmd   `cmd:"" help:"Show recent runs from the run journal"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := logLevel(os.Getenv(config.EnvLogLevel), c.Verbose)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// logLevel maps DOCWEAVE_LOG_LEVEL onto slog; --verbose wins.
func logLevel(env string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch config.NormalizeLogLevel(env) {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
