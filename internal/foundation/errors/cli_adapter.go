package errors

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// CLIErrorAdapter prints a failure for the user and picks the exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates an adapter writing to stderr.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr}
}

// WithOutput redirects user-facing messages.
func (a *CLIErrorAdapter) WithOutput(w io.Writer) *CLIErrorAdapter {
	a.out = w
	return a
}

// ExitCodeFor returns 0 for nil, 1 for unclassified errors and the category
// code otherwise.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	c, ok := AsClassifier(err)
	if !ok {
		return 1
	}
	return ExitCode(c.Category())
}

// FormatError renders err for the terminal. The message already names the
// stage, kind and detail; verbose mode adds the classification and context.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %v", err)

	c, ok := AsClassifier(err)
	if ok && a.verbose {
		fmt.Fprintf(&b, " (category=%s retry=%s)", c.Category(), c.RetryStrategy())
	}
	if ce, ok := AsClassified(err); ok {
		for _, k := range ce.ContextKeys() {
			v, _ := ce.Context(k)
			switch {
			case k == "hint":
				fmt.Fprintf(&b, "\nHint: %v", v)
			case a.verbose:
				fmt.Fprintf(&b, "\n  %s: %v", k, v)
			}
		}
	}
	return b.String()
}

// HandleError reports err and returns the exit code.
func (a *CLIErrorAdapter) HandleError(err error) int {
	if err == nil {
		return 0
	}
	if a.verbose {
		a.logger.Error("Command failed",
			slog.String("category", string(GetCategory(err))),
			slog.String("retry", string(GetRetryStrategy(err))),
			slog.String("error", err.Error()))
	}
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}
