package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/eventstore"
	"git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// HistoryCmd implements 'docweave history'.
type HistoryCmd struct {
	Limit int           `short:"n" help:"Number of runs to show" default:"20"`
	Since time.Duration `help:"Only runs started within this window" default:"720h"`
	RunID string        `name:"run" help:"Show the raw events of one run"`
	JSON  bool          `name:"json" help:"Print JSON instead of text"`
}

func (h *HistoryCmd) Run(glob *Global, root *CLI) error {
	cfg, err := config.Resolve(config.Overrides{}, root.Config)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return errors.ConfigError("run journal is disabled").
			WithContext("hint", "set history.path in the configuration file").
			Build()
	}
	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := glob.ctx()
	out := glob.out()

	if h.RunID != "" {
		events, err := store.GetByRunID(ctx, h.RunID)
		if err != nil {
			return err
		}
		for _, e := range events {
			if _, err := fmt.Fprintf(out, "%s %-15s %s\n", e.Time.Format(time.RFC3339), e.Type, e.Payload); err != nil {
				return err
			}
		}
		return nil
	}

	now := time.Now()
	events, err := store.GetRange(ctx, now.Add(-h.Since), now.Add(time.Minute))
	if err != nil {
		return err
	}
	runs := eventstore.Summaries(events, h.Limit)
	if h.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	for _, r := range runs {
		if _, err := fmt.Fprintln(out, formatRun(r)); err != nil {
			return err
		}
	}
	return nil
}

func formatRun(r *eventstore.RunSummary) string {
	line := fmt.Sprintf("%s  %-9s  %s  %s  template=%s model=%s",
		r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.RunID, r.Source, r.Template, r.Model)
	if r.DryRun {
		line += " dry-run"
	}
	if r.Duration > 0 {
		line += fmt.Sprintf(" took=%s", r.Duration.Round(time.Millisecond))
	}
	switch r.Status {
	case eventstore.StatusCompleted:
		if r.Destination != "" {
			line += " -> " + r.Destination
		}
	case eventstore.StatusFailed:
		line += fmt.Sprintf(" [%s/%s] %s", r.ErrorStage, r.ErrorKind, r.Error)
	}
	return line
}
