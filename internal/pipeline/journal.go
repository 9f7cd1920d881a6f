package pipeline

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/eventstore"
	"git.home.luguber.info/inful/docweave/internal/logfields"
)

// journal persists run events when a store is available. Persistence is
// best effort: a failing journal is logged and never fails the run.
type journal struct {
	store eventstore.Store
	owned bool
}

// openJournal returns the injected store, or opens history.path when set.
func openJournal(injected eventstore.Store, cfg *config.EffectiveConfig) *journal {
	if injected != nil {
		return &journal{store: injected}
	}
	if cfg == nil || cfg.History.Path == "" {
		return &journal{}
	}
	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		slog.Warn("Run journal unavailable", logfields.Path(cfg.History.Path), logfields.Error(err))
		return &journal{}
	}
	return &journal{store: store, owned: true}
}

// record appends the event built by mk. A nil journal or store is a no-op.
func (j *journal) record(ctx context.Context, mk func() (*eventstore.Event, error)) {
	if j == nil || j.store == nil {
		return
	}
	e, err := mk()
	if err == nil {
		// The journal must see the end of a canceled run.
		err = j.store.Append(context.WithoutCancel(ctx), e)
	}
	if err != nil {
		slog.Warn("Failed to record run event", logfields.Error(err))
	}
}

func (j *journal) close() {
	if j == nil || !j.owned {
		return
	}
	if err := j.store.Close(); err != nil {
		slog.Warn("Failed to close run journal", logfields.Error(err))
	}
}
