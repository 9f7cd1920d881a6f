package pipeline

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/git"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/retry"
	"git.home.luguber.info/inful/docweave/internal/workspace"
)

// Fetcher materializes a remote source as a local path. The returned cleanup
// is called once the run no longer needs the path.
type Fetcher interface {
	Fetch(ctx context.Context, url string, cfg *config.EffectiveConfig) (path string, cleanup func(), err error)
}

// GitFetcher clones remote repositories into a temporary workspace.
type GitFetcher struct {
	baseDir string
	keep    bool
}

// NewGitFetcher creates a fetcher whose workspaces live under baseDir
// (os.TempDir when empty).
func NewGitFetcher(baseDir string) *GitFetcher {
	return &GitFetcher{baseDir: baseDir}
}

// KeepWorkspace leaves cloned workspaces on disk for inspection.
func (f *GitFetcher) KeepWorkspace(keep bool) *GitFetcher {
	f.keep = keep
	return f
}

// Fetch clones url with the configured token and retry policy.
func (f *GitFetcher) Fetch(ctx context.Context, url string, cfg *config.EffectiveConfig) (string, func(), error) {
	ws := workspace.NewManager(f.baseDir).Keep(f.keep)
	if err := ws.Create(); err != nil {
		return "", nil, errors.FileSystemError("failed to create clone workspace").WithCause(err).Build()
	}
	cleanup := func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to remove clone workspace", logfields.Path(ws.GetPath()), logfields.Error(err))
		}
	}

	client := git.NewClient(ws.GetPath()).
		WithToken(cfg.Git.Token).
		WithRetry(retry.FromConfig(cfg.Model.Retry))
	path, err := client.Clone(ctx, url)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
