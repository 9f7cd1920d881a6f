package git

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/retry"
)

// Client clones remote sources into a workspace directory.
type Client struct {
	workspaceDir string
	token        string
	policy       *retry.Policy
}

// NewClient creates a client that clones under workspaceDir.
func NewClient(workspaceDir string) *Client { return &Client{workspaceDir: workspaceDir} }

// WithToken sets the HTTPS token used for private repositories.
func (c *Client) WithToken(token string) *Client { c.token = token; return c }

// WithRetry retries transient clone failures according to p.
func (c *Client) WithRetry(p retry.Policy) *Client { c.policy = &p; return c }

// Clone fetches url and returns the local checkout path.
func (c *Client) Clone(ctx context.Context, url string) (string, error) {
	attempts := 1
	if c.policy != nil {
		attempts = c.policy.MaxAttempts
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := c.policy.Delay(attempt - 1)
			slog.Warn("Retrying clone", logfields.URL(RedactURL(url)), logfields.Attempt(attempt), logfields.Duration(delay))
			if err := retry.Sleep(ctx, delay); err != nil {
				return "", ClassifyGitError(err, "clone", RedactURL(url))
			}
		}
		repoPath, err := c.cloneOnce(ctx, url)
		if err == nil {
			return repoPath, nil
		}
		lastErr = err
		if !errors.CanRetry(errors.GetRetryStrategy(err)) {
			return "", err
		}
	}
	return "", lastErr
}

func (c *Client) cloneOnce(ctx context.Context, url string) (string, error) {
	repoPath := filepath.Join(c.workspaceDir, RepoName(url))
	slog.Debug("Cloning repository", logfields.URL(RedactURL(url)), logfields.Path(repoPath))
	if err := os.RemoveAll(repoPath); err != nil {
		return "", errors.FileSystemError("failed to remove existing directory").
			WithCause(err).WithContext("path", repoPath).Build()
	}

	opts := &git.CloneOptions{URL: url, SingleBranch: true, Depth: 1}
	if auth := tokenAuth(url, c.token); auth != nil {
		opts.Auth = auth
	}
	repository, err := git.PlainCloneContext(ctx, repoPath, false, opts)
	if err != nil {
		return "", ClassifyGitError(err, "clone", RedactURL(url))
	}
	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Repository cloned", logfields.URL(RedactURL(url)), slog.String("commit", shortHash(ref.Hash().String())), logfields.Path(repoPath))
	} else {
		slog.Info("Repository cloned", logfields.URL(RedactURL(url)), logfields.Path(repoPath))
	}
	return repoPath, nil
}

// RepoName derives a directory name from a repository URL.
func RepoName(url string) string {
	u := strings.TrimRight(strings.TrimSpace(url), "/")
	if i := strings.LastIndexAny(u, "/:"); i >= 0 {
		u = u[i+1:]
	}
	u = strings.TrimSuffix(u, ".git")
	u = path.Clean(u)
	if u == "" || u == "." || u == ".." {
		return "repository"
	}
	return u
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
