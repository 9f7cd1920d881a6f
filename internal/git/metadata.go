package git

import (
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/docweave/internal/logfields"
)

// Facts are the version-control facts known about a path.
type Facts struct {
	Root        string // worktree root
	Author      string // author of the latest commit touching the path
	AuthorEmail string
	LastCommit  time.Time // author time of that commit
	Commit      string    // full hash of that commit
	Branch      string    // checked-out branch, empty when detached
	RemoteURL   string    // canonical URL of origin (or the first remote)
}

// Inspect opens the repository enclosing path and reads its facts. For a
// file, the latest commit touching it is used; for a directory, or a file
// without history, HEAD is used.
func Inspect(path string) (Facts, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Facts{}, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stdErrors.Is(err, git.ErrRepositoryNotExists) {
			return Facts{}, ErrNotRepository
		}
		return Facts{}, fmt.Errorf("open repository: %w", err)
	}

	facts := Facts{RemoteURL: remoteURL(repo)}
	wt, err := repo.Worktree()
	if err == nil {
		facts.Root = wt.Filesystem.Root()
	}

	head, err := repo.Head()
	if err != nil {
		// Unborn branch: a repository without commits still has a remote.
		if stdErrors.Is(err, plumbing.ErrReferenceNotFound) {
			return facts, nil
		}
		return facts, fmt.Errorf("resolve HEAD: %w", err)
	}
	if head.Name().IsBranch() {
		facts.Branch = head.Name().Short()
	}

	commit, err := latestCommit(repo, head.Hash(), facts.Root, abs)
	if err != nil {
		return facts, err
	}
	facts.Author = commit.Author.Name
	facts.AuthorEmail = commit.Author.Email
	facts.LastCommit = commit.Author.When
	facts.Commit = commit.Hash.String()
	return facts, nil
}

func latestCommit(repo *git.Repository, from plumbing.Hash, root, abs string) (*object.Commit, error) {
	if rel, ok := relativeFile(root, abs); ok {
		iter, err := repo.Log(&git.LogOptions{From: from, FileName: &rel})
		if err == nil {
			c, nerr := iter.Next()
			iter.Close()
			if nerr == nil {
				return c, nil
			}
			if !stdErrors.Is(nerr, io.EOF) {
				// Shallow clones end the walk at a missing parent.
				slog.Debug("History walk stopped early", logfields.Path(rel), logfields.Error(nerr))
			}
		}
	}
	c, err := repo.CommitObject(from)
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}
	return c, nil
}

// relativeFile returns the slash-separated path of abs inside root when abs
// is a regular file below it.
func relativeFile(root, abs string) (string, bool) {
	if root == "" {
		return "", false
	}
	if info, err := os.Stat(abs); err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	if r, err := filepath.EvalSymlinks(root); err == nil {
		root = r
	}
	if a, err := filepath.EvalSymlinks(abs); err == nil {
		abs = a
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func remoteURL(repo *git.Repository) string {
	if r, err := repo.Remote(git.DefaultRemoteName); err == nil {
		if urls := r.Config().URLs; len(urls) > 0 {
			return CanonicalURL(urls[0])
		}
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return ""
	}
	for _, r := range remotes {
		if urls := r.Config().URLs; len(urls) > 0 {
			return CanonicalURL(urls[0])
		}
	}
	return ""
}
