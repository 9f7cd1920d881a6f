package analysis

import (
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docweave/internal/artifact"
	"git.home.luguber.info/inful/docweave/internal/git"
	"git.home.luguber.info/inful/docweave/internal/logfields"
)

type factsFunc func(path string) (git.Facts, error)

func inspectFacts(path string) (git.Facts, error) { return git.Inspect(path) }

// addVCSMetadata records version-control facts for the artifact. A path
// outside version control, or any failure reading history, leaves the
// keys absent.
func (a *Analyzer) addVCSMetadata(art artifact.SourceArtifact, meta map[string]string) {
	facts, err := a.facts(art.Path)
	if err != nil {
		if !errors.Is(err, git.ErrNotRepository) {
			slog.Debug("Skipping VCS metadata", logfields.Source(art.Path), logfields.Error(err))
		}
		return
	}
	for k, v := range vcsEntries(facts, a.opts) {
		meta[k] = v
	}
}

func vcsEntries(f git.Facts, opts Options) map[string]string {
	out := map[string]string{}
	if f.Author != "" {
		out[MetaAuthor] = f.Author
	}
	if !f.LastCommit.IsZero() {
		out[MetaLastCommit] = f.LastCommit.UTC().Format(time.RFC3339)
	}
	if f.Commit != "" {
		out[MetaCommit] = f.Commit
	}
	if f.Branch != "" {
		out[MetaBranch] = f.Branch
	}
	if opts.IncludeURL && f.RemoteURL != "" {
		out[MetaRepositoryURL] = f.RemoteURL
	}
	if opts.LinkCommit {
		if u := git.CommitURL(f.RemoteURL, f.Commit); u != "" {
			out[MetaCommitURL] = u
		}
	}
	return out
}
