package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docweave/internal/artifact"
	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/git"
)

// newTestAnalyzer returns an analyzer that sees every path as unversioned.
func newTestAnalyzer(opts Options) *Analyzer {
	a := New(opts)
	a.facts = func(string) (git.Facts, error) { return git.Facts{}, git.ErrNotRepository }
	return a
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestAnalyzePath_UnreadableIsIOFailure(t *testing.T) {
	a := newTestAnalyzer(Options{})
	_, err := a.AnalyzePath(filepath.Join(t.TempDir(), "missing.md"))
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	require.Equal(t, ErrIOFailure, aerr.Kind)
	require.Equal(t, ferrors.CategoryAnalysis, aerr.Category())
}

func TestAnalyzePath_UnsupportedArtifact(t *testing.T) {
	p := writeFile(t, t.TempDir(), "photo.bin", "\x00\x01")
	_, err := newTestAnalyzer(Options{}).AnalyzePath(p)
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	require.Equal(t, ErrUnsupportedArtifact, aerr.Kind)
	require.Equal(t, ferrors.CategoryValidation, aerr.Category())
}

func TestClassifyAs(t *testing.T) {
	dir := t.TempDir()
	notes := writeFile(t, dir, "notes.txt", "# Notes\n")
	script := writeFile(t, dir, "tool.py", "print(1)\n")

	art, err := ClassifyAs(notes, "MD")
	require.NoError(t, err)
	require.Equal(t, artifact.KindMarkdown, art.Kind)

	art, err = ClassifyAs(script, "code-module")
	require.NoError(t, err)
	require.Equal(t, "python", art.Language)

	var aerr *Error
	_, err = ClassifyAs(notes, "code")
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, ErrUnsupportedArtifact, aerr.Kind)

	_, err = ClassifyAs(notes, "spreadsheet")
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, ErrUnsupportedArtifact, aerr.Kind)

	_, err = ClassifyAs(filepath.Join(dir, "gone.md"), "markdown")
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, ErrIOFailure, aerr.Kind)

	art, err = ClassifyAs(script, "")
	require.NoError(t, err)
	require.Equal(t, artifact.KindCode, art.Kind)
}

func TestAnalyze_UnknownKind(t *testing.T) {
	_, err := newTestAnalyzer(Options{}).Analyze(artifact.SourceArtifact{Path: "x", Kind: "spreadsheet"})
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	require.Equal(t, ErrUnsupportedArtifact, aerr.Kind)
}

func TestAnalyze_VCSMetadata(t *testing.T) {
	p := writeFile(t, t.TempDir(), "doc.md", "# Hi\n")
	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("CEST", 2*3600))

	a := New(Options{IncludeURL: true, LinkCommit: true})
	a.facts = func(string) (git.Facts, error) {
		return git.Facts{Author: "Ada", LastCommit: when, Commit: "abc123", RemoteURL: "https://github.com/acme/doc"}, nil
	}
	rep, err := a.AnalyzePath(p)
	require.NoError(t, err)
	require.Equal(t, "Ada", rep.Metadata[MetaAuthor])
	require.Equal(t, "2024-05-06T05:08:09Z", rep.Metadata[MetaLastCommit])
	require.Equal(t, "https://github.com/acme/doc", rep.Metadata[MetaRepositoryURL])
	require.Equal(t, "https://github.com/acme/doc/commit/abc123", rep.Metadata[MetaCommitURL])

	a = New(Options{})
	a.facts = func(string) (git.Facts, error) {
		return git.Facts{Author: "Ada", Commit: "abc123", RemoteURL: "https://github.com/acme/doc"}, nil
	}
	rep, err = a.AnalyzePath(p)
	require.NoError(t, err)
	_, hasURL := rep.Meta(MetaRepositoryURL)
	_, hasLink := rep.Meta(MetaCommitURL)
	require.False(t, hasURL)
	require.False(t, hasLink)
}

func TestAnalyze_NotVersionedDegradesGracefully(t *testing.T) {
	dir := t.TempDir()
	rep, err := New(Options{IncludeURL: true}).Analyze(artifact.SourceArtifact{Path: dir, Kind: artifact.KindRepository})
	require.NoError(t, err)
	require.Empty(t, rep.Blocks)
	_, ok := rep.Meta(MetaAuthor)
	require.False(t, ok)
}

func TestRepresentation_IsEmpty(t *testing.T) {
	require.True(t, (&Representation{}).IsEmpty())
	require.True(t, (*Representation)(nil).IsEmpty())
	require.False(t, (&Representation{Metadata: map[string]string{"a": "b"}}).IsEmpty())
	require.False(t, (&Representation{Blocks: []Block{{Kind: BlockText, Content: "x"}}}).IsEmpty())
}
