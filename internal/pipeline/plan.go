package pipeline

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docweave/internal/artifact"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/git"
)

// Request is the input of one Generate call.
type Request struct {
	// Source is a local path or, when the pipeline has a Fetcher, a remote
	// repository URL.
	Source string
	// Output is the file to write. Empty keeps the document in memory
	// unless AutoOutput is set.
	Output string
	// AutoOutput writes to DefaultDestination when Output is empty.
	AutoOutput bool
	// Kind forces the artifact kind instead of detecting it.
	Kind string
	// Template overrides the configured template when set.
	Template string
	// ConfigPath is an explicit configuration file.
	ConfigPath string
	// Overrides are call-site values with the highest precedence.
	Overrides config.Overrides
}

// overrides merges the request's template shortcut into its overrides.
func (r Request) overrides() config.Overrides {
	ov := r.Overrides
	if r.Template != "" && ov.Template == nil {
		t := r.Template
		ov.Template = &t
	}
	return ov
}

// Plan is the resolved, immutable description of a run once configuration
// and classification are done.
type Plan struct {
	RunID    string
	Config   *config.EffectiveConfig
	Artifact artifact.SourceArtifact
	// Remote is the original URL for fetched sources.
	Remote string
	// Destination is the output file; empty means in-memory.
	Destination string
}

// Stem is the base name used for default output files.
func (p *Plan) Stem() string {
	if p.Remote != "" {
		return git.RepoName(p.Remote)
	}
	return SourceStem(p.Artifact.Path)
}

// DefaultDestination returns <output.directory>/<stem><output.suffix>, the
// file the CLI writes when no explicit output is given.
func DefaultDestination(cfg *config.EffectiveConfig, stem string) string {
	dir := cfg.Output.Directory
	if dir == "" {
		dir = "."
	}
	suffix := cfg.Output.Suffix
	if suffix == "" {
		suffix = config.DefaultOutputSuffix
	}
	return filepath.Join(dir, stem+suffix)
}

// SourceStem derives the default output stem for a source reference without
// classifying it.
func SourceStem(source string) string {
	if git.IsRemoteURL(source) {
		return git.RepoName(source)
	}
	if abs, err := filepath.Abs(source); err == nil {
		source = abs
	}
	art := artifact.SourceArtifact{Path: source}
	if st, err := os.Stat(source); err == nil && st.IsDir() {
		art.Kind = artifact.KindRepository
	}
	return art.Name()
}
