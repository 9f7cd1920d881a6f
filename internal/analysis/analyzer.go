package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/docweave/internal/artifact"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/logfields"
)

// Options tune optional parts of the analysis.
type Options struct {
	IncludeURL     bool     // add repository_url from the VCS remote
	LinkCommit     bool     // add commit_url pointing at the hosting service
	Ignore         []string // doublestar globs skipped by the repository scan
	StructureDepth int      // depth of the repository structure tree
	ReadmeLimit    int      // max bytes of README kept in repository metadata
}

// OptionsFromConfig derives analyzer options from the effective configuration.
func OptionsFromConfig(cfg *config.EffectiveConfig) Options {
	return Options{
		IncludeURL:     cfg.Git.IncludeURL,
		LinkCommit:     cfg.Git.LinkCommit,
		Ignore:         cfg.Analysis.Ignore,
		StructureDepth: cfg.Analysis.StructureDepth,
		ReadmeLimit:    defaultReadmeLimit,
	}
}

const defaultReadmeLimit = 8 * 1024

type analyzeFunc func(a artifact.SourceArtifact) (*Representation, error)

// Analyzer dispatches on artifact kind. It holds no per-run state and is
// safe for concurrent use.
type Analyzer struct {
	opts     Options
	handlers map[artifact.Kind]analyzeFunc
	facts    factsFunc
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	if opts.ReadmeLimit <= 0 {
		opts.ReadmeLimit = defaultReadmeLimit
	}
	a := &Analyzer{opts: opts, facts: inspectFacts}
	a.handlers = map[artifact.Kind]analyzeFunc{
		artifact.KindMarkdown:   a.analyzeMarkdown,
		artifact.KindNotebook:   a.analyzeNotebook,
		artifact.KindCode:       a.analyzeCode,
		artifact.KindRepository: a.analyzeRepository,
	}
	return a
}

// Analyze extracts the representation of a classified artifact.
func (a *Analyzer) Analyze(art artifact.SourceArtifact) (*Representation, error) {
	handler, ok := a.handlers[art.Kind]
	if !ok {
		return nil, &Error{Kind: ErrUnsupportedArtifact, Path: art.Path, Detail: fmt.Sprintf("unknown kind %q", art.Kind)}
	}
	start := time.Now()
	rep, err := handler(art)
	if err != nil {
		return nil, err
	}
	if rep.Metadata == nil {
		rep.Metadata = map[string]string{}
	}
	a.addVCSMetadata(art, rep.Metadata)
	slog.Debug("Analyzed artifact",
		logfields.Source(art.Path),
		logfields.Kind(string(art.Kind)),
		slog.Int("blocks", len(rep.Blocks)),
		slog.Int("cells", len(rep.Cells)),
		slog.Int("metadata", len(rep.Metadata)),
		logfields.Duration(time.Since(start)))
	return rep, nil
}

// AnalyzePath classifies path and analyzes it.
func (a *Analyzer) AnalyzePath(path string) (*Representation, error) {
	art, err := Classify(path)
	if err != nil {
		return nil, err
	}
	return a.Analyze(art)
}

// Classify wraps artifact.Classify, translating its failures into analysis errors.
func Classify(path string) (artifact.SourceArtifact, error) {
	art, err := artifact.Classify(path)
	if err == nil {
		return art, nil
	}
	if errors.Is(err, artifact.ErrUnsupported) {
		return artifact.SourceArtifact{}, &Error{Kind: ErrUnsupportedArtifact, Path: path}
	}
	return artifact.SourceArtifact{}, ioFailure(path, err)
}

// ClassifyAs treats path as the named kind instead of detecting it. An
// empty kind falls back to Classify. Code artifacts still need a known
// extension to pick their language.
func ClassifyAs(path, kind string) (artifact.SourceArtifact, error) {
	if kind == "" {
		return Classify(path)
	}
	k, err := artifact.ParseKind(kind)
	if err != nil {
		return artifact.SourceArtifact{}, &Error{Kind: ErrUnsupportedArtifact, Path: path, Err: err}
	}
	if _, err := os.Stat(path); err != nil {
		return artifact.SourceArtifact{}, ioFailure(path, err)
	}
	art := artifact.SourceArtifact{Path: path, Kind: k}
	if k == artifact.KindCode {
		lang, ok := artifact.CodeLanguages[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return artifact.SourceArtifact{}, &Error{Kind: ErrUnsupportedArtifact, Path: path, Detail: "no code language for this extension"}
		}
		art.Language = lang
	}
	return art, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is the user-selected input
	if err != nil {
		return nil, ioFailure(path, err)
	}
	return data, nil
}
