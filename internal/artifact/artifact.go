// Package artifact classifies input paths into the kinds the analyzer understands.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docweave/internal/foundation/normalization"
)

// Kind is the detected artifact variant.
type Kind string

const (
	KindMarkdown   Kind = "markdown"
	KindNotebook   Kind = "notebook"
	KindCode       Kind = "code"
	KindRepository Kind = "repository"
)

var kindNormalizer = normalization.NewEnumNormalizer("artifact kind", map[string]Kind{
	"markdown":    KindMarkdown,
	"md":          KindMarkdown,
	"notebook":    KindNotebook,
	"ipynb":       KindNotebook,
	"code":        KindCode,
	"code-module": KindCode,
	"repository":  KindRepository,
	"repo":        KindRepository,
}, "")

// ParseKind maps user input (e.g. a --kind flag) onto a Kind.
func ParseKind(raw string) (Kind, error) {
	return kindNormalizer.NormalizeWithValidation(raw)
}

// SourceArtifact identifies one input and its detected kind. It is a value
// type and never changes after classification.
type SourceArtifact struct {
	Path     string
	Kind     Kind
	Language string // code language for KindCode, empty otherwise
	Origin   string // where a fetched artifact came from, credentials removed
}

// Display names the artifact for readers: the origin of a fetched artifact,
// otherwise its path.
func (a SourceArtifact) Display() string {
	if a.Origin != "" {
		return a.Origin
	}
	return a.Path
}

func (a SourceArtifact) String() string {
	if a.Language != "" {
		return fmt.Sprintf("%s(%s):%s", a.Kind, a.Language, a.Path)
	}
	return fmt.Sprintf("%s:%s", a.Kind, a.Path)
}

// Name returns the base name without extension, used for default output names.
func (a SourceArtifact) Name() string {
	base := filepath.Base(filepath.Clean(a.Path))
	if a.Kind == KindRepository {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var (
	// ErrUnsupported is returned when neither extension nor content identify a kind.
	ErrUnsupported = errors.New("unsupported artifact")
)

var markdownExt = map[string]bool{".md": true, ".markdown": true, ".mdown": true, ".mkd": true}

// CodeLanguages maps file extensions to language labels.
var CodeLanguages = map[string]string{
	".go":    "go",
	".py":    "python",
	".ts":    "typescript",
	".tsx":   "tsx",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".java":  "java",
	".kt":    "kotlin",
	".rs":    "rust",
	".rb":    "ruby",
	".php":   "php",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".swift": "swift",
	".scala": "scala",
	".sh":    "bash",
}

// sniffLimit bounds how much of an extension-less file is inspected.
const sniffLimit = 64 * 1024

// Classify inspects path and returns its artifact. Directories are
// repositories; files are classified by extension and, failing that, by a
// notebook content signature. Filesystem failures are returned wrapped so
// callers can tell them apart from ErrUnsupported.
func Classify(path string) (SourceArtifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SourceArtifact{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return SourceArtifact{Path: path, Kind: KindRepository}, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case markdownExt[ext]:
		return SourceArtifact{Path: path, Kind: KindMarkdown}, nil
	case ext == ".ipynb":
		return SourceArtifact{Path: path, Kind: KindNotebook}, nil
	}
	if lang, ok := CodeLanguages[ext]; ok {
		return SourceArtifact{Path: path, Kind: KindCode, Language: lang}, nil
	}

	ok, err := looksLikeNotebook(path)
	if err != nil {
		return SourceArtifact{}, err
	}
	if ok {
		return SourceArtifact{Path: path, Kind: KindNotebook}, nil
	}
	return SourceArtifact{}, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// looksLikeNotebook reports whether the file is a JSON object with a "cells" member.
func looksLikeNotebook(path string) (bool, error) {
	f, err := os.Open(path) // #nosec G304 -- path is the user-selected input
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	head, err := io.ReadAll(io.LimitReader(f, sniffLimit))
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	head = bytes.TrimSpace(head)
	if len(head) == 0 || head[0] != '{' {
		return false, nil
	}
	var nb struct {
		Cells json.RawMessage `json:"cells"`
	}
	if json.Unmarshal(head, &nb) != nil {
		return bytes.Contains(head, []byte(`"cells"`)), nil
	}
	return len(nb.Cells) > 0, nil
}
