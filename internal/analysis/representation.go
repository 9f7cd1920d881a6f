// Package analysis extracts a normalized representation from a source
// artifact: ordered content blocks, notebook cells and metadata facts.
//
// Every analysis is a pure function of the artifact's bytes plus, where
// available, its version-control history. Nothing is written to disk.
package analysis

import (
	"sort"

	"git.home.luguber.info/inful/docweave/internal/artifact"
)

// BlockKind tags a content block.
type BlockKind string

const (
	BlockText BlockKind = "text"
	BlockCode BlockKind = "code"
)

// Block is one ordered unit of extracted content.
type Block struct {
	Kind     BlockKind
	Language string // language label for code blocks; "" when undeclared
	Content  string
	// Declaration names the declaration a documentation comment belongs to
	// (code modules only).
	Declaration string
}

// CellKind tags a notebook cell.
type CellKind string

const (
	CellMarkdown CellKind = "markdown"
	CellCode     CellKind = "code"
)

// Cell is one notebook cell in on-disk order.
type Cell struct {
	Kind     CellKind
	Content  string
	Position int // zero-based index in the notebook
}

// Representation is the normalized result of analyzing one artifact.
// It is created once per run and must be treated as read-only afterwards.
type Representation struct {
	Artifact artifact.SourceArtifact
	Blocks   []Block
	Cells    []Cell
	Metadata map[string]string
}

// IsEmpty reports whether there is neither content nor metadata.
func (r *Representation) IsEmpty() bool {
	return r == nil || (len(r.Blocks) == 0 && len(r.Cells) == 0 && len(r.Metadata) == 0)
}

// MetadataKeys returns the metadata keys in sorted order.
func (r *Representation) MetadataKeys() []string {
	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Meta returns a metadata value and whether it was present.
func (r *Representation) Meta(key string) (string, bool) {
	v, ok := r.Metadata[key]
	return v, ok
}

// Metadata keys produced by the analyzers.
const (
	MetaAuthor        = "author"
	MetaLastCommit    = "last_commit"
	MetaCommit        = "commit"
	MetaCommitURL     = "commit_url"
	MetaRepositoryURL = "repository_url"
	MetaBranch        = "branch"
	MetaTitle         = "title"
	MetaHeadings      = "headings"
	MetaLinks         = "links"
	MetaLanguage      = "language"
	MetaNotebookLang  = "notebook.language"
	MetaCellCount     = "notebook.cells"
	MetaLanguages     = "languages"
	MetaFrameworks    = "frameworks"
	MetaEntryPoints   = "entry_points"
	MetaDependencies  = "dependencies"
	MetaConfigFiles   = "config_files"
	MetaAPISpecs      = "api_specs"
	MetaStructure     = "structure"
	MetaReadme        = "readme"
	MetaDeclarations  = "declarations"
)
