package render

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docweave/internal/frontmatter"
	"git.home.luguber.info/inful/docweave/internal/markdown"
)

//go:embed builtin/*.md.tmpl
var builtinFS embed.FS

const builtinExt = ".md.tmpl"

// BuiltinSource marks templates compiled into the binary.
const BuiltinSource = "builtin"

// Template is a loaded template definition.
type Template struct {
	Name        string
	Description string
	Sections    []string
	Source      string // file path, or BuiltinSource
	Body        string
}

type header struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Sections    []string `yaml:"sections"`
}

// Registry resolves template names to definitions. Configured paths take
// precedence over the built-in templates of the same name.
type Registry struct {
	paths map[string]string
}

// NewRegistry creates a registry over the configured name -> path map.
func NewRegistry(paths map[string]string) *Registry {
	cp := make(map[string]string, len(paths))
	for k, v := range paths {
		cp[k] = v
	}
	return &Registry{paths: cp}
}

// Lookup loads the named template. A name that is not registered but
// points at an existing file is loaded from that file.
func (r *Registry) Lookup(name string) (*Template, error) {
	if p, ok := r.paths[name]; ok {
		return loadFile(name, p)
	}
	if data, err := builtinFS.ReadFile("builtin/" + name + builtinExt); err == nil {
		return parseDefinition(name, BuiltinSource, data)
	}
	if looksLikePath(name) {
		if _, err := os.Stat(name); err == nil {
			return loadFile(strings.TrimSuffix(path.Base(name), path.Ext(name)), name)
		}
	}
	return nil, &Error{Kind: ErrTemplateNotFound, Template: name}
}

// Names lists configured and built-in template names, sorted.
func (r *Registry) Names() []string {
	seen := map[string]bool{}
	for n := range r.paths {
		seen[n] = true
	}
	entries, _ := fs.ReadDir(builtinFS, "builtin")
	for _, e := range entries {
		seen[strings.TrimSuffix(e.Name(), builtinExt)] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// List loads every known template. Templates that fail to load are
// returned in the joined error and skipped.
func (r *Registry) List() ([]*Template, error) {
	var (
		out  []*Template
		errs []error
	)
	for _, n := range r.Names() {
		t, err := r.Lookup(n)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, t)
	}
	return out, errors.Join(errs...)
}

func loadFile(name, p string) (*Template, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: ErrTemplateNotFound, Template: name, Path: p, Err: err}
		}
		return nil, &Error{Kind: ErrTemplateInvalid, Template: name, Path: p, Err: err}
	}
	return parseDefinition(name, p, data)
}

// parseDefinition splits the optional YAML header from the template body.
// Without declared sections, the body's level-2 headings are used.
func parseDefinition(name, source string, data []byte) (*Template, error) {
	doc, err := frontmatter.Split(data)
	if err != nil {
		return nil, &Error{Kind: ErrTemplateInvalid, Template: name, Path: source, Err: err}
	}
	body := doc.Body
	var h header
	if err := doc.Decode(&h); err != nil {
		return nil, &Error{Kind: ErrTemplateInvalid, Template: name, Path: source, Err: err}
	}
	t := &Template{Name: name, Description: h.Description, Sections: h.Sections, Source: source, Body: string(body)}
	if len(t.Sections) == 0 {
		t.Sections = headingSections(body)
	}
	return t, nil
}

func headingSections(body []byte) []string {
	var out []string
	for _, h := range markdown.ExtractOutline(body).Headings {
		if h.Level == 2 && !strings.Contains(h.Text, "{{") {
			out = append(out, h.Text)
		}
	}
	return out
}

func looksLikePath(name string) bool {
	return strings.ContainsAny(name, `/\`) || strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".tmpl")
}

// String describes the template for listings.
func (t *Template) String() string {
	return fmt.Sprintf("%s (%s): %s", t.Name, t.Source, t.Description)
}
