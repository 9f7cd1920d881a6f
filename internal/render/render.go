// Package render binds a generated narrative and the analyzed source into a
// document template.
//
// Templates use text/template with missingkey=error: a reference to a key
// the context does not define fails the render instead of printing an
// empty string. Optional values are read through the meta and hasMeta
// helpers.
package render

import (
	"bytes"
	"log/slog"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docweave/internal/analysis"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/markdown"
	"git.home.luguber.info/inful/docweave/internal/model"
)

// Document is the rendered output.
type Document struct {
	Content  string
	Template string
	// Destination is the file the document was written to; empty while
	// InMemory is true.
	Destination string
	InMemory    bool
}

// Renderer renders documents from a Registry.
type Renderer struct {
	registry *Registry
}

// NewRenderer creates a Renderer. A nil registry means built-in templates only.
func NewRenderer(reg *Registry) *Renderer {
	if reg == nil {
		reg = NewRegistry(nil)
	}
	return &Renderer{registry: reg}
}

// Registry exposes the renderer's template registry.
func (r *Renderer) Registry() *Registry { return r.registry }

// Sections returns the section names the configured template expects.
func (r *Renderer) Sections(cfg *config.EffectiveConfig) ([]string, error) {
	t, err := r.registry.Lookup(cfg.Template)
	if err != nil {
		return nil, err
	}
	return t.Sections, nil
}

// Render executes cfg.Template against the narrative and representation.
func (r *Renderer) Render(n *model.Narrative, rep *analysis.Representation, cfg *config.EffectiveConfig) (*Document, error) {
	t, err := r.registry.Lookup(cfg.Template)
	if err != nil {
		return nil, err
	}
	data := Context(n, rep, t.Sections)

	tmpl, err := template.New(t.Name).
		Option("missingkey=error").
		Funcs(funcMap(rep)).
		Parse(t.Body)
	if err != nil {
		return nil, &Error{Kind: ErrTemplateInvalid, Template: t.Name, Path: t.Source, Err: err}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, execError(t.Name, err)
	}
	content := strings.TrimLeft(buf.String(), "\n")
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if cfg.Output.Fingerprint {
		content, err = withFingerprint(content, n, rep, t.Name)
		if err != nil {
			return nil, &Error{Kind: ErrExecutionFailed, Template: t.Name, Err: err}
		}
	}

	slog.Debug("Rendered document", logfields.Template(t.Name), slog.Int("bytes", len(content)))
	return &Document{Content: content, Template: t.Name, InMemory: true}, nil
}

// Context builds the template data for one render. It depends only on its
// inputs, so equal inputs render identical documents.
func Context(n *model.Narrative, rep *analysis.Representation, sections []string) map[string]any {
	if n == nil {
		n = &model.Narrative{}
	}
	if rep == nil {
		rep = &analysis.Representation{}
	}

	blocks := make([]map[string]any, 0, len(rep.Blocks))
	for _, b := range rep.Blocks {
		blocks = append(blocks, map[string]any{
			"kind":        string(b.Kind),
			"language":    b.Language,
			"content":     b.Content,
			"declaration": b.Declaration,
		})
	}
	cells := make([]map[string]any, 0, len(rep.Cells))
	for _, c := range rep.Cells {
		cells = append(cells, map[string]any{
			"kind":     string(c.Kind),
			"content":  c.Content,
			"position": c.Position,
		})
	}
	meta := make(map[string]string, len(rep.Metadata))
	for k, v := range rep.Metadata {
		meta[k] = v
	}

	return map[string]any{
		"title":     documentTitle(rep),
		"source":    rep.Artifact.Display(),
		"kind":      string(rep.Artifact.Kind),
		"language":  rep.Artifact.Language,
		"narrative": strings.TrimSpace(n.Text),
		"synthetic": n.Synthetic,
		"blocks":    blocks,
		"cells":     cells,
		"metadata":  meta,
		"sections":  append([]string{}, sections...),
		"provenance": map[string]any{
			"model":         n.Model,
			"provider":      n.Provider,
			"input_tokens":  n.InputTokens,
			"output_tokens": n.OutputTokens,
			"attempts":      n.Attempts,
			"truncated":     n.Truncated,
			"synthetic":     n.Synthetic,
		},
	}
}

func documentTitle(rep *analysis.Representation) string {
	if t, ok := rep.Meta(analysis.MetaTitle); ok && t != "" {
		return t
	}
	if rep.Artifact.Path == "" {
		return "Documentation"
	}
	return rep.Artifact.Name()
}

func funcMap(rep *analysis.Representation) template.FuncMap {
	titler := cases.Title(language.English)
	return template.FuncMap{
		"meta": func(key string) string {
			if rep == nil {
				return ""
			}
			return rep.Metadata[key]
		},
		"hasMeta": func(key string) bool {
			if rep == nil {
				return false
			}
			v, ok := rep.Metadata[key]
			return ok && v != ""
		},
		"title": func(s string) string {
			return titler.String(strings.NewReplacer("-", " ", "_", " ").Replace(s))
		},
		"fence": markdown.Fence,
		"join":  strings.Join,
		"trim":  strings.TrimSpace,
		"lower": strings.ToLower,
		"short": func(s string) string {
			if len(s) > 7 {
				return s[:7]
			}
			return s
		},
	}
}
