// Package docweave is the public API of the documentation generator.
//
// Generate runs the whole pipeline. Resolve, Analyze, Build, Invoke and
// Render expose the individual stages so callers can assemble or replace
// them, for example to inspect a prompt before paying for a model call.
package docweave

import (
	"context"

	"git.home.luguber.info/inful/docweave/internal/analysis"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/model"
	"git.home.luguber.info/inful/docweave/internal/pipeline"
	"git.home.luguber.info/inful/docweave/internal/prompt"
	"git.home.luguber.info/inful/docweave/internal/render"
)

type (
	// Config is the fully resolved configuration.
	Config = config.EffectiveConfig
	// Overrides are call-site configuration values.
	Overrides = config.Overrides
	// Representation is the analyzed form of a source.
	Representation = analysis.Representation
	// Payload is a bounded model request.
	Payload = prompt.Payload
	// Narrative is the model output plus provenance.
	Narrative = model.Narrative
	// Document is the rendered result.
	Document = render.Document
	// Request describes one Generate call.
	Request = pipeline.Request
	// StageError reports which pipeline stage failed.
	StageError = pipeline.StageError
)

// Resolve merges defaults, the optional configuration file at path, the
// environment and overrides.
func Resolve(overrides Overrides, path string) (*Config, error) {
	return config.Resolve(overrides, path)
}

// Analyze classifies the local path and extracts its representation.
func Analyze(path string, cfg *Config) (*Representation, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	return analysis.New(analysis.OptionsFromConfig(cfg)).AnalyzePath(path)
}

// Build turns a representation into a prompt that fits cfg's token budget,
// targeting the sections of cfg's template.
func Build(rep *Representation, cfg *Config) (*Payload, error) {
	sections, err := renderer(cfg).Sections(cfg)
	if err != nil {
		return nil, err
	}
	return prompt.Build(rep, cfg, prompt.WithTemplate(cfg.Template), prompt.WithSections(sections...))
}

// Invoke sends the payload to the configured model backend. A dry-run
// configuration returns a synthetic narrative without network access.
func Invoke(ctx context.Context, payload *Payload, cfg *Config) (*Narrative, error) {
	return model.NewInvoker().Invoke(ctx, payload, cfg)
}

// Render binds the narrative and representation into cfg's template.
func Render(n *Narrative, rep *Representation, cfg *Config) (*Document, error) {
	return renderer(cfg).Render(n, rep, cfg)
}

// Generate runs every stage for req. With req.Output empty the document is
// returned in memory.
func Generate(ctx context.Context, req Request) (*Document, error) {
	return pipeline.New().Generate(ctx, req)
}

func renderer(cfg *Config) *render.Renderer {
	return render.NewRenderer(render.NewRegistry(cfg.Templates))
}
