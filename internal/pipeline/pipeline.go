// Package pipeline sequences one documentation run: resolve configuration,
// materialize and analyze the source, build the prompt, invoke the model,
// render the template and optionally write the result.
//
// Stages run strictly in order and the first failure ends the run with a
// StageError naming the stage. A Pipeline holds no per-run state, so
// independent runs may call Generate concurrently.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docweave/internal/analysis"
	"git.home.luguber.info/inful/docweave/internal/artifact"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/eventstore"
	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/git"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/metrics"
	"git.home.luguber.info/inful/docweave/internal/model"
	"git.home.luguber.info/inful/docweave/internal/prompt"
	"git.home.luguber.info/inful/docweave/internal/render"
)

// SourceAnalyzer extracts a representation from a classified artifact.
type SourceAnalyzer interface {
	Analyze(art artifact.SourceArtifact) (*analysis.Representation, error)
}

// ModelInvoker turns a prompt into a narrative.
type ModelInvoker interface {
	Invoke(ctx context.Context, payload *prompt.Payload, cfg *config.EffectiveConfig) (*model.Narrative, error)
}

// Pipeline runs documentation generation. Unset collaborators are built per
// run from the effective configuration.
type Pipeline struct {
	analyzer SourceAnalyzer
	invoker  ModelInvoker
	renderer *render.Renderer
	fetcher  Fetcher
	store    eventstore.Store
	recorder metrics.Recorder
	gatherer prom.Gatherer
	lookup   config.LookupFunc
	workDir  string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAnalyzer replaces the source analyzer.
func WithAnalyzer(a SourceAnalyzer) Option { return func(p *Pipeline) { p.analyzer = a } }

// WithInvoker replaces the model invoker.
func WithInvoker(iv ModelInvoker) Option { return func(p *Pipeline) { p.invoker = iv } }

// WithRenderer replaces the template renderer.
func WithRenderer(r *render.Renderer) Option { return func(p *Pipeline) { p.renderer = r } }

// WithFetcher enables remote sources.
func WithFetcher(f Fetcher) Option { return func(p *Pipeline) { p.fetcher = f } }

// WithJournal records run events in store instead of the configured history file.
func WithJournal(store eventstore.Store) Option { return func(p *Pipeline) { p.store = store } }

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithPrometheus records metrics into reg and exports them to
// metrics.textfile after each run when that is configured.
func WithPrometheus(reg *prom.Registry) Option {
	return func(p *Pipeline) {
		p.recorder = metrics.NewPrometheusRecorder(reg)
		p.gatherer = reg
	}
}

// WithLookup replaces the process environment used by config resolution.
func WithLookup(fn config.LookupFunc) Option { return func(p *Pipeline) { p.lookup = fn } }

// WithWorkDir sets the directory searched for docweave.yaml and .env files.
func WithWorkDir(dir string) Option { return func(p *Pipeline) { p.workDir = dir } }

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{recorder: metrics.NoopRecorder{}}
	for _, o := range opts {
		o(p)
	}
	return p
}

// run is the mutable state of one Generate call.
type run struct {
	p       *Pipeline
	id      string
	started time.Time
	log     *slog.Logger
	journal *journal
	plan    *Plan
	payload *prompt.Payload
	story   *model.Narrative
	cleanup func()
}

// Generate runs every stage for req. With req.Output unset the document is
// returned in memory and nothing is written.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*render.Document, error) {
	r := &run{p: p, id: uuid.NewString(), started: time.Now()}
	r.log = slog.Default().With(logfields.RunID(r.id))
	r.log.Info("Starting documentation run", logfields.Source(git.RedactURL(req.Source)))

	doc, err := r.execute(ctx, req)
	r.finish(ctx, doc, err)
	return doc, err
}

func (r *run) execute(ctx context.Context, req Request) (*render.Document, error) {
	p := r.p
	plan := &Plan{RunID: r.id}
	r.plan = plan

	configStart := time.Now()
	cfg, err := stage(ctx, r, StageConfig, func() (*config.EffectiveConfig, error) {
		var opts []config.Option
		if p.lookup != nil {
			opts = append(opts, config.WithLookup(p.lookup))
		}
		if p.workDir != "" {
			opts = append(opts, config.WithWorkDir(p.workDir))
		}
		return config.Resolve(req.overrides(), req.ConfigPath, opts...)
	})
	if err != nil {
		return nil, err
	}
	plan.Config = cfg

	r.journal = openJournal(p.store, cfg)
	r.journal.record(ctx, func() (*eventstore.Event, error) {
		return eventstore.NewRunStarted(r.id, eventstore.RunStartedMeta{
			Source:   git.RedactURL(req.Source),
			Template: cfg.Template,
			Model:    cfg.Model.ID,
			DryRun:   cfg.DryRun,
			Output:   req.Output,
		})
	})
	r.stageCompleted(ctx, StageConfig, time.Since(configStart))

	local := req.Source
	if git.IsRemoteURL(req.Source) {
		path, err := stage(ctx, r, StageFetch, func() (string, error) {
			return r.fetch(ctx, req.Source, cfg)
		})
		if err != nil {
			return nil, err
		}
		plan.Remote = req.Source
		local = path
	}

	rep, err := stage(ctx, r, StageAnalyze, func() (*analysis.Representation, error) {
		art, err := analysis.ClassifyAs(local, req.Kind)
		if err != nil {
			return nil, err
		}
		if plan.Remote != "" {
			art.Origin = git.RedactURL(plan.Remote)
		}
		plan.Artifact = art
		analyzer := p.analyzer
		if analyzer == nil {
			analyzer = analysis.New(analysis.OptionsFromConfig(cfg))
		}
		rep, err := analyzer.Analyze(art)
		if err == nil && rep != nil && plan.Remote != "" {
			rep.Artifact.Origin = art.Origin
		}
		return rep, err
	})
	if err != nil {
		return nil, err
	}

	renderer := p.renderer
	if renderer == nil {
		renderer = render.NewRenderer(render.NewRegistry(cfg.Templates))
	}
	// The template is looked up before the model call so a missing template
	// fails without spending a request.
	sections, err := renderer.Sections(cfg)
	if err != nil {
		return nil, r.fail(ctx, StageRender, err)
	}

	r.payload, err = stage(ctx, r, StagePrompt, func() (*prompt.Payload, error) {
		return prompt.Build(rep, cfg, prompt.WithTemplate(cfg.Template), prompt.WithSections(sections...))
	})
	if err != nil {
		return nil, err
	}

	r.story, err = stage(ctx, r, StageInvoke, func() (*model.Narrative, error) {
		invoker := p.invoker
		if invoker == nil {
			invoker = model.NewInvoker(model.WithRecorder(p.recorder))
		}
		return invoker.Invoke(ctx, r.payload, cfg)
	})
	if err != nil {
		return nil, err
	}

	doc, err := stage(ctx, r, StageRender, func() (*render.Document, error) {
		return renderer.Render(r.story, rep, cfg)
	})
	if err != nil {
		return nil, err
	}

	dest := req.Output
	if dest == "" && req.AutoOutput {
		dest = DefaultDestination(cfg, plan.Stem())
	}
	plan.Destination = dest
	if dest == "" {
		return doc, nil
	}
	if _, err := stage(ctx, r, StageWrite, func() (struct{}, error) {
		return struct{}{}, writeAtomic(ctx, dest, doc.Content)
	}); err != nil {
		return nil, err
	}
	doc.Destination = dest
	doc.InMemory = false
	r.log.Info("Documentation written", logfields.Path(dest), slog.Int("bytes", len(doc.Content)))
	return doc, nil
}

func (r *run) fetch(ctx context.Context, url string, cfg *config.EffectiveConfig) (string, error) {
	if r.p.fetcher == nil {
		return "", ferrors.ValidationError("remote sources need a fetcher").
			WithContext("source", git.RedactURL(url)).
			Build()
	}
	start := time.Now()
	path, cleanup, err := r.p.fetcher.Fetch(ctx, url, cfg)
	r.p.recorder.ObserveCloneDuration(time.Since(start), err == nil)
	if err != nil {
		return "", err
	}
	r.cleanup = cleanup
	return path, nil
}

// stage runs fn as stage s, recording its duration and result and tagging
// any failure.
func stage[T any](ctx context.Context, r *run, s Stage, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	d := time.Since(start)
	r.p.recorder.ObserveStageDuration(string(s), d)
	if err != nil {
		var zero T
		return zero, r.fail(ctx, s, err)
	}
	r.p.recorder.IncStageResult(string(s), metrics.ResultSuccess)
	if s != StageConfig {
		r.stageCompleted(ctx, s, d)
	}
	r.log.Debug("Stage completed", logfields.Stage(string(s)), logfields.Duration(d))
	return v, nil
}

func (r *run) stageCompleted(ctx context.Context, s Stage, d time.Duration) {
	r.journal.record(ctx, func() (*eventstore.Event, error) {
		return eventstore.NewStageCompleted(r.id, string(s), d)
	})
}

// fail wraps err with its stage and counts the failure.
func (r *run) fail(ctx context.Context, s Stage, err error) error {
	result := metrics.ResultFailed
	if ctx.Err() != nil {
		result = metrics.ResultCanceled
	}
	r.p.recorder.IncStageResult(string(s), result)
	return &StageError{Stage: s, Err: err}
}

// finish records the run outcome, closes the journal and exports metrics.
func (r *run) finish(ctx context.Context, doc *render.Document, err error) {
	if r.cleanup != nil {
		r.cleanup()
	}
	d := time.Since(r.started)
	r.p.recorder.ObserveRunDuration(d)

	switch {
	case err == nil:
		outcome := metrics.OutcomeSuccess
		if r.plan.Config.DryRun {
			outcome = metrics.OutcomeDryRun
		}
		r.p.recorder.IncRunOutcome(outcome)
		r.journal.record(ctx, func() (*eventstore.Event, error) {
			return eventstore.NewRunCompleted(r.id, r.completedMeta(doc, d))
		})
		r.log.Info("Documentation run completed",
			logfields.Template(doc.Template),
			slog.Bool("in_memory", doc.InMemory),
			logfields.Duration(d))
	default:
		outcome := metrics.OutcomeFailed
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			outcome = metrics.OutcomeCanceled
		}
		r.p.recorder.IncRunOutcome(outcome)
		st, _ := FailedStage(err)
		kind := errorKind(err)
		r.journal.record(ctx, func() (*eventstore.Event, error) {
			return eventstore.NewRunFailed(r.id, eventstore.RunFailedMeta{
				Stage:      string(st),
				Kind:       kind,
				Error:      err.Error(),
				DurationMS: d.Milliseconds(),
			})
		})
		r.log.Error("Documentation run failed",
			logfields.Stage(string(st)),
			logfields.Kind(kind),
			logfields.Error(err),
			logfields.Duration(d))
	}

	r.journal.close()
	r.exportMetrics()
}

func (r *run) completedMeta(doc *render.Document, d time.Duration) eventstore.RunCompletedMeta {
	meta := eventstore.RunCompletedMeta{
		Destination: doc.Destination,
		Bytes:       len(doc.Content),
		DurationMS:  d.Milliseconds(),
	}
	if r.payload != nil {
		meta.Truncated = r.payload.Truncated
	}
	if r.story != nil {
		meta.Synthetic = r.story.Synthetic
		meta.Attempts = r.story.Attempts
		meta.InputTokens = r.story.InputTokens
		meta.OutputTokens = r.story.OutputTokens
	}
	return meta
}

func (r *run) exportMetrics() {
	cfg := r.plan.Config
	if r.p.gatherer == nil || cfg == nil || cfg.Metrics.Textfile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.Metrics.Textfile, r.p.gatherer); err != nil {
		r.log.Warn("Failed to export metrics", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
	}
}
