// Package model sends prompts to a text-generation backend.
//
// One pipeline run makes one logical request. Transient failures
// (RateLimited, Timeout, TransportFailure) are retried with the configured
// backoff up to model.retry.max_attempts total attempts; AuthFailure and
// InvalidResponse propagate immediately. A dry run never touches the
// network and returns a synthetic narrative.
package model

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/docweave/internal/config"
	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/metrics"
	"git.home.luguber.info/inful/docweave/internal/prompt"
	"git.home.luguber.info/inful/docweave/internal/retry"
)

// Narrative is the generated text plus its provenance.
type Narrative struct {
	Text         string
	Model        string
	Provider     string
	InputTokens  int
	OutputTokens int
	// Truncated reports that the prompt lost trailing content to the budget.
	Truncated bool
	// Synthetic marks a dry-run narrative; Text is empty.
	Synthetic bool
	Attempts  int
}

// Invoker runs completion requests with retry.
type Invoker struct {
	client   *http.Client
	backend  Backend
	sleep    func(context.Context, time.Duration) error
	recorder metrics.Recorder
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithHTTPClient sets the client used by the built-in backends.
func WithHTTPClient(c *http.Client) Option { return func(iv *Invoker) { iv.client = c } }

// WithBackend replaces the provider backend chosen from configuration.
func WithBackend(b Backend) Option { return func(iv *Invoker) { iv.backend = b } }

// WithSleep replaces the backoff wait; tests use it to avoid real delays.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(iv *Invoker) { iv.sleep = fn }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(iv *Invoker) { iv.recorder = r } }

// NewInvoker creates an Invoker.
func NewInvoker(opts ...Option) *Invoker {
	iv := &Invoker{
		client:   &http.Client{},
		sleep:    retry.Sleep,
		recorder: metrics.NoopRecorder{},
	}
	for _, o := range opts {
		o(iv)
	}
	return iv
}

// Invoke sends payload to the configured backend.
func (iv *Invoker) Invoke(ctx context.Context, payload *prompt.Payload, cfg *config.EffectiveConfig) (*Narrative, error) {
	mc := cfg.Model
	if cfg.DryRun {
		slog.Info("Dry run: skipping model call",
			logfields.Model(mc.ID),
			logfields.Tokens(payload.EstimatedTokens),
			slog.Bool("truncated", payload.Truncated))
		return &Narrative{Model: mc.ID, Provider: string(mc.Provider), Truncated: payload.Truncated, Synthetic: true}, nil
	}

	backend := iv.backend
	if backend == nil {
		if mc.Credential == "" {
			return nil, &Error{Kind: ErrAuthFailure, Provider: string(mc.Provider), Detail: "no credential configured (set " + credentialHint(mc.Provider) + ")"}
		}
		b, err := NewBackend(mc, iv.client)
		if err != nil {
			return nil, &Error{Kind: ErrInvalidResponse, Provider: string(mc.Provider), Err: err}
		}
		backend = b
	}

	req := Request{
		Model:       mc.ID,
		System:      payload.System,
		Prompt:      payload.Body,
		MaxTokens:   payload.ResponseTokens,
		Temperature: mc.Temperature,
		TopP:        mc.TopP,
	}
	policy := retry.FromConfig(mc.Retry)
	provider := backend.Name()

	for attempt := 1; ; attempt++ {
		start := time.Now()
		resp, err := iv.attempt(ctx, backend, req, mc.Timeout)
		if err == nil {
			iv.recorder.IncModelAttempt(provider, "success")
			iv.recorder.AddModelTokens(provider, "input", resp.InputTokens)
			iv.recorder.AddModelTokens(provider, "output", resp.OutputTokens)
			slog.Info("Model call completed",
				logfields.Model(mc.ID),
				logfields.Attempt(attempt),
				logfields.Duration(time.Since(start)),
				slog.Int("input_tokens", resp.InputTokens),
				slog.Int("output_tokens", resp.OutputTokens))
			model := resp.Model
			if model == "" {
				model = mc.ID
			}
			return &Narrative{
				Text:         resp.Text,
				Model:        model,
				Provider:     provider,
				InputTokens:  resp.InputTokens,
				OutputTokens: resp.OutputTokens,
				Truncated:    payload.Truncated,
				Attempts:     attempt,
			}, nil
		}

		merr := asModelError(provider, err)
		merr.Attempts = attempt
		iv.recorder.IncModelAttempt(provider, string(merr.Kind))

		// A cancelled caller ends the run regardless of the attempt budget.
		if ctx.Err() != nil {
			if merr.Kind != ErrTimeout {
				merr = &Error{Kind: ErrTimeout, Provider: provider, Attempts: attempt, Err: ctx.Err()}
			}
			return nil, merr
		}
		if !ferrors.CanRetry(merr.RetryStrategy()) {
			return nil, merr
		}
		if attempt >= policy.MaxAttempts {
			iv.recorder.IncRetryExhausted("invoke")
			slog.Warn("Model retries exhausted", logfields.Model(mc.ID), logfields.Attempt(attempt), logfields.Error(merr))
			return nil, merr
		}

		delay := policy.DelayWithHint(attempt, merr.RetryAfter)
		slog.Warn("Transient model failure, retrying",
			logfields.Model(mc.ID),
			logfields.Attempt(attempt),
			logfields.Kind(string(merr.Kind)),
			slog.Duration("delay", delay))
		iv.recorder.IncRetry("invoke")
		if err := iv.sleep(ctx, delay); err != nil {
			return nil, &Error{Kind: ErrTimeout, Provider: provider, Attempts: attempt, Err: err}
		}
	}
}

// attempt runs one request under the per-request timeout and rejects empty
// completions.
func (iv *Invoker) attempt(ctx context.Context, b Backend, req Request, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	resp, err := b.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, &Error{Kind: ErrInvalidResponse, Provider: b.Name(), Detail: "empty completion"}
	}
	return resp, nil
}

func asModelError(provider string, err error) *Error {
	var merr *Error
	if errors.As(err, &merr) {
		cp := *merr
		return &cp
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: ErrTimeout, Provider: provider, Err: err}
	}
	return &Error{Kind: ErrTransportFailure, Provider: provider, Err: err}
}

func credentialHint(p config.Provider) string {
	if p == config.ProviderAnthropic {
		return config.EnvAnthropicKey
	}
	return config.EnvPrimaryKey + " or " + config.EnvFallbackKey
}
