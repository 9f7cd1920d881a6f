package model

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/prompt"
)

func testPayload() *prompt.Payload {
	return &prompt.Payload{System: "sys", Body: "body", EstimatedTokens: 2, Budget: 100, ResponseTokens: 64}
}

func testConfig(baseURL string) *config.EffectiveConfig {
	cfg := config.Defaults()
	cfg.Model.BaseURL = baseURL
	cfg.Model.Credential = "secret"
	cfg.Model.Timeout = 5 * time.Second
	return cfg
}

// recordSleep captures backoff delays without waiting.
func recordSleep(delays *[]time.Duration) Option {
	return WithSleep(func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	})
}

func writeChat(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model": "served-model",
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
		"usage": map[string]int{"prompt_tokens": 11, "completion_tokens": 7},
	})
}

func TestInvoke_DryRunMakesNoCall(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeChat(w, "never")
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.DryRun = true
	cfg.Model.Credential = ""
	p := testPayload()
	p.Truncated = true

	n, err := NewInvoker().Invoke(context.Background(), p, cfg)
	require.NoError(t, err)
	require.True(t, n.Synthetic)
	require.Empty(t, n.Text)
	require.True(t, n.Truncated)
	require.Equal(t, cfg.Model.ID, n.Model)
	require.Zero(t, hits.Load())
}

func TestInvoke_OpenAIRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "openai/gpt-oss-120b", body.Model)
		require.Equal(t, 64, body.MaxTokens)
		require.InDelta(t, 0.7, body.Temperature, 1e-9)
		require.False(t, body.Stream)
		require.Equal(t, []chatMessage{{Role: "system", Content: "sys"}, {Role: "user", Content: "body"}}, body.Messages)
		writeChat(w, "# Docs")
	}))
	defer srv.Close()

	n, err := NewInvoker().Invoke(context.Background(), testPayload(), testConfig(srv.URL))
	require.NoError(t, err)
	require.Equal(t, "# Docs", n.Text)
	require.Equal(t, "served-model", n.Model)
	require.Equal(t, "openai", n.Provider)
	require.Equal(t, 11, n.InputTokens)
	require.Equal(t, 7, n.OutputTokens)
	require.Equal(t, 1, n.Attempts)
	require.False(t, n.Synthetic)
}

func TestInvoke_RateLimitedExhaustsCeiling(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	var delays []time.Duration
	_, err := NewInvoker(recordSleep(&delays)).Invoke(context.Background(), testPayload(), testConfig(srv.URL))

	var merr *Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, ErrRateLimited, merr.Kind)
	require.Equal(t, 3, merr.Attempts)
	require.Equal(t, int32(3), hits.Load())
	require.Equal(t, "slow down", merr.Detail)
	require.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, delays)
}

func TestInvoke_TransientThenSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeChat(w, "ok")
	}))
	defer srv.Close()

	var delays []time.Duration
	n, err := NewInvoker(recordSleep(&delays)).Invoke(context.Background(), testPayload(), testConfig(srv.URL))
	require.NoError(t, err)
	require.Equal(t, 2, n.Attempts)
	require.Equal(t, []time.Duration{time.Second}, delays)
}

func TestInvoke_PermanentFailuresAreNotRetried(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		kind    ErrorKind
	}{
		{"unauthorized", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) }, ErrAuthFailure},
		{"forbidden", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) }, ErrAuthFailure},
		{"bad request", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadRequest) }, ErrInvalidResponse},
		{"empty completion", func(w http.ResponseWriter, _ *http.Request) { writeChat(w, "  \n") }, ErrInvalidResponse},
		{"no choices", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"choices":[]}`)) }, ErrInvalidResponse},
		{"garbage", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`not json`)) }, ErrInvalidResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				tc.handler(w, r)
			}))
			defer srv.Close()

			_, err := NewInvoker(recordSleep(new([]time.Duration))).Invoke(context.Background(), testPayload(), testConfig(srv.URL))
			var merr *Error
			require.ErrorAs(t, err, &merr)
			require.Equal(t, tc.kind, merr.Kind)
			require.Equal(t, int32(1), hits.Load())
		})
	}
}

func TestInvoke_MissingCredential(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Model.Credential = ""
	_, err := NewInvoker().Invoke(context.Background(), testPayload(), cfg)
	var merr *Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, ErrAuthFailure, merr.Kind)
	require.Contains(t, merr.Error(), config.EnvPrimaryKey)
}

func TestInvoke_RequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Model.Timeout = 50 * time.Millisecond
	cfg.Model.Retry.MaxAttempts = 1

	_, err := NewInvoker().Invoke(context.Background(), testPayload(), cfg)
	var merr *Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, ErrTimeout, merr.Kind)
	require.Equal(t, 1, merr.Attempts)
}

func TestInvoke_CancelledContextIsTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := backendFunc(func(ctx context.Context, _ Request) (*Response, error) { return nil, ctx.Err() })
	_, err := NewInvoker(WithBackend(b)).Invoke(ctx, testPayload(), testConfig(""))
	var merr *Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, ErrTimeout, merr.Kind)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestInvoke_SleepInterrupted(t *testing.T) {
	b := backendFunc(func(context.Context, Request) (*Response, error) {
		return nil, &Error{Kind: ErrTransportFailure}
	})
	sleep := WithSleep(func(context.Context, time.Duration) error { return context.DeadlineExceeded })
	_, err := NewInvoker(WithBackend(b), sleep).Invoke(context.Background(), testPayload(), testConfig(""))
	var merr *Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, ErrTimeout, merr.Kind)
}

func TestInvoke_Anthropic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("x-api-key"))
		require.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		var body anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "sys", body.System)
		require.InDelta(t, 1.0, body.Temperature, 1e-9)
		_, _ = w.Write([]byte(`{"model":"claude","content":[{"type":"text","text":"Part one. "},{"type":"text","text":"Part two."}],"stop_reason":"end_turn","usage":{"input_tokens":5,"output_tokens":3}}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Model.Provider = config.ProviderAnthropic
	cfg.Model.Temperature = 1.5

	n, err := NewInvoker().Invoke(context.Background(), testPayload(), cfg)
	require.NoError(t, err)
	require.Equal(t, "Part one. Part two.", n.Text)
	require.Equal(t, "anthropic", n.Provider)
	require.Equal(t, 5, n.InputTokens)
}

func TestNewAnthropic_DefaultBaseURL(t *testing.T) {
	require.Equal(t, anthropicBaseURL, newAnthropic(config.DefaultBaseURL, "k", http.DefaultClient).baseURL)
	require.Equal(t, "http://proxy", newAnthropic("http://proxy/", "k", http.DefaultClient).baseURL)
}

type backendFunc func(context.Context, Request) (*Response, error)

func (f backendFunc) Name() string { return "stub" }
func (f backendFunc) Complete(ctx context.Context, r Request) (*Response, error) {
	return f(ctx, r)
}
