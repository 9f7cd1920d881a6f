package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"git.home.luguber.info/inful/docweave/internal/config"
)

// Request is one completion request.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Response is a backend's completion.
type Response struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   string
}

// Backend sends a single completion request. Failures are *Error values.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}

// NewBackend returns the backend for the configured provider.
func NewBackend(mc config.ModelConfig, client *http.Client) (Backend, error) {
	if client == nil {
		client = http.DefaultClient
	}
	switch mc.Provider {
	case config.ProviderOpenAI:
		return newOpenAI(mc.BaseURL, mc.Credential, client), nil
	case config.ProviderAnthropic:
		return newAnthropic(mc.BaseURL, mc.Credential, client), nil
	default:
		return nil, fmt.Errorf("unsupported model provider %q", mc.Provider)
	}
}

// maxResponseBytes bounds the body read from a backend.
const maxResponseBytes = 16 << 20

// postJSON sends body to url and decodes a 2xx response into out. Non-2xx
// responses become status errors carrying errMessage's view of the body.
func postJSON(ctx context.Context, client *http.Client, provider, url string, header http.Header, body, out any, errMessage func([]byte) string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &Error{Kind: ErrTransportFailure, Provider: provider, Detail: "create request", Err: err}
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return transportError(ctx, provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportError(ctx, provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(provider, resp.StatusCode, resp.Header, errMessage(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: ErrInvalidResponse, Provider: provider, Status: resp.StatusCode, Detail: "decode response", Err: err}
	}
	return nil
}
