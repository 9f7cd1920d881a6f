package model

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/docweave/internal/config"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
)

// anthropic talks to the Anthropic Messages API.
type anthropic struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newAnthropic(baseURL, apiKey string, client *http.Client) *anthropic {
	// The built-in base URL points at the OpenAI-compatible gateway.
	if baseURL == "" || baseURL == config.DefaultBaseURL {
		baseURL = anthropicBaseURL
	}
	return &anthropic{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (a *anthropic) Name() string { return "anthropic" }

func (a *anthropic) Complete(ctx context.Context, req Request) (*Response, error) {
	// The Messages API accepts temperatures in [0,1].
	temp := req.Temperature
	if temp > 1 {
		temp = 1
	}
	body := anthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		System:      req.System,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
		Temperature: temp,
	}
	header := http.Header{}
	header.Set("x-api-key", a.apiKey)
	header.Set("anthropic-version", anthropicVersion)

	var out anthropicResponse
	if err := postJSON(ctx, a.client, a.Name(), a.baseURL+"/messages", header, body, &out, anthropicErrorMessage); err != nil {
		return nil, err
	}
	var text strings.Builder
	for _, c := range out.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return &Response{
		Text:         text.String(),
		Model:        out.Model,
		InputTokens:  out.Usage.InputTokens,
		OutputTokens: out.Usage.OutputTokens,
		StopReason:   out.StopReason,
	}, nil
}

func anthropicErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}
