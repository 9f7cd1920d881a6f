package model

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// openAI talks to an OpenAI-compatible chat completions endpoint (OpenAI,
// NVIDIA NIM, vLLM and similar gateways).
type openAI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newOpenAI(baseURL, apiKey string, client *http.Client) *openAI {
	return &openAI{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (o *openAI) Name() string { return "openai" }

func (o *openAI) Complete(ctx context.Context, req Request) (*Response, error) {
	body := chatRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})

	header := http.Header{}
	header.Set("Authorization", "Bearer "+o.apiKey)

	var out chatResponse
	if err := postJSON(ctx, o.client, o.Name(), o.baseURL+"/chat/completions", header, body, &out, openAIErrorMessage); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, &Error{Kind: ErrInvalidResponse, Provider: o.Name(), Detail: "no choices in completion"}
	}
	choice := out.Choices[0]
	return &Response{
		Text:         choice.Message.Content,
		Model:        out.Model,
		InputTokens:  out.Usage.PromptTokens,
		OutputTokens: out.Usage.CompletionTokens,
		StopReason:   choice.FinishReason,
	}, nil
}

func openAIErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}
