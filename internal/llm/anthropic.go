package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	// DefaultModel is used when config leaves llm.model empty.
	DefaultModel = "claude-sonnet-4-6"
)

// Request is one completion call. System carries the role instructions,
// Prompt the user turn.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Generator produces a completion for a request. The pipeline depends on
// this, not on the concrete client, so tests can stub it.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Client talks to the Anthropic Messages API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	hc      *http.Client
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		hc:      &http.Client{Timeout: 120 * time.Second},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("anthropic api key is required")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("anthropic build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	res, err := c.hc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("anthropic read response: %w", err)
	}

	var out messagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("anthropic decode response (status %d): %w", res.StatusCode, err)
	}

	if res.StatusCode >= 400 {
		if out.Error != nil {
			return "", fmt.Errorf("anthropic: %s (%s)", out.Error.Message, out.Error.Type)
		}
		return "", fmt.Errorf("anthropic status %d", res.StatusCode)
	}

	var parts []string
	for _, c := range out.Content {
		if c.Type == "text" && c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return "", errors.New("anthropic: empty completion")
	}
	return text, nil
}
