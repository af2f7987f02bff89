package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/payamancoders/trustcheck/internal/credibility"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "openai/gpt-4o-mini"
)

// OpenRouterCompleter calls an OpenAI-compatible chat completions endpoint.
type OpenRouterCompleter struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

var _ credibility.Completer = (*OpenRouterCompleter)(nil)

// NewOpenRouterCompleter constructs the completer. The analyzer owns the deadline,
// the client timeout only guards against a missing one.
func NewOpenRouterCompleter(client *http.Client, baseURL, apiKey, model string) *OpenRouterCompleter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = defaultOpenRouterModel
	}
	return &OpenRouterCompleter{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

// Complete posts the conversation and returns the decoded response body untouched.
func (c *OpenRouterCompleter) Complete(ctx context.Context, msgs []credibility.Message) (credibility.Reply, error) {
	payload := chatRequest{
		Model:          c.model,
		Messages:       make([]chatMessage, 0, len(msgs)),
		Temperature:    0.2,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	for _, m := range msgs {
		payload.Messages = append(payload.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chat completion failed: status=%d", resp.StatusCode)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		// some gateways answer with plain text
		return credibility.RawString(raw), nil
	}
	return credibility.StructuredObject(obj), nil
}
