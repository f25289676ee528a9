// Package llm is a minimal client for OpenAI-compatible chat-completions
// APIs, including tool calling. Both the conversation loop and the remote
// tool selector are built on it.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"codeassist/internal/config"
)

// Client talks to one chat-completions endpoint. Safe for concurrent use.
type Client struct {
	cfg        config.LLMConfig
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an LLM client from the configured backend settings.
// The API key may be empty for local backends that do not authenticate.
func NewClient(cfg config.LLMConfig, apiKey string) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("llm api_url cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model cannot be empty")
	}

	return &Client{
		cfg:    cfg,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// ChatCompletion sends the conversation and returns the completion.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message) (*ChatResponse, error) {
	return c.complete(ctx, messages, nil)
}

// ChatCompletionWithTools sends the conversation along with tool definitions
// the model may choose to call.
func (c *Client) ChatCompletionWithTools(ctx context.Context, messages []Message, tools []ToolDefinition) (*ChatResponse, error) {
	return c.complete(ctx, messages, tools)
}

func (c *Client) complete(ctx context.Context, messages []Message, tools []ToolDefinition) (*ChatResponse, error) {
	request := ChatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Tools:       tools,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.cfg.APIURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var chatResponse ChatResponse
	if err := json.Unmarshal(body, &chatResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResponse.Error != nil && chatResponse.Error.Message != "" {
		return &chatResponse, chatResponse.Error
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &chatResponse, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if len(chatResponse.Choices) == 0 {
		return &chatResponse, fmt.Errorf("no choices in response")
	}

	return &chatResponse, nil
}
