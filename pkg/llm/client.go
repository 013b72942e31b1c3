// Package llm talks to OpenAI-compatible chat completion APIs.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/openinterpreter/oi/pkg/httpclient"
	"github.com/openinterpreter/oi/pkg/interpreter"
)

const (
	DefaultAPIBase = "https://api.openai.com/v1"
	EnvAPIKey      = "OPENAI_API_KEY"
	EnvAPIBase     = "OPENAI_API_BASE"
)

// ErrEmptyResponse is returned when the API answers without a choice.
var ErrEmptyResponse = errors.New("language model returned no choices")

// Completer produces the assistant's reply to a conversation.
type Completer interface {
	Complete(ctx context.Context, systemMessage string, messages []interpreter.Message) (string, error)
}

// Client is a Completer for OpenAI-compatible endpoints.
type Client struct {
	http     *httpclient.Client
	settings interpreter.LLM
}

// New creates a Client from the language model settings. API base and key
// fall back to OPENAI_API_BASE and OPENAI_API_KEY.
func New(settings interpreter.LLM, opts ...httpclient.Option) *Client {
	if settings.APIBase == "" {
		settings.APIBase = os.Getenv(EnvAPIBase)
	}
	if settings.APIBase == "" {
		settings.APIBase = DefaultAPIBase
	}
	if settings.APIKey == "" {
		settings.APIKey = os.Getenv(EnvAPIKey)
	}

	opts = append([]httpclient.Option{httpclient.WithHeaderParser(httpclient.ParseOpenAIHeaders)}, opts...)
	return &Client{
		http:     httpclient.New(opts...),
		settings: settings,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the conversation and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, systemMessage string, messages []interpreter.Message) (string, error) {
	req := chatRequest{
		Model:       ModelName(c.settings.Model),
		Temperature: c.settings.Temperature,
		MaxTokens:   c.settings.MaxTokens,
	}
	if systemMessage != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: systemMessage})
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint, err := c.endpoint()
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.settings.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.settings.APIKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}

func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(strings.TrimRight(c.settings.APIBase, "/") + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("invalid api_base %q: %w", c.settings.APIBase, err)
	}
	if c.settings.APIVersion != "" {
		q := u.Query()
		q.Set("api-version", c.settings.APIVersion)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// ModelName strips a provider prefix such as "openai/" from a model identifier.
func ModelName(model string) string {
	if _, name, ok := strings.Cut(model, "/"); ok {
		return name
	}
	return model
}

// HostedByOpenAI reports whether model is served by OpenAI itself.
func HostedByOpenAI(model string) bool {
	return !strings.Contains(model, "/") && strings.HasPrefix(model, "gpt-")
}
