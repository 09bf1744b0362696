package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"site-assistant/internal/chain"
	"site-assistant/internal/domain"
	"site-assistant/internal/integrations/upstream"
	"site-assistant/pkg/log"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	openAIModel     = "gpt-4o-mini"
	openRouterModel = "deepseek/deepseek-chat-v3.1:free"
)

// chatMessage is the wire shape of a chat message.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the minimal request shape for the Chat Completions endpoint.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// chatResponse is the minimal response shape returned by the Chat Completions endpoint.
// Legacy completion-style providers put the text in choices[].text.
type chatResponse struct {
	Choices []struct {
		Index   int         `json:"index"`
		Message chatMessage `json:"message"`
		Text    string      `json:"text"`
	} `json:"choices"`
}

// Config fixes the model and sampling parameters of one provider instance.
type Config struct {
	Name         string
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  *float64
	MaxTokens    int
	ExtraHeaders map[string]string
	SystemPrompt string
}

// Client is a focused OpenAI-compatible chat completions adapter.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.cfg.BaseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a chat adapter. An empty APIKey yields an unconfigured
// adapter that the chain skips.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return nil, errors.New("openai: provider name must not be empty")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("openai: model must not be empty")
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	c := &Client{
		cfg: cfg,
		// No client timeout: the caller's context deadline bounds each call.
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewOpenAI returns the OpenAI instance of the chain.
func NewOpenAI(apiKey, systemPrompt string, opts ...Option) (*Client, error) {
	temperature := 0.7
	return NewClient(Config{
		Name:         "openai",
		APIKey:       apiKey,
		Model:        openAIModel,
		Temperature:  &temperature,
		MaxTokens:    800,
		SystemPrompt: systemPrompt,
	}, opts...)
}

// NewOpenRouter returns the OpenRouter instance of the chain.
func NewOpenRouter(apiKey, systemPrompt, referer, title string, opts ...Option) (*Client, error) {
	headers := map[string]string{}
	if referer != "" {
		headers["HTTP-Referer"] = referer
	}
	if title != "" {
		headers["X-Title"] = title
	}
	return NewClient(Config{
		Name:         "openrouter",
		APIKey:       apiKey,
		BaseURL:      openRouterBaseURL,
		Model:        openRouterModel,
		ExtraHeaders: headers,
		SystemPrompt: systemPrompt,
	}, opts...)
}

func (c *Client) Name() string { return c.cfg.Name }

func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// Attempt issues one chat completion and classifies the result.
func (c *Client) Attempt(ctx context.Context, conv domain.Conversation) chain.Outcome {
	start := time.Now()
	text, err := c.Chat(ctx, conv)
	if err != nil {
		reason := upstream.Reason(err)
		log.FromCtx(ctx).Warn().
			Str("provider", c.cfg.Name).
			Str("reason", reason).
			Dur("elapsed", time.Since(start)).
			Msg("provider unavailable")
		return chain.Unavailable(reason)
	}
	return chain.Success(text)
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

// Chat returns the first choice's text for conv.
func (c *Client) Chat(ctx context.Context, conv domain.Conversation) (string, error) {
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	for k, v := range c.cfg.ExtraHeaders {
		headers[k] = v
	}

	raw, err := upstream.PostJSON(ctx, c.httpClient, chatURL(c.cfg.BaseURL), headers, chatRequest{
		Model:       c.cfg.Model,
		Messages:    toWireMessages(c.cfg.SystemPrompt, conv),
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}

	var payload chatResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("openai: decode response: %w: %w", upstream.ErrMalformed, decErr)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response: %w", upstream.ErrMissingContent)
	}
	choice := payload.Choices[0]
	text := choice.Message.Content
	if text == "" {
		text = choice.Text
	}
	if text == "" {
		return "", fmt.Errorf("openai: choice has no content: %w", upstream.ErrMissingContent)
	}
	return strings.TrimSpace(text), nil
}

func toWireMessages(systemPrompt string, conv domain.Conversation) []chatMessage {
	out := make([]chatMessage, 0, len(conv)+1)
	if systemPrompt != "" {
		out = append(out, chatMessage{Role: "system", Content: systemPrompt})
	}
	for _, m := range conv {
		out = append(out, chatMessage{Role: wireRole(m.Role), Content: m.Content})
	}
	return out
}

func wireRole(r domain.Role) string {
	if r == domain.RoleUser {
		return "user"
	}
	return "assistant"
}
