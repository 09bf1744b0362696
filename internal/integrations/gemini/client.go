package gemini

import (
	"context"
	"encoding/json"
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
	providerName   = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-pro-latest"
	blockThreshold = "BLOCK_MEDIUM_AND_ABOVE"
)

var harmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
	SafetySettings    []safetySetting  `json:"safetySettings"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	systemPrompt string
	httpClient   *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates the Gemini adapter. An empty apiKey yields an unconfigured
// adapter.
func NewClient(apiKey, systemPrompt string, opts ...Option) *Client {
	c := &Client{
		apiKey:       strings.TrimSpace(apiKey),
		baseURL:      defaultBaseURL,
		model:        defaultModel,
		systemPrompt: systemPrompt,
		// No client timeout: the caller's context deadline bounds each call.
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return providerName }

func (c *Client) Configured() bool { return c.apiKey != "" }

// Attempt issues one generateContent call and classifies the result.
func (c *Client) Attempt(ctx context.Context, conv domain.Conversation) chain.Outcome {
	start := time.Now()
	text, err := c.Generate(ctx, conv)
	if err != nil {
		reason := upstream.Reason(err)
		log.FromCtx(ctx).Warn().
			Str("provider", providerName).
			Str("reason", reason).
			Dur("elapsed", time.Since(start)).
			Msg("provider unavailable")
		return chain.Unavailable(reason)
	}
	return chain.Success(text)
}

func generateURL(baseURL, model string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return fmt.Sprintf("%s/models/%s:generateContent", base, model)
}

// Generate returns the first candidate's text for conv.
func (c *Client) Generate(ctx context.Context, conv domain.Conversation) (string, error) {
	raw, err := upstream.PostJSON(ctx, c.httpClient, generateURL(c.baseURL, c.model),
		map[string]string{"x-goog-api-key": c.apiKey},
		c.buildRequest(conv),
	)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}

	var payload generateResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("gemini: decode response: %w: %w", upstream.ErrMalformed, decErr)
	}
	if len(payload.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates in response: %w", upstream.ErrMissingContent)
	}
	var b strings.Builder
	for _, p := range payload.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini: candidate has no text parts: %w", upstream.ErrMissingContent)
	}
	return strings.TrimSpace(b.String()), nil
}

func (c *Client) buildRequest(conv domain.Conversation) generateRequest {
	req := generateRequest{
		Contents: make([]content, 0, len(conv)),
		GenerationConfig: generationConfig{
			Temperature:     0.9,
			TopK:            1,
			TopP:            1,
			MaxOutputTokens: 2048,
		},
		SafetySettings: make([]safetySetting, 0, len(harmCategories)),
	}
	if c.systemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: c.systemPrompt}}}
	}
	for _, m := range conv {
		req.Contents = append(req.Contents, content{
			Role:  wireRole(m.Role),
			Parts: []part{{Text: m.Content}},
		})
	}
	for _, category := range harmCategories {
		req.SafetySettings = append(req.SafetySettings, safetySetting{Category: category, Threshold: blockThreshold})
	}
	return req
}

func wireRole(r domain.Role) string {
	if r == domain.RoleUser {
		return "user"
	}
	return "model"
}
