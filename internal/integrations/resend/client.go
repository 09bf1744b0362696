package resend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"site-assistant/internal/domain"
	"site-assistant/internal/integrations/upstream"
)

const defaultBaseURL = "https://api.resend.com"

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Client sends inquiry notifications through the Resend emails API.
type Client struct {
	apiKey     string
	from       string
	to         []string
	baseURL    string
	httpClient *http.Client
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

func NewClient(apiKey, from string, to []string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("resend: api key must not be empty")
	}
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("resend: sender must not be empty")
	}
	if len(to) == 0 {
		return nil, errors.New("resend: at least one recipient is required")
	}
	c := &Client{
		apiKey:     apiKey,
		from:       from,
		to:         to,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: upstream.DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NotifyInquiry emails the inquiry to the configured recipients and returns
// the provider message id.
func (c *Client) NotifyInquiry(ctx context.Context, in domain.Inquiry) (string, error) {
	url := strings.TrimRight(c.baseURL, "/") + "/emails"
	raw, err := upstream.PostJSON(ctx, c.httpClient, url,
		map[string]string{"Authorization": "Bearer " + c.apiKey},
		sendRequest{
			From:    c.from,
			To:      c.to,
			Subject: "New Quote Request from " + in.Name,
			Text:    inquiryText(in),
			ReplyTo: in.Email,
		},
	)
	if err != nil {
		return "", fmt.Errorf("resend: send email: %w", err)
	}

	var out sendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("resend: decode response: %w", err)
	}
	return out.ID, nil
}

func inquiryText(in domain.Inquiry) string {
	lines := []string{
		"You've received a new quote request from your website.",
		"",
		"From: " + in.Name,
		"Email: " + in.Email,
	}
	if in.Company != "" {
		lines = append(lines, "Company: "+in.Company)
	}
	if in.Budget != "" {
		lines = append(lines, "Budget: "+in.Budget)
	}
	if in.Message != "" {
		lines = append(lines, "Message:", in.Message)
	}
	return strings.Join(lines, "\n")
}
