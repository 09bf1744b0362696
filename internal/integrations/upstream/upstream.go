// Package upstream holds the JSON-over-HTTPS plumbing shared by the outbound
// integrations.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	maxErrorBody    = 4096
	maxResponseBody = 1 << 20
	DefaultTimeout  = 10 * time.Second
)

var (
	// ErrMalformed marks a 2xx response whose body could not be decoded.
	ErrMalformed = errors.New("malformed response")
	// ErrMissingContent marks a decoded response without the expected text field.
	ErrMissingContent = errors.New("missing content")
)

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// PostJSON marshals payload, posts it to url with the given headers and
// returns the raw 2xx body.
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

// Reason reduces an integration error to a short diagnostic that carries no
// credentials, URLs or message content.
func Reason(err error) string {
	var statusErr *HTTPStatusError
	var netErr net.Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return fmt.Sprintf("status %d", statusErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, ErrMalformed):
		return ErrMalformed.Error()
	case errors.Is(err, ErrMissingContent):
		return ErrMissingContent.Error()
	default:
		return "transport error"
	}
}
