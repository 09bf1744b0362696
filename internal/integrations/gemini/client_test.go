package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"site-assistant/internal/domain"
	"site-assistant/internal/integrations/upstream"
)

func testConversation() domain.Conversation {
	return domain.Conversation{
		{Role: domain.RoleAssistant, Content: "Hello!"},
		{Role: domain.RoleUser, Content: "what do you build?"},
	}
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient("g-key", "You are a bot.",
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	)
}

func TestGenerateURL(t *testing.T) {
	require.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-pro-latest:generateContent",
		generateURL("", defaultModel))
	require.Equal(t, "http://x/models/m:generateContent", generateURL("http://x/", "m"))
}

func TestConfigured(t *testing.T) {
	require.Zero(t, NewClient("k", "").httpClient.Timeout)
	require.False(t, NewClient("", "").Configured())
	require.True(t, NewClient("k", "").Configured())
	require.Equal(t, "gemini", NewClient("k", "").Name())
}

func TestGenerate_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/gemini-1.5-pro-latest:generateContent", r.URL.Path)
		require.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req generateRequest
		require.NoError(t, json.Unmarshal(raw, &req))
		require.NotNil(t, req.SystemInstruction)
		require.Equal(t, "You are a bot.", req.SystemInstruction.Parts[0].Text)
		require.Len(t, req.Contents, 2)
		require.Equal(t, "model", req.Contents[0].Role)
		require.Equal(t, "user", req.Contents[1].Role)
		require.Equal(t, "what do you build?", req.Contents[1].Parts[0].Text)
		require.Equal(t, 2048, req.GenerationConfig.MaxOutputTokens)
		require.Len(t, req.SafetySettings, 4)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"We build "},{"text":"3D sites. "}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	text, ok := newTestClient(srv).Attempt(context.Background(), testConversation()).Text()
	require.True(t, ok)
	require.Equal(t, "We build 3D sites.", text)
}

func TestAttempt_Classification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{name: "forbidden", status: 403, body: `{"error":{"code":403}}`, reason: "status 403"},
		{name: "malformed", status: 200, body: `<html>`, reason: "malformed response"},
		{name: "no candidates", status: 200, body: `{"candidates":[]}`, reason: "missing content"},
		{name: "blocked candidate", status: 200, body: `{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`, reason: "missing content"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			out := newTestClient(srv).Attempt(context.Background(), testConversation())
			_, ok := out.Text()
			require.False(t, ok)
			require.Equal(t, tc.reason, out.Reason())
		})
	}
}

func TestGenerate_NoTextPartsWrapsMissingContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":""}]}}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Generate(context.Background(), testConversation())
	require.ErrorIs(t, err, upstream.ErrMissingContent)
	require.Contains(t, err.Error(), "gemini: candidate has no text parts")
}
