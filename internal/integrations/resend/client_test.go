package resend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"site-assistant/internal/domain"
)

func testInquiry() domain.Inquiry {
	return domain.Inquiry{
		ID:      "lead-1",
		Name:    "Ada",
		Email:   "ada@example.com",
		Company: "Analytical",
		Message: "Need a 3D site.",
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("", "from@x", []string{"to@x"})
	require.Error(t, err)
	_, err = NewClient("k", " ", []string{"to@x"})
	require.Error(t, err)
	_, err = NewClient("k", "from@x", nil)
	require.Error(t, err)
}

func TestNotifyInquiry_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer re-key", r.Header.Get("Authorization"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req sendRequest
		require.NoError(t, json.Unmarshal(raw, &req))
		require.Equal(t, "Site <from@x>", req.From)
		require.Equal(t, []string{"leads@x"}, req.To)
		require.Equal(t, "New Quote Request from Ada", req.Subject)
		require.Equal(t, "ada@example.com", req.ReplyTo)
		require.Contains(t, req.Text, "Company: Analytical")
		require.Contains(t, req.Text, "Need a 3D site.")
		require.NotContains(t, req.Text, "Budget:")

		_, _ = w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer srv.Close()

	c, err := NewClient("re-key", "Site <from@x>", []string{"leads@x"}, WithBaseURL(srv.URL))
	require.NoError(t, err)
	id, err := c.NotifyInquiry(context.Background(), testInquiry())
	require.NoError(t, err)
	require.Equal(t, "msg-1", id)
}

func TestNotifyInquiry_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	c, err := NewClient("re-key", "from@x", []string{"leads@x"}, WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = c.NotifyInquiry(context.Background(), testInquiry())
	require.Error(t, err)
	require.Contains(t, err.Error(), "422")
}
