package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varsilias/stockscope/pkg/types"
)

func TestStreamRequestShape(t *testing.T) {
	var (
		gotAuth   string
		gotAccept string
		gotBody   Request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)))
	res, err := c.Stream(context.Background(), srv.URL, "secret", Request{
		Model:       "gpt-x",
		Messages:    []types.Message{{Role: types.RoleUser, Content: "hi"}},
		Temperature: 0.7,
		MaxTokens:   128,
	})
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "text/event-stream", gotAccept)
	assert.Equal(t, "gpt-x", gotBody.Model)
	assert.True(t, gotBody.Stream, "stream flag is always forced on")
	assert.Equal(t, 128, gotBody.MaxTokens)
}

func TestStreamReturnsErrorStatusResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, "invalid key")
	}))
	defer srv.Close()

	c := NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)))
	res, err := c.Stream(context.Background(), srv.URL, "bad", Request{Model: "m"})
	require.NoError(t, err, "an HTTP error status is a response, not a transport error")
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
