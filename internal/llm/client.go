// Package llm issues streamed chat-completion requests to a
// caller-supplied OpenAI-compatible endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/varsilias/stockscope/pkg/types"
)

// Request is the chat-completions body. Stream is always set by the
// client; callers fill the rest.
type Request struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	Stream      bool            `json:"stream"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type Client struct {
	log  *slog.Logger
	http *http.Client
}

func NewClient(log *slog.Logger) *Client {
	return &Client{
		log: log,
		// No overall timeout: the response body is a long-lived
		// stream. Cancellation comes from the request context, header
		// arrival is bounded below.
		http: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 60 * time.Second,
			},
		},
	}
}

// Stream POSTs the request to endpoint with the bearer key and returns
// the raw response. The caller owns the body and must inspect the
// status: an upstream failure still returns a response, not an error.
// A non-nil error means the request never produced a response.
func (c *Client) Stream(ctx context.Context, endpoint, apiKey string, req Request) (*http.Response, error) {
	req.Stream = true
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	c.log.Debug("upstream request", "endpoint", endpoint, "model", req.Model, "messages", len(req.Messages))
	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	return res, nil
}
