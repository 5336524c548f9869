// Package relay bridges one upstream chat-completion stream to one
// downstream SSE connection. It preserves frame order, converts every
// upstream failure into a single error frame, and guarantees the
// downstream sees exactly one terminal signal.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/varsilias/stockscope/internal/llm"
	"github.com/varsilias/stockscope/internal/markdown"
	"github.com/varsilias/stockscope/internal/sse"
)

// Result reports how a relay ended. Text is only meaningful when
// Completed is true; an aborted or failed stream is discarded.
type Result struct {
	Text      string
	Completed bool
}

type Relay struct {
	log         *slog.Logger
	client      *llm.Client
	registry    *Registry
	idleTimeout time.Duration
}

func New(log *slog.Logger, client *llm.Client, registry *Registry, idleTimeout time.Duration) *Relay {
	return &Relay{log: log, client: client, registry: registry, idleTimeout: idleTimeout}
}

// Stream opens the upstream request and forwards its deltas to w as
// SSE frames until the terminal sentinel, an error, or cancellation.
// Starting a stream supersedes any live stream on the same session:
// the old upstream connection is aborted before the new request is
// issued.
func (r *Relay) Stream(ctx context.Context, w http.ResponseWriter, sessionID, endpoint, apiKey string, req llm.Request) Result {
	cctx, state, finish := r.registry.begin(ctx, sessionID)
	defer finish()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, _ := w.(http.Flusher)

	res, err := r.client.Stream(cctx, endpoint, apiKey, req)
	if err != nil {
		if cctx.Err() != nil {
			// Aborted before the upstream answered; downstream is gone
			// or superseded, nothing to write.
			return Result{}
		}
		r.log.Warn("upstream connect failed", "session", sessionID, "err", err)
		r.terminate(w, flusher, fmt.Sprintf("network error: %v", err))
		return Result{}
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		r.log.Warn("upstream error status", "session", sessionID, "status", res.StatusCode)
		r.terminate(w, flusher, fmt.Sprintf("API error: %d - %s", res.StatusCode, body))
		return Result{}
	}

	events := make(chan sse.Event)
	readErr := make(chan error, 1)
	go readUpstream(cctx, res.Body, events, readErr)

	var (
		full    string
		sawDone bool
		timer   *time.Timer
		timeout <-chan time.Time
	)
	if r.idleTimeout > 0 {
		timer = time.NewTimer(r.idleTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
forward:
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				break forward
			}
			if ev.Done {
				sawDone = true
				break forward
			}
			full += ev.Text
			state.set(full, markdown.Render(full))
			writeFrame(w, flusher, ev.Data)
			if timer != nil {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(r.idleTimeout)
			}
		case <-timeout:
			r.log.Warn("upstream stalled", "session", sessionID, "idle", r.idleTimeout)
			r.terminate(w, flusher, "network error: upstream stream stalled")
			return Result{}
		}
	}

	if !sawDone {
		if err := <-readErr; err != nil {
			if cctx.Err() != nil {
				// Client disconnect or supersession: partial text is
				// discarded, downstream gets no further writes.
				return Result{}
			}
			r.log.Warn("upstream read failed", "session", sessionID, "err", err)
			r.terminate(w, flusher, fmt.Sprintf("network error: %v", err))
			return Result{}
		}
		// Upstream ended cleanly without the sentinel; treat the
		// stream as complete, as the proxy contract promises the
		// client a terminal frame either way.
	}

	writeDone(w, flusher)
	return Result{Text: full, Completed: true}
}

// readUpstream owns the upstream read loop: it feeds raw chunks to the
// decoder and pushes events out in decode order. It always sends one
// value on readErr (nil on clean end) before closing events.
func readUpstream(ctx context.Context, body io.Reader, events chan<- sse.Event, readErr chan<- error) {
	dec := sse.NewDecoder()
	buf := make([]byte, 4096)
	var result error
	for {
		n, err := body.Read(buf)
		if n > 0 {
			for _, ev := range dec.Feed(buf[:n]) {
				select {
				case events <- ev:
				case <-ctx.Done():
					readErr <- ctx.Err()
					close(events)
					return
				}
			}
		}
		if dec.Done() {
			break
		}
		if err != nil {
			if err != io.EOF {
				result = err
			}
			break
		}
	}
	readErr <- result
	close(events)
}

func writeFrame(w io.Writer, flusher http.Flusher, payload string) {
	fmt.Fprintf(w, "data: %s\n\n", payload)
	if flusher != nil {
		flusher.Flush()
	}
}

func writeDone(w io.Writer, flusher http.Flusher) {
	writeFrame(w, flusher, "[DONE]")
}

// terminate writes one error frame followed by the terminal frame, the
// only shape in which relay-detected failures reach the client.
func (r *Relay) terminate(w io.Writer, flusher http.Flusher, msg string) {
	payload, _ := json.Marshal(map[string]string{"error": msg})
	writeFrame(w, flusher, string(payload))
	writeDone(w, flusher)
}
