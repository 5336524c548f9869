package relay

import (
	"context"
	"sync"
)

// State is a point-in-time view of one session's live stream, used to
// repaint a client that reconnects mid-analysis.
type State struct {
	Active  bool   `json:"active"`
	Content string `json:"content"`
	HTML    string `json:"html"`
}

// streamState is owned by exactly one relay for the lifetime of one
// logical request.
type streamState struct {
	mu      sync.Mutex
	content string
	html    string
	active  bool
}

func (s *streamState) set(content, html string) {
	s.mu.Lock()
	s.content = content
	s.html = html
	s.mu.Unlock()
}

func (s *streamState) snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Active: s.active, Content: s.content, HTML: s.html}
}

type slot struct {
	cancel context.CancelFunc
	done   chan struct{}
	state  *streamState
}

// Registry admits at most one live relay per session. Beginning a new
// relay aborts the previous one and waits for it to wind down before
// the caller may touch the upstream, so two relays can never interleave
// writes on the same session.
type Registry struct {
	mu     sync.Mutex
	active map[string]*slot
}

func NewRegistry() *Registry {
	return &Registry{active: make(map[string]*slot)}
}

// begin registers a relay for sessionID, superseding any live one. The
// returned context is canceled when the client goes away or a newer
// relay takes over; finish must be called exactly once when the relay
// is done.
func (r *Registry) begin(ctx context.Context, sessionID string) (context.Context, *streamState, func()) {
	cctx, cancel := context.WithCancel(ctx)
	s := &slot{
		cancel: cancel,
		done:   make(chan struct{}),
		state:  &streamState{active: true},
	}

	// Swap in and take the predecessor in one critical section, so
	// concurrent begins for the same session always see each other.
	r.mu.Lock()
	old := r.active[sessionID]
	r.active[sessionID] = s
	r.mu.Unlock()

	if old != nil {
		old.cancel()
		<-old.done
	}

	var once sync.Once
	finish := func() {
		once.Do(func() {
			cancel()
			r.mu.Lock()
			if r.active[sessionID] == s {
				delete(r.active, sessionID)
			}
			r.mu.Unlock()
			s.state.mu.Lock()
			s.state.active = false
			s.state.mu.Unlock()
			close(s.done)
		})
	}
	return cctx, s.state, finish
}

// Snapshot returns the live stream state for a session, if any.
func (r *Registry) Snapshot(sessionID string) (State, bool) {
	r.mu.Lock()
	s, ok := r.active[sessionID]
	r.mu.Unlock()
	if !ok {
		return State{}, false
	}
	return s.state.snapshot(), true
}
