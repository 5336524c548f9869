// Package session holds the per-conversation message log and the
// ticker it is bound to.
package session

import (
	"sync"

	"github.com/varsilias/stockscope/pkg/types"
)

// Session is an append-only conversation log. The log only shrinks via
// Reset, which also clears the bound ticker in the same critical
// section so callers never observe one without the other.
type Session struct {
	mu     sync.Mutex
	id     string
	ticker string
	msgs   []types.Message
}

func (s *Session) ID() string { return s.id }

func (s *Session) Append(role types.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, types.Message{Role: role, Content: content})
}

// Reset clears the log and binds the session to a new ticker (which
// may be empty for a plain chat session).
func (s *Session) Reset(ticker string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = nil
	s.ticker = ticker
}

func (s *Session) Ticker() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticker
}

// Messages returns a copy of the full ordered log, ready to be used as
// the upstream request payload.
func (s *Session) Messages() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

// Store hands out sessions by id, creating them on first use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess = &Session{id: id}
	s.sessions[id] = sess
	return sess
}
