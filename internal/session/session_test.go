package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/varsilias/stockscope/pkg/types"
)

func TestSessionAppendOrder(t *testing.T) {
	s := NewStore().Get("s1")
	s.Append(types.RoleSystem, "sys")
	s.Append(types.RoleUser, "hi")
	s.Append(types.RoleAssistant, "hello")

	msgs := s.Messages()
	assert.Equal(t, []types.Message{
		{Role: types.RoleSystem, Content: "sys"},
		{Role: types.RoleUser, Content: "hi"},
		{Role: types.RoleAssistant, Content: "hello"},
	}, msgs)
}

func TestSessionResetClearsLogAndTicker(t *testing.T) {
	s := NewStore().Get("s1")
	s.Reset("SH600519")
	s.Append(types.RoleUser, "analyze")
	assert.Equal(t, "SH600519", s.Ticker())
	assert.Equal(t, 1, s.Len())

	s.Reset("HK00700")
	assert.Equal(t, "HK00700", s.Ticker())
	assert.Zero(t, s.Len())
}

func TestSessionMessagesIsACopy(t *testing.T) {
	s := NewStore().Get("s1")
	s.Append(types.RoleUser, "one")
	msgs := s.Messages()
	msgs[0].Content = "mutated"
	assert.Equal(t, "one", s.Messages()[0].Content)
}

func TestStoreReturnsSameSession(t *testing.T) {
	store := NewStore()
	a := store.Get("x")
	b := store.Get("x")
	assert.Same(t, a, b)
	assert.NotSame(t, a, store.Get("y"))
	assert.Equal(t, "x", a.ID())
}
