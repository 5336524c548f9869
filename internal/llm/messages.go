package llm

import "github.com/varsilias/stockscope/pkg/types"

// NormalizeMessages enforces the single-leading-system-message shape
// the upstream expects: the first system entry (wherever it sits) is
// moved to the head and every other system entry is dropped. Callers
// with multiple system directives must merge them before appending.
func NormalizeMessages(msgs []types.Message) []types.Message {
	var system *types.Message
	rest := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == types.RoleSystem {
			if system == nil {
				sys := m
				system = &sys
			}
			continue
		}
		rest = append(rest, m)
	}
	if system == nil {
		return rest
	}
	return append([]types.Message{*system}, rest...)
}
