package types

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation. Ordering is array-index order
// within a session; there is no timestamp key.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
