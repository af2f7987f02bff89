package credibility

import "context"

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a completion request.
type Message struct {
	Role    Role
	Content string
}

// Reply is what a completion backend returns: either RawString or StructuredObject.
type Reply interface {
	isReply()
}

// RawString is a plain text completion, possibly prose- or fence-wrapped JSON.
type RawString string

func (RawString) isReply() {}

// StructuredObject is a decoded JSON body that carries the completion text somewhere inside it,
// or is itself the verdict object.
type StructuredObject map[string]any

func (StructuredObject) isReply() {}

// Completer sends a message list to a text-completion service.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (Reply, error)
}
