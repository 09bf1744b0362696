package domain

import "strings"

// Role is the canonical speaker of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape used by the handler
// and LLM integrations.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is a chronological, non-empty sequence of messages. The last
// message is the turn to answer.
type Conversation []ChatMessage

// RoleFromSender maps a client sender tag onto the canonical role pair.
// Anything other than "user" is treated as the assistant.
func RoleFromSender(sender string) Role {
	if strings.EqualFold(strings.TrimSpace(sender), string(RoleUser)) {
		return RoleUser
	}
	return RoleAssistant
}

// Tail returns the most recent message, or false for an empty conversation.
func (c Conversation) Tail() (ChatMessage, bool) {
	if len(c) == 0 {
		return ChatMessage{}, false
	}
	return c[len(c)-1], true
}
