package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrConversationNotFound is returned when a conversation id is unknown
var ErrConversationNotFound = errors.New("conversation not found")

// Role is the author of a chat message. The set is closed: the completion
// capability accepts exactly these three roles.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single turn in a conversation. Messages are immutable once
// appended; insertion order is conversational order.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"` // RFC 3339, UTC
}

// NewMessage is the only way messages should be built: it enforces the
// closed role set and stamps the message with the current UTC time.
func NewMessage(role Role, content string) (Message, error) {
	if !role.Valid() {
		return Message{}, fmt.Errorf("invalid role %q", role)
	}
	if content == "" {
		return Message{}, errors.New("empty message content")
	}
	return Message{Role: role, Content: content, Timestamp: time.Now().UTC().Format(time.RFC3339)}, nil
}

// ConversationInfo is the diagnostic listing entry for a known conversation.
type ConversationInfo struct {
	ID           string `json:"id"`
	MessageCount int    `json:"message_count"`
	FirstUserAt  string `json:"first_user_at,omitempty"`
}
