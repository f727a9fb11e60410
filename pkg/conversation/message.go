package conversation

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the three transcript roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleAssistant, RoleUser:
		return true
	}
	return false
}

// Message is a single role-tagged transcript entry. Annotations are notes the
// tool itself wrote into the transcript; they are shown and exported but never
// sent to the model.
type Message struct {
	Role       Role   `json:"role" yaml:"role"`
	Content    string `json:"content" yaml:"content"`
	Annotation bool   `json:"annotation,omitempty" yaml:"annotation,omitempty"`
}

func NewChatMessage(role Role, content string) *Message {
	return &Message{
		Role:    role,
		Content: content,
	}
}

func (m *Message) String() string {
	return m.Content
}

func (m *Message) View() string {
	return fmt.Sprintf("[%s]: %s", m.Role, strings.TrimRight(m.Content, "\n"))
}

type Conversation []*Message

func NewConversation(messages ...*Message) Conversation {
	return append(Conversation{}, messages...)
}

// Clone returns a deep copy, so callers can never reach into a session's store.
func (messages Conversation) Clone() Conversation {
	ret := make(Conversation, 0, len(messages))
	for _, m := range messages {
		m_ := *m
		ret = append(ret, &m_)
	}
	return ret
}

// WithoutAnnotations drops annotation entries, leaving what the model said
// and was told.
func (messages Conversation) WithoutAnnotations() Conversation {
	ret := make(Conversation, 0, len(messages))
	for _, m := range messages {
		if m.Annotation {
			continue
		}
		ret = append(ret, m)
	}
	return ret
}

// Contents returns the content of every message whose role is in roles, in order.
// With no roles given, every message is included.
func (messages Conversation) Contents(roles ...Role) []string {
	ret := []string{}
	for _, m := range messages {
		if len(roles) > 0 && !hasRole(roles, m.Role) {
			continue
		}
		ret = append(ret, m.Content)
	}
	return ret
}

// Reversed returns the messages newest first, the order the transcript is displayed in.
func (messages Conversation) Reversed() Conversation {
	ret := make(Conversation, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		ret = append(ret, messages[i])
	}
	return ret
}

func hasRole(roles []Role, r Role) bool {
	for _, role := range roles {
		if role == r {
			return true
		}
	}
	return false
}
