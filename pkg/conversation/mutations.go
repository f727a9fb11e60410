package conversation

import (
	"fmt"
	"strings"
)

// Mutation represents a deterministic change to a session.
type Mutation interface {
	Apply(s *Session) error
	Name() string
}

// MutateInitialize seeds an empty session with its system preamble.
func MutateInitialize(preamble string) Mutation {
	return initializeMutation{preamble: preamble}
}

type initializeMutation struct {
	preamble string
}

func (m initializeMutation) Apply(s *Session) error {
	if s.Initialized() {
		return ErrAlreadyInitialized
	}
	text := strings.TrimSpace(m.preamble)
	if text == "" {
		return fmt.Errorf("preamble: %w", ErrEmptyContent)
	}
	s.messages = Conversation{NewChatMessage(RoleSystem, text)}
	return nil
}

func (m initializeMutation) Name() string { return "initialize" }

// MutateAppendUserText appends a user turn.
func MutateAppendUserText(text string) Mutation {
	return appendTextMutation{role: RoleUser, text: text}
}

// MutateAppendAssistantText appends an assistant turn.
func MutateAppendAssistantText(text string) Mutation {
	return appendTextMutation{role: RoleAssistant, text: text}
}

// MutateAppendText appends a turn for role, which must be user or assistant.
func MutateAppendText(role Role, text string) Mutation {
	return appendTextMutation{role: role, text: text}
}

// MutateAppendTextAllowingDuplicate appends a turn even if the same content
// is already stored.
func MutateAppendTextAllowingDuplicate(role Role, text string) Mutation {
	return appendTextMutation{role: role, text: text, allowDuplicate: true}
}

// MutateAppendAnnotation appends a note written by the tool rather than the
// model. Annotations bypass dedup, their fixed texts repeat.
func MutateAppendAnnotation(role Role, text string) Mutation {
	return appendTextMutation{role: role, text: text, allowDuplicate: true, annotation: true}
}

type appendTextMutation struct {
	role           Role
	text           string
	allowDuplicate bool
	annotation     bool
}

func (m appendTextMutation) Apply(s *Session) error {
	if !s.Initialized() {
		return ErrNotInitialized
	}
	switch m.role {
	case RoleUser, RoleAssistant:
	default:
		return fmt.Errorf("%w %q", ErrInvalidRole, m.role)
	}
	text := strings.TrimSpace(m.text)
	if text == "" {
		return ErrEmptyContent
	}
	if !m.allowDuplicate && !s.noDedup && s.Contains(text) {
		return ErrDuplicate
	}
	msg := NewChatMessage(m.role, text)
	msg.Annotation = m.annotation
	s.messages = append(s.messages, msg)
	return nil
}

func (m appendTextMutation) Name() string {
	if m.annotation {
		return "append_annotation"
	}
	return "append_text"
}

// MutateReset clears the transcript back to a single preamble and empties the
// feedback log. An empty preamble keeps the current one.
func MutateReset(preamble string) Mutation {
	return resetMutation{preamble: preamble}
}

type resetMutation struct {
	preamble string
}

func (m resetMutation) Apply(s *Session) error {
	text := strings.TrimSpace(m.preamble)
	if text == "" {
		if !s.Initialized() {
			return ErrNotInitialized
		}
		text = s.messages[0].Content
	}
	s.messages = Conversation{NewChatMessage(RoleSystem, text)}
	s.feedback = nil
	return nil
}

func (m resetMutation) Name() string { return "reset" }

// MutateAddFeedback appends an entry to the feedback log.
func MutateAddFeedback(text string) Mutation {
	return addFeedbackMutation{text: text}
}

type addFeedbackMutation struct {
	text string
}

func (m addFeedbackMutation) Apply(s *Session) error {
	text := strings.TrimSpace(m.text)
	if text == "" {
		return ErrEmptyContent
	}
	s.feedback = append(s.feedback, text)
	return nil
}

func (m addFeedbackMutation) Name() string { return "add_feedback" }

// MutateClearFeedback empties the feedback log without touching the transcript.
func MutateClearFeedback() Mutation {
	return clearFeedbackMutation{}
}

type clearFeedbackMutation struct{}

func (m clearFeedbackMutation) Apply(s *Session) error {
	s.feedback = nil
	return nil
}

func (m clearFeedbackMutation) Name() string { return "clear_feedback" }
