package conversation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Session owns one transcript and its feedback log.
//
// The zero value is an uninitialized session; call Initialize before appending.
// Sessions are single-writer: callers that share one across goroutines must
// serialize access themselves.
type Session struct {
	ID      uuid.UUID
	Version int64

	messages Conversation
	feedback []string
	noDedup  bool
}

type SessionOption func(*Session)

// WithDedup toggles skipping appends whose content already exists in the store.
// Dedup is on by default.
func WithDedup(enabled bool) SessionOption {
	return func(s *Session) {
		s.noDedup = !enabled
	}
}

func WithSessionID(id uuid.UUID) SessionOption {
	return func(s *Session) {
		s.ID = id
	}
}

// NewSession creates a session seeded with the system preamble.
func NewSession(preamble string, options ...SessionOption) (*Session, error) {
	s := &Session{}
	for _, option := range options {
		option(s)
	}
	if err := s.Initialize(preamble); err != nil {
		return nil, err
	}
	return s, nil
}

// FromConversation restores a session from a saved transcript. The first
// message must be the system preamble and no other system message may follow.
func FromConversation(messages Conversation, options ...SessionOption) (*Session, error) {
	if len(messages) == 0 {
		return nil, errors.Wrap(ErrNotInitialized, "empty transcript")
	}
	for i, m := range messages {
		if m == nil {
			return nil, errors.Errorf("message %d is empty", i)
		}
	}
	if messages[0].Role != RoleSystem {
		return nil, errors.Errorf("first message must be %s, got %s", RoleSystem, messages[0].Role)
	}
	s, err := NewSession(messages[0].Content, options...)
	if err != nil {
		return nil, err
	}
	for i, m := range messages[1:] {
		// restored transcripts are taken as-is, duplicates included
		mut := MutateAppendTextAllowingDuplicate(m.Role, m.Content)
		if m.Annotation {
			mut = MutateAppendAnnotation(m.Role, m.Content)
		}
		if err := s.Apply(mut); err != nil {
			return nil, errors.Wrapf(err, "message %d", i+1)
		}
	}
	return s, nil
}

func (s *Session) Initialized() bool {
	return len(s.messages) > 0
}

// Initialize seeds an uninitialized session. Calling it on a session that is
// already initialized returns ErrAlreadyInitialized.
func (s *Session) Initialize(preamble string) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return s.Apply(MutateInitialize(preamble))
}

// EnsureInitialized is the idempotent form of Initialize: an already
// initialized session is left untouched, whatever its preamble.
func (s *Session) EnsureInitialized(preamble string) error {
	if s.Initialized() {
		return nil
	}
	return s.Initialize(preamble)
}

// Apply applies a single mutation and increments the version.
func (s *Session) Apply(m Mutation) error {
	if s == nil {
		return fmt.Errorf("session is nil")
	}
	if m == nil {
		return fmt.Errorf("mutation is nil")
	}
	if err := m.Apply(s); err != nil {
		return fmt.Errorf("mutation %s failed: %w", m.Name(), err)
	}
	s.Version++
	log.Trace().
		Str("session_id", s.ID.String()).
		Str("mutation", m.Name()).
		Int64("version", s.Version).
		Int("messages", len(s.messages)).
		Int("feedback", len(s.feedback)).
		Msg("applied mutation")
	return nil
}

// ApplyAll applies multiple mutations sequentially, stopping at the first error.
func (s *Session) ApplyAll(muts ...Mutation) error {
	for _, m := range muts {
		if err := s.Apply(m); err != nil {
			return err
		}
	}
	return nil
}

// Append adds a user or assistant turn. It returns false without error when
// dedup is enabled and the content is already present.
func (s *Session) Append(role Role, content string) (bool, error) {
	err := s.Apply(MutateAppendText(role, content))
	if errors.Is(err, ErrDuplicate) {
		log.Debug().
			Str("session_id", s.ID.String()).
			Str("role", string(role)).
			Msg("skipping duplicate message")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AppendAllowingDuplicate appends regardless of the dedup policy. It is meant
// for generated annotations whose text legitimately repeats.
func (s *Session) AppendAllowingDuplicate(role Role, content string) error {
	return s.Apply(MutateAppendTextAllowingDuplicate(role, content))
}

// AppendAnnotation records a note written by the tool, such as a sentiment
// label. It is kept out of model requests built from HistoryForModel.
func (s *Session) AppendAnnotation(role Role, content string) error {
	return s.Apply(MutateAppendAnnotation(role, content))
}

// Contains reports whether any entry, preamble included, has exactly this content.
func (s *Session) Contains(content string) bool {
	for _, m := range s.messages {
		if m.Content == content {
			return true
		}
	}
	return false
}

// History returns a copy of the transcript. With excludingPreamble the system
// preamble at index 0 is skipped.
func (s *Session) History(excludingPreamble bool) Conversation {
	if excludingPreamble && len(s.messages) > 0 {
		return s.messages[1:].Clone()
	}
	return s.messages.Clone()
}

// HistoryForModel is History(false) without annotations, the messages a
// completion request is built from.
func (s *Session) HistoryForModel() Conversation {
	return s.messages.WithoutAnnotations().Clone()
}

func (s *Session) Preamble() string {
	if !s.Initialized() {
		return ""
	}
	return s.messages[0].Content
}

func (s *Session) Len() int {
	return len(s.messages)
}

// Last returns the newest entry, or nil for an uninitialized session.
func (s *Session) Last() *Message {
	if len(s.messages) == 0 {
		return nil
	}
	m := *s.messages[len(s.messages)-1]
	return &m
}

// Reset restores the transcript to its preamble and clears the feedback log.
func (s *Session) Reset() error {
	return s.Apply(MutateReset(""))
}

// ResetWithPreamble is Reset with a new preamble, used when switching personas.
func (s *Session) ResetWithPreamble(preamble string) error {
	if preamble == "" {
		return ErrEmptyContent
	}
	return s.Apply(MutateReset(preamble))
}

func (s *Session) AddFeedback(text string) error {
	return s.Apply(MutateAddFeedback(text))
}

func (s *Session) Feedback() []string {
	return append([]string{}, s.feedback...)
}

func (s *Session) ClearFeedback() error {
	return s.Apply(MutateClearFeedback())
}
