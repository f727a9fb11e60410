// Package conversation owns the interview transcript.
//
// A Session holds the Message Store (one system preamble followed by user and
// assistant turns, in chronological order) and a parallel feedback log. All
// writes go through Mutations applied by the Session; reads return copies.
//
// The Manager interface is what handlers depend on:
// - appending user/assistant turns (optionally deduplicated by content)
// - reading the history with or without the preamble
// - resetting the transcript when switching personas
// - recording feedback produced by a separate summarization pass
package conversation

// Manager defines the interface for high-level transcript operations.
type Manager interface {
	Append(role Role, content string) (bool, error)
	History(excludingPreamble bool) Conversation
	Reset() error
	AddFeedback(text string) error
	Feedback() []string
}

var _ Manager = (*Session)(nil)
