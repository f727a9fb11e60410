package chat

import (
	"context"
	"sync"

	"github.com/go-go-golems/interviewer/pkg/conversation"
)

// MockCompleter replays canned replies round-robin. A non-nil entry in Errors
// fails the call at that index instead.
type MockCompleter struct {
	mu       sync.Mutex
	replies  []string
	errors   map[int]error
	index    int
	calls    int
	requests []*Request
}

var _ Completer = &MockCompleter{}

func NewMockCompleter(replies ...string) *MockCompleter {
	return &MockCompleter{
		replies: replies,
		errors:  map[int]error{},
	}
}

// FailOn makes the call with the given zero-based number fail with err.
func (m *MockCompleter) FailOn(call int, err error) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[call] = err
	return m
}

func (m *MockCompleter) Complete(ctx context.Context, req *Request) (*conversation.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := m.calls
	m.calls++
	m.requests = append(m.requests, &Request{
		Model:       req.Model,
		Messages:    req.Messages.Clone(),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.Stop,
	})

	if err := ctx.Err(); err != nil {
		return nil, NewServiceError("complete", err)
	}
	if err, ok := m.errors[call]; ok {
		return nil, NewServiceError("complete", err)
	}
	if len(m.replies) == 0 {
		return nil, NewServiceError("complete", errNoReplies)
	}

	reply := m.replies[m.index]
	m.index = (m.index + 1) % len(m.replies)
	return conversation.NewChatMessage(conversation.RoleAssistant, reply), nil
}

// Requests returns copies of every request seen so far.
func (m *MockCompleter) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Request{}, m.requests...)
}

func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
