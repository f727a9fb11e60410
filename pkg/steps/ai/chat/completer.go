package chat

import (
	"context"

	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/settings"
)

// Request is a single chat completion call.
type Request struct {
	Model       string
	Messages    conversation.Conversation
	MaxTokens   int
	Temperature *float64
	TopP        *float64
	Stop        []string
}

// NewRequest fills a request from the chat settings.
func NewRequest(s *settings.ChatSettings, messages conversation.Conversation) *Request {
	ret := &Request{
		Model:    s.ModelOrDefault(),
		Messages: messages,
	}
	if s == nil {
		return ret
	}
	if s.MaxResponseTokens != nil {
		ret.MaxTokens = *s.MaxResponseTokens
	}
	ret.Temperature = s.Temperature
	ret.TopP = s.TopP
	ret.Stop = s.Stop
	return ret
}

// NewPromptRequest is a request made of one system and one user message.
func NewPromptRequest(s *settings.ChatSettings, system string, prompt string) *Request {
	messages := conversation.NewConversation()
	if system != "" {
		messages = append(messages, conversation.NewChatMessage(conversation.RoleSystem, system))
	}
	messages = append(messages, conversation.NewChatMessage(conversation.RoleUser, prompt))
	return NewRequest(s, messages)
}

// Completer is the hosted chat-completion service. Implementations return the
// assistant reply, or a *ServiceError.
type Completer interface {
	Complete(ctx context.Context, req *Request) (*conversation.Message, error)
}

type CompleterFunc func(ctx context.Context, req *Request) (*conversation.Message, error)

func (f CompleterFunc) Complete(ctx context.Context, req *Request) (*conversation.Message, error) {
	return f(ctx, req)
}
