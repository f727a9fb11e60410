package openai

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/chat"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/settings"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

var ErrMissingAPIKey = errors.New("no OpenAI API key configured")

// Completer calls the OpenAI chat completion endpoint.
type Completer struct {
	client   *go_openai.Client
	settings *settings.StepSettings
}

var _ chat.Completer = &Completer{}

func NewCompleter(s *settings.StepSettings) (*Completer, error) {
	client, err := MakeClient(s)
	if err != nil {
		return nil, err
	}
	return &Completer{
		client:   client,
		settings: s.Clone(),
	}, nil
}

func MakeClient(s *settings.StepSettings) (*go_openai.Client, error) {
	if s.OpenAI == nil || s.OpenAI.APIKey == nil || *s.OpenAI.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	config := go_openai.DefaultConfig(*s.OpenAI.APIKey)
	if s.OpenAI.BaseURL != nil && *s.OpenAI.BaseURL != "" {
		config.BaseURL = strings.TrimRight(*s.OpenAI.BaseURL, "/")
	}
	if s.Client != nil {
		if s.Client.Organization != nil {
			config.OrgID = *s.Client.Organization
		}
		// copied, the configured client may be shared with other callers
		httpClient := &http.Client{}
		if s.Client.HTTPClient != nil {
			c := *s.Client.HTTPClient
			httpClient = &c
		}
		if s.Client.Timeout != nil {
			httpClient.Timeout = *s.Client.Timeout
		}
		config.HTTPClient = httpClient
	}
	return go_openai.NewClientWithConfig(config), nil
}

func (c *Completer) Complete(ctx context.Context, req *chat.Request) (*conversation.Message, error) {
	oreq := MakeCompletionRequest(c.settings, req)

	if log.Debug().Enabled() {
		count, err := CountMessageTokens(oreq.Model, req.Messages)
		if err != nil {
			log.Debug().Err(err).Msg("could not count prompt tokens")
		} else {
			log.Debug().
				Str("model", oreq.Model).
				Int("messages", len(oreq.Messages)).
				Int("prompt_tokens", count).
				Msg("sending chat completion request")
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, oreq)
	if err != nil {
		return nil, chat.NewServiceError("openai chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return nil, chat.NewServiceError("openai chat completion", errors.New("response has no choices"))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, chat.NewServiceError("openai chat completion", errors.New("response is empty"))
	}

	log.Debug().
		Str("model", resp.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Msg("received chat completion")

	return conversation.NewChatMessage(conversation.RoleAssistant, content), nil
}

// MakeCompletionRequest maps a chat request onto the OpenAI wire request.
// Request fields win over settings.
func MakeCompletionRequest(s *settings.StepSettings, req *chat.Request) go_openai.ChatCompletionRequest {
	ret := go_openai.ChatCompletionRequest{
		Model: req.Model,
		Stop:  req.Stop,
	}
	if ret.Model == "" {
		ret.Model = s.Chat.ModelOrDefault()
	}

	for _, m := range req.Messages {
		ret.Messages = append(ret.Messages, go_openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	if req.MaxTokens > 0 {
		ret.MaxTokens = req.MaxTokens
	}
	if req.Temperature != nil {
		ret.Temperature = float32(*req.Temperature)
	}
	if req.TopP != nil {
		ret.TopP = float32(*req.TopP)
	}
	if s.OpenAI != nil {
		if s.OpenAI.PresencePenalty != nil {
			ret.PresencePenalty = float32(*s.OpenAI.PresencePenalty)
		}
		if s.OpenAI.FrequencyPenalty != nil {
			ret.FrequencyPenalty = float32(*s.OpenAI.FrequencyPenalty)
		}
	}
	return ret
}
