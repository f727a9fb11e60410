package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/chat"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/settings"
	go_openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettings(url string) *settings.StepSettings {
	s := settings.NewStepSettings()
	key := "sk-test"
	s.OpenAI.APIKey = &key
	s.OpenAI.BaseURL = &url
	return s
}

func TestComplete(t *testing.T) {
	var got go_openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(go_openai.ChatCompletionResponse{
			Model: got.Model,
			Choices: []go_openai.ChatCompletionChoice{{
				Message:      go_openai.ChatCompletionMessage{Role: "assistant", Content: "  回答です \n"},
				FinishReason: go_openai.FinishReasonStop,
			}},
		})
	}))
	defer srv.Close()

	c, err := NewCompleter(newTestSettings(srv.URL))
	require.NoError(t, err)

	temp := 0.7
	req := &chat.Request{
		Model: "gpt-4o-mini",
		Messages: conversation.NewConversation(
			conversation.NewChatMessage(conversation.RoleSystem, "P0"),
			conversation.NewChatMessage(conversation.RoleUser, "Q1"),
		),
		MaxTokens:   800,
		Temperature: &temp,
	}
	msg, err := c.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, conversation.RoleAssistant, msg.Role)
	assert.Equal(t, "回答です", msg.Content)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 800, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "Q1", got.Messages[1].Content)
}

func TestCompleteServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded", "type": "insufficient_quota"}}`))
	}))
	defer srv.Close()

	c, err := NewCompleter(newTestSettings(srv.URL))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), chat.NewPromptRequest(nil, "", "hi"))
	require.Error(t, err)
	assert.ErrorIs(t, err, chat.ErrService)
	assert.Contains(t, chat.UserMessage(err), "quota exceeded")
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c, err := NewCompleter(newTestSettings(srv.URL))
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), chat.NewPromptRequest(nil, "", "hi"))
	assert.ErrorIs(t, err, chat.ErrService)
}

func TestNewCompleterRequiresKey(t *testing.T) {
	_, err := NewCompleter(settings.NewStepSettings())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestMakeCompletionRequestDefaults(t *testing.T) {
	s := settings.NewStepSettings()
	p := 0.5
	s.OpenAI.PresencePenalty = &p
	req := MakeCompletionRequest(s, &chat.Request{})
	assert.Equal(t, settings.DefaultModel, req.Model)
	assert.Equal(t, 0, req.MaxTokens)
	assert.InDelta(t, 0.5, req.PresencePenalty, 1e-6)
}

func TestCountTokens(t *testing.T) {
	n, err := CountTokens("gpt-4", "hello world")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// unknown models fall back to cl100k_base
	m, err := CountTokens("not-a-model", "hello world")
	require.NoError(t, err)
	assert.Equal(t, n, m)

	total, err := CountMessageTokens("gpt-4", conversation.NewConversation(
		conversation.NewChatMessage(conversation.RoleUser, "hello world"),
	))
	require.NoError(t, err)
	assert.Equal(t, 3+4+2, total)
}

func TestMakeClientLeavesSharedHTTPClientAlone(t *testing.T) {
	s := newTestSettings("http://localhost")
	shared := &http.Client{Timeout: time.Second}
	timeout := 5 * time.Second
	s.Client.HTTPClient = shared
	s.Client.Timeout = &timeout

	client, err := MakeClient(s)
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, time.Second, shared.Timeout)
}
