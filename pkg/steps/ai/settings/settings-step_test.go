package settings

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStepSettingsDefaults(t *testing.T) {
	s := NewStepSettings()
	assert.Equal(t, DefaultModel, s.Chat.ModelOrDefault())
	require.NotNil(t, s.Client.Timeout)
	assert.Equal(t, 60*time.Second, *s.Client.Timeout)
	assert.Nil(t, s.OpenAI.APIKey)
}

func TestNewStepSettingsFromYAML(t *testing.T) {
	s, err := NewStepSettingsFromYAML(strings.NewReader(`
chat:
  model: gpt-4o
  max_response_tokens: 800
  temperature: 0.7
client:
  timeout: 10
openai:
  base_url: http://localhost:8080/v1
`))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", s.Chat.ModelOrDefault())
	assert.Equal(t, 800, *s.Chat.MaxResponseTokens)
	assert.Equal(t, 0.7, *s.Chat.Temperature)
	assert.Equal(t, 10*time.Second, *s.Client.Timeout)
	assert.Equal(t, 10, *s.Client.TimeoutSeconds)
	assert.Equal(t, "http://localhost:8080/v1", *s.OpenAI.BaseURL)

	s, err = NewStepSettingsFromYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, s.Chat.ModelOrDefault())
}

func TestUpdateFromViper(t *testing.T) {
	v := viper.New()
	v.Set("model", "gpt-4o")
	v.Set("max-tokens", 600)
	v.Set("temperature", 0.2)
	v.Set("openai-api-key", "sk-test")
	v.Set("openai-base-url", "http://example.com/v1/")
	v.Set("timeout", 5)

	s := NewStepSettings()
	require.NoError(t, s.UpdateFromViper(v))
	assert.Equal(t, "gpt-4o", *s.Chat.Model)
	assert.Equal(t, 600, *s.Chat.MaxResponseTokens)
	assert.Equal(t, 0.2, *s.Chat.Temperature)
	assert.Nil(t, s.Chat.TopP)
	assert.Equal(t, "sk-test", *s.OpenAI.APIKey)
	assert.Equal(t, "http://example.com/v1", *s.OpenAI.BaseURL)
	assert.Equal(t, 5*time.Second, *s.Client.Timeout)

	md := s.GetMetadata()
	assert.Equal(t, "gpt-4o", md["model"])
	assert.NotContains(t, md, "openai-api-key")

	v.Set("max-tokens", 0)
	assert.Error(t, NewStepSettings().UpdateFromViper(v))
}

func TestCloneIsDeep(t *testing.T) {
	s := NewStepSettings()
	c := s.Clone()
	model := "other"
	c.Chat.Model = &model
	c.Client.SetTimeoutSeconds(1)
	assert.Equal(t, DefaultModel, *s.Chat.Model)
	assert.Equal(t, 60*time.Second, *s.Client.Timeout)
}
