package settings

import (
	"github.com/huandu/go-clone"
)

const DefaultModel = "gpt-4o-mini"

// ChatSettings are the per-request completion parameters. Nil fields are left
// to the service default.
type ChatSettings struct {
	Model             *string  `yaml:"model,omitempty"`
	MaxResponseTokens *int     `yaml:"max_response_tokens,omitempty"`
	TopP              *float64 `yaml:"top_p,omitempty"`
	Temperature       *float64 `yaml:"temperature,omitempty"`
	Stop              []string `yaml:"stop,omitempty"`
}

func NewChatSettings() *ChatSettings {
	model := DefaultModel
	return &ChatSettings{
		Model: &model,
		Stop:  []string{},
	}
}

func (s *ChatSettings) Clone() *ChatSettings {
	return clone.Clone(s).(*ChatSettings)
}

// ModelOrDefault never returns an empty model name.
func (s *ChatSettings) ModelOrDefault() string {
	if s == nil || s.Model == nil || *s.Model == "" {
		return DefaultModel
	}
	return *s.Model
}
