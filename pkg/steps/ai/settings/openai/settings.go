package openai

import (
	"github.com/huandu/go-clone"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type Settings struct {
	APIKey  *string `yaml:"api_key,omitempty"`
	BaseURL *string `yaml:"base_url,omitempty"`
	// PresencePenalty to use
	PresencePenalty *float64 `yaml:"presence_penalty,omitempty"`
	// FrequencyPenalty to use
	FrequencyPenalty *float64 `yaml:"frequency_penalty,omitempty"`
}

func NewSettings() *Settings {
	baseURL := DefaultBaseURL
	return &Settings{
		BaseURL: &baseURL,
	}
}

func (s *Settings) Clone() *Settings {
	return clone.Clone(s).(*Settings)
}
