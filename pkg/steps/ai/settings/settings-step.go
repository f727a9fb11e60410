package settings

import (
	"io"
	"strings"

	"github.com/go-go-golems/interviewer/pkg/steps/ai/settings/openai"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// StepSettings bundles everything a completion call needs.
type StepSettings struct {
	Chat   *ChatSettings    `yaml:"chat,omitempty"`
	OpenAI *openai.Settings `yaml:"openai,omitempty"`
	Client *ClientSettings  `yaml:"client,omitempty"`
}

func NewStepSettings() *StepSettings {
	return &StepSettings{
		Chat:   NewChatSettings(),
		OpenAI: openai.NewSettings(),
		Client: NewClientSettings(),
	}
}

// NewStepSettingsFromYAML decodes settings over the defaults.
func NewStepSettingsFromYAML(s io.Reader) (*StepSettings, error) {
	ret := NewStepSettings()
	if err := yaml.NewDecoder(s).Decode(ret); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "could not decode step settings")
	}
	return ret, nil
}

// UpdateFromViper overrides fields for every key that is set in v. Keys use
// the flag names of the command line.
func (ss *StepSettings) UpdateFromViper(v *viper.Viper) error {
	if v.IsSet("model") {
		model := v.GetString("model")
		ss.Chat.Model = &model
	}
	if v.IsSet("max-tokens") {
		n := v.GetInt("max-tokens")
		if n < 1 {
			return errors.Errorf("max-tokens must be >= 1, got %d", n)
		}
		ss.Chat.MaxResponseTokens = &n
	}
	if v.IsSet("temperature") {
		t := v.GetFloat64("temperature")
		ss.Chat.Temperature = &t
	}
	if v.IsSet("top-p") {
		p := v.GetFloat64("top-p")
		ss.Chat.TopP = &p
	}
	if v.IsSet("stop") {
		ss.Chat.Stop = v.GetStringSlice("stop")
	}
	if v.IsSet("openai-api-key") {
		key := v.GetString("openai-api-key")
		ss.OpenAI.APIKey = &key
	}
	if v.IsSet("openai-base-url") {
		u := strings.TrimRight(v.GetString("openai-base-url"), "/")
		ss.OpenAI.BaseURL = &u
	}
	if v.IsSet("openai-organization") {
		o := v.GetString("openai-organization")
		ss.Client.Organization = &o
	}
	if v.IsSet("timeout") {
		ss.Client.SetTimeoutSeconds(v.GetInt("timeout"))
	}
	return nil
}

func (ss *StepSettings) GetMetadata() map[string]interface{} {
	metadata := make(map[string]interface{})

	if ss.Chat != nil {
		metadata["model"] = ss.Chat.ModelOrDefault()
		if ss.Chat.MaxResponseTokens != nil {
			metadata["max-tokens"] = *ss.Chat.MaxResponseTokens
		}
		if ss.Chat.TopP != nil && *ss.Chat.TopP != 1 {
			metadata["top-p"] = *ss.Chat.TopP
		}
		if ss.Chat.Temperature != nil {
			metadata["temperature"] = *ss.Chat.Temperature
		}
		if len(ss.Chat.Stop) > 0 {
			metadata["stop"] = ss.Chat.Stop
		}
	}

	if ss.OpenAI != nil {
		if ss.OpenAI.BaseURL != nil {
			metadata["openai-base-url"] = *ss.OpenAI.BaseURL
		}
		if ss.OpenAI.PresencePenalty != nil && *ss.OpenAI.PresencePenalty != 0 {
			metadata["openai-presence-penalty"] = *ss.OpenAI.PresencePenalty
		}
		if ss.OpenAI.FrequencyPenalty != nil && *ss.OpenAI.FrequencyPenalty != 0 {
			metadata["openai-frequency-penalty"] = *ss.OpenAI.FrequencyPenalty
		}
		// the api key is never part of the metadata
	}

	if ss.Client != nil {
		if ss.Client.Timeout != nil {
			metadata["timeout"] = ss.Client.Timeout.String()
		}
		if ss.Client.Organization != nil && *ss.Client.Organization != "" {
			metadata["organization"] = *ss.Client.Organization
		}
		if ss.Client.UserAgent != nil {
			metadata["user-agent"] = *ss.Client.UserAgent
		}
	}

	return metadata
}

func (ss *StepSettings) Clone() *StepSettings {
	return &StepSettings{
		Chat:   ss.Chat.Clone(),
		OpenAI: ss.OpenAI.Clone(),
		Client: ss.Client.Clone(),
	}
}
