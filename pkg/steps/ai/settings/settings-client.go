package settings

import (
	"net/http"
	"time"

	"github.com/huandu/go-clone"
	"gopkg.in/yaml.v3"
)

type ClientSettings struct {
	Timeout        *time.Duration `yaml:"timeout,omitempty"`
	TimeoutSeconds *int           `yaml:"timeout_second,omitempty"`
	Organization   *string        `yaml:"organization,omitempty"`
	UserAgent      *string        `yaml:"user_agent,omitempty"`
	HTTPClient     *http.Client   `yaml:"-" json:"-"`
}

// UnmarshalYAML reads timeout as a number of seconds.
func (cs *ClientSettings) UnmarshalYAML(value *yaml.Node) error {
	aux := struct {
		Timeout        *int    `yaml:"timeout,omitempty"`
		TimeoutSeconds *int    `yaml:"timeout_second,omitempty"`
		Organization   *string `yaml:"organization,omitempty"`
		UserAgent      *string `yaml:"user_agent,omitempty"`
	}{}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	cs.Organization = aux.Organization
	cs.UserAgent = aux.UserAgent
	switch {
	case aux.Timeout != nil:
		cs.SetTimeoutSeconds(*aux.Timeout)
	case aux.TimeoutSeconds != nil:
		cs.SetTimeoutSeconds(*aux.TimeoutSeconds)
	}
	return nil
}

func (cs *ClientSettings) SetTimeoutSeconds(seconds int) {
	t := time.Duration(seconds) * time.Second
	cs.Timeout = &t
	cs.TimeoutSeconds = &seconds
}

func (cs *ClientSettings) Clone() *ClientSettings {
	return clone.Clone(cs).(*ClientSettings)
}

func NewClientSettings() *ClientSettings {
	ret := &ClientSettings{}
	ret.SetTimeoutSeconds(60)
	return ret
}
