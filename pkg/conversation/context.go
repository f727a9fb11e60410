package conversation

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadFromFile reads a saved transcript from a JSON or YAML file, facilitating
// session resumption from an earlier export.
func LoadFromFile(filename string) (Conversation, error) {
	if strings.HasSuffix(filename, ".json") {
		return loadFromJSONFile(filename)
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return loadFromYAMLFile(filename)
	} else {
		return nil, errors.Errorf("unsupported transcript file %s (expected .json, .yaml or .yml)", filename)
	}
}

func loadFromYAMLFile(filename string) (Conversation, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	var messages Conversation
	err = yaml.NewDecoder(f).Decode(&messages)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", filename)
	}

	return messages, nil
}

func loadFromJSONFile(filename string) (Conversation, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	var messages Conversation
	err = json.NewDecoder(f).Decode(&messages)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", filename)
	}

	return messages, nil
}
