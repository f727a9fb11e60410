package persona

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// QuestionSet is the fixed interview question list the persona answers in
// the feedback pass.
type QuestionSet struct {
	Questions []string `json:"questions"`
}

func LoadQuestions(path string) (*QuestionSet, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	var qs QuestionSet
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", path)
	}
	if err := qs.Validate(); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.File = path
		}
		return nil, err
	}
	return &qs, nil
}

func (qs *QuestionSet) Validate() error {
	if len(qs.Questions) == 0 {
		return &ValidationError{Field: "questions", Reason: "at least one question is required"}
	}
	for i, q := range qs.Questions {
		if strings.TrimSpace(q) == "" {
			return &ValidationError{Field: fmt.Sprintf("questions[%d]", i), Reason: "question is empty"}
		}
	}
	return nil
}

func (qs *QuestionSet) Len() int {
	return len(qs.Questions)
}

// Numbered renders the questions as "1. ..." lines.
func (qs *QuestionSet) Numbered() string {
	lines := make([]string, 0, len(qs.Questions))
	for i, q := range qs.Questions {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, q))
	}
	return strings.Join(lines, "\n")
}
