package persona

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrPersonaNotFound = errors.New("persona not found")
)

// ValidationError reports invalid or missing fields in an input file.
type ValidationError struct {
	File   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ErrValidation.Error()
	}
	prefix := ErrValidation.Error()
	if e.File != "" {
		prefix = fmt.Sprintf("%s: %s", e.File, prefix)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", prefix, e.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", prefix, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
