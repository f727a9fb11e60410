package chat

import (
	"errors"
	"fmt"
)

var (
	ErrService   = errors.New("chat completion service error")
	errNoReplies = errors.New("no replies configured")
)

// ServiceError wraps any failure of the completion service: network, timeout,
// quota or an empty answer.
type ServiceError struct {
	Op  string
	Err error
}

func NewServiceError(op string, err error) *ServiceError {
	return &ServiceError{Op: op, Err: err}
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrService)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrService, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) Is(target error) bool { return target == ErrService }

// UserMessage is the plain text shown to the person running the interview.
func (e *ServiceError) UserMessage() string {
	if e.Err == nil {
		return "AIの応答を取得できませんでした。"
	}
	return fmt.Sprintf("AIの応答を取得できませんでした: %v", e.Err)
}

// UserMessage returns the text to show for any error, without stack traces.
func UserMessage(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	return err.Error()
}
