package conversation

import "github.com/pkg/errors"

var (
	ErrEmptyContent       = errors.New("content is empty")
	ErrInvalidRole        = errors.New("invalid role")
	ErrDuplicate          = errors.New("duplicate content")
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrNotInitialized     = errors.New("session not initialized")
)
