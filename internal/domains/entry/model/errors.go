package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeValidation            = "ENT001"
	ErrCodeContentRejected       = "ENT002"
	ErrCodeAuthOrNotFound        = "ENT003"
	ErrCodeNotFound              = "ENT004"
	ErrCodeModerationUnavailable = "ENT005"
	ErrCodeUniqueNameExhausted   = "ENT006"
)

// Errors
var (
	ErrValidation            = errors.New("validation failed")
	ErrContentRejected       = errors.New("content rejected by moderation")
	ErrAuthOrNotFound        = errors.New("invalid edit code or entry not found")
	ErrNotFound              = errors.New("entry not found")
	ErrModerationUnavailable = errors.New("moderation unavailable")

	// Returned by stores when the case-insensitive unique_name index rejects an insert
	ErrDuplicateUniqueName = errors.New("unique name already taken")
)

// EntryError custom error type
type EntryError struct {
	Code    string
	Message string
	Err     error
}

func (e *EntryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewValidationError(err error) *EntryError {
	return &EntryError{
		Code:    ErrCodeValidation,
		Message: err.Error(),
		Err:     ErrValidation,
	}
}

// NewContentRejectedError never says which rule fired
func NewContentRejectedError() *EntryError {
	return &EntryError{
		Code:    ErrCodeContentRejected,
		Message: "contains prohibited or unsafe content.",
		Err:     ErrContentRejected,
	}
}

// NewAuthOrNotFoundError is shared by "wrong edit code" and "no such unique_name"
func NewAuthOrNotFoundError() *EntryError {
	return &EntryError{
		Code:    ErrCodeAuthOrNotFound,
		Message: "invalid edit code or note not found",
		Err:     ErrAuthOrNotFound,
	}
}

func NewNotFoundError() *EntryError {
	return &EntryError{
		Code:    ErrCodeNotFound,
		Message: "not found",
		Err:     ErrNotFound,
	}
}

func NewModerationUnavailableError(cause error) *EntryError {
	return &EntryError{
		Code:    ErrCodeModerationUnavailable,
		Message: "content could not be checked, try again later",
		Err:     fmt.Errorf("%w: %v", ErrModerationUnavailable, cause),
	}
}

func NewUniqueNameExhaustedError() *EntryError {
	return &EntryError{
		Code:    ErrCodeUniqueNameExhausted,
		Message: "could not allocate a unique name, try again",
		Err:     ErrDuplicateUniqueName,
	}
}
