package models

import "errors"

// ValidationError marks a user-input failure (bad ticker, non-positive
// shares, missing date). The write is never attempted; the API surfaces the
// message synchronously as a 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")
