package services

import (
	"errors"

	"github.com/what-to-eat/client/internal/client/api"
)

// ValidationError marks failures raised by local guards before any network
// attempt. It fills the same error slot as remote failures but is worded as
// a validation message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErr(msg string) error { return &ValidationError{Message: msg} }

// displayMessage renders any controller failure as user-facing text:
// validation messages verbatim, everything else through the taxonomy.
func displayMessage(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return api.UserMessage(err)
}
