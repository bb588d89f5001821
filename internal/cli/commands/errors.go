package commands

import (
	"fmt"

	"github.com/nexa-tasks/nexa/internal/api"
)

// userError shows the server's message while keeping the API error
// available to errors.Is
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }

func (e *userError) Unwrap() error { return e.err }

// failed describes a failed action with the server message, or the error
// itself when the server sent none
func failed(action string, err error) error {
	return &userError{
		msg: fmt.Sprintf("failed to %s: %s", action, api.UserMessage(err, err.Error())),
		err: err,
	}
}
