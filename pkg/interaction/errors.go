package interaction

import (
	"errors"
	"fmt"

	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// ErrAuthExpired marks a session the server reported as expired.
// It is wrapped by the AuthenticationError returned when renewal did not
// help.
var ErrAuthExpired = errors.New("session expired")

// CommandError is a "fail" result for an authenticated command.
type CommandError struct {
	Command string
	Reason  string
	Status  wire.Status
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("command %s failed: %s", e.Command, e.Reason)
	}
	return fmt.Sprintf("command %s failed: %s", e.Command, e.Status)
}
