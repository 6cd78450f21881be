package cli

import (
	"errors"

	"taskdeck/internal/gateway"
)

// Exit codes returned by the taskdeck binary.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInvalid     = 2
	ExitUnavailable = 3
	ExitNotFound    = 4
)

// ExitCode maps a command error to a process exit code so scripts can tell
// a missing task from an unreachable service.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var (
		notFound *gateway.NotFoundError
		invalid  *gateway.InvalidRequestError
		network  *gateway.NetworkError
	)
	switch {
	case errors.As(err, &notFound):
		return ExitNotFound
	case errors.As(err, &invalid):
		return ExitInvalid
	case errors.As(err, &network):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}
