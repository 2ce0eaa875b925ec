package player

import "errors"

// Domain-specific errors for the player package.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrConfig indicates a malformed capability configuration.
	// Fatal at construction; the player does not start.
	ErrConfig = errors.New("player: invalid capability configuration")

	// ErrDecode indicates a status message payload that cannot be parsed
	// for its capability. Non-fatal: the message is logged and dropped,
	// the snapshot is unchanged.
	ErrDecode = errors.New("player: payload decode failed")
)
