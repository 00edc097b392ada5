package matcherrors

import "errors"

// Rejoin/matchmaking sentinel errors. Used by both matchmaking and ws
// packages to avoid circular imports.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFinished = errors.New("session finished")
	ErrInvalidToken    = errors.New("invalid rejoin token")
	ErrNotDisconnected = errors.New("this player is not disconnected")
	ErrNoActiveSession = errors.New("no active session for this user")
)
