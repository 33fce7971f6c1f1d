package domain

import "errors"

var (
	// ErrSessionNotFound is returned by stores when no conversation exists for a key.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionNotStarted is returned when a message arrives before the
	// caller started an assessment and auto-start is disabled.
	ErrSessionNotStarted = errors.New("session not started")

	// ErrSessionUnavailable wraps persistence and locking failures.
	ErrSessionUnavailable = errors.New("session unavailable")

	// ErrInvariant marks a programming error: a state or history the
	// assessment machine can never produce.
	ErrInvariant = errors.New("assessment invariant violated")

	// ErrCorruptState is returned when a stored record cannot be decoded
	// into a legal ConversationState.
	ErrCorruptState = errors.New("corrupt conversation state")
)
