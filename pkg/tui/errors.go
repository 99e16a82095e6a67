package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrCancelled is returned when the user confirms discarding the session.
	ErrCancelled = errors.New("tui: editing cancelled")
	// ErrInvalidChoice is returned when a driver answers outside the offered options.
	ErrInvalidChoice = errors.New("tui: invalid choice")
)
