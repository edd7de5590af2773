package agent

import "errors"

// Sentinel errors for turn execution, checked with errors.Is.
var (
	// ErrModel indicates the language model failed; the turn aborts but
	// state appended before the failure is preserved.
	ErrModel = errors.New("model call failed")

	// ErrMaxTurns indicates the tool-call loop exceeded its bound.
	ErrMaxTurns = errors.New("maximum turns exceeded")

	// ErrToolNotFound indicates the model requested an unregistered tool.
	ErrToolNotFound = errors.New("tool not found")

	// ErrDuplicateTool indicates two registrations under one name.
	ErrDuplicateTool = errors.New("tool already registered")
)
