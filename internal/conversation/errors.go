package conversation

import "errors"

// Sentinel errors for conversation operations, checked with errors.Is.
var (
	// ErrNotFound indicates the conversation does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("conversation not found")

	// ErrCommitted indicates an append after the turn was committed.
	ErrCommitted = errors.New("conversation state already committed")

	// ErrPairing indicates a tool call without an immediately following
	// result, or a result that answers no call.
	ErrPairing = errors.New("tool call/result pairing violated")
)
