package agent

import "context"

// EventKind discriminates turn events.
type EventKind string

const (
	// EventTextDelta carries an incremental piece of assistant text.
	EventTextDelta EventKind = "text.delta"

	// EventToolPending signals a tool call about to execute.
	EventToolPending EventKind = "tool.pending"

	// EventToolDone signals a tool call finished (successfully or with an
	// error payload folded into the result).
	EventToolDone EventKind = "tool.done"

	// EventTurnDone signals the turn completed and state was committed.
	EventTurnDone EventKind = "turn.done"

	// EventTurnError signals the turn aborted.
	EventTurnError EventKind = "turn.error"
)

// Event is one item on a turn's event stream. Exactly one producer
// writes events; the channel closes when the turn ends.
type Event struct {
	Kind EventKind

	// Delta is set for EventTextDelta.
	Delta string

	// ToolName and CallID are set for tool events.
	ToolName string
	CallID   string

	// Err is set for EventTurnError.
	Err error
}

// emit delivers an event unless the context is done. Cancellation stops
// delivery without unwinding the producer's state; completed side
// effects stay recorded.
func emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
