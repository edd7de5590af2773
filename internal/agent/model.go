package agent

import (
	"context"

	"github.com/firebase/genkit/go/ai"
)

// Model abstracts a single language model call so the orchestrator can
// be tested without a live provider.
type Model interface {
	// Generate runs one model call over the accumulated messages and
	// returns the response, which contains either assistant text or tool
	// requests to dispatch.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Summarize condenses text into a short standalone phrase, used for
	// resource titles when the model omits one.
	Summarize(ctx context.Context, text string) (string, error)
}

// Request is the input to one model call.
type Request struct {
	// System is the system prompt prepended to the conversation.
	System string

	// Messages is the full conversation history, oldest first.
	Messages []*ai.Message

	// Tools lists the tool declarations the model may invoke.
	Tools []ai.ToolRef

	// Stream, when non-nil, receives incremental text as the model
	// produces it. The final text is still returned in the Response.
	Stream func(ctx context.Context, delta string) error
}

// Response is the outcome of one model call.
type Response struct {
	// Text is the assistant text, empty when the model chose to call
	// tools instead.
	Text string

	// ToolRequests holds the tool calls the model wants executed. Empty
	// means the model produced a final answer.
	ToolRequests []*ai.ToolRequest

	// Message is the raw model message, kept for state appends that need
	// the original parts.
	Message *ai.Message
}
