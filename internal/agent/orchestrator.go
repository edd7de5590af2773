package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"

	"github.com/remembra/remembra/internal/conversation"
	"github.com/remembra/remembra/internal/log"
)

// SystemPrompt instructs the model to keep answers grounded in the
// knowledge base instead of its own priors.
const SystemPrompt = `You are a helpful personal assistant with a knowledge base of facts the user has shared.

Rules:
- Before answering any question about the user, call getInformation to check the knowledge base.
- When the user shares a fact, preference, or personal detail, call createResource to store it, even if they do not ask you to remember it.
- Only answer personal questions from retrieved knowledge. If nothing relevant is found, say so plainly instead of guessing.
- Keep answers concise.`

// FallbackMessage is shown when the model returns an empty final
// answer. The turn still commits so the exchange is preserved.
const FallbackMessage = "I wasn't able to produce a response. Please try again."

// toolErrorPayload is returned to the model when a tool fails. The
// failed call still gets a result message so the call/result pairing
// holds.
const toolErrorPayload = "Error, please try again."

// Orchestrator drives one conversational turn: model calls, tool
// dispatch, state appends, and the final commit.
type Orchestrator struct {
	model    Model
	registry *Registry
	toolRefs []ai.ToolRef
	saver    conversation.Saver
	maxTurns int
	logger   log.Logger
}

// NewOrchestrator wires a turn driver. toolRefs must correspond to the
// registry's tools (typically registry.DefineAll). maxTurns bounds the
// number of model rounds in one turn.
func NewOrchestrator(model Model, registry *Registry, toolRefs []ai.ToolRef, saver conversation.Saver, maxTurns int, logger log.Logger) *Orchestrator {
	return &Orchestrator{
		model:    model,
		registry: registry,
		toolRefs: toolRefs,
		saver:    saver,
		maxTurns: maxTurns,
		logger:   logger,
	}
}

// RunStream executes a turn and returns the event stream. The channel
// closes when the turn ends; a turn.error event precedes the close on
// failure. State mutation and persistence happen inside the stream's
// producer, so callers must drain the channel.
func (o *Orchestrator) RunStream(ctx context.Context, state *conversation.State, userText string) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		if err := o.run(ctx, state, userText, events); err != nil {
			emit(ctx, events, Event{Kind: EventTurnError, Err: err})
		}
	}()
	return events
}

// run is the turn state machine. The user message is appended first so
// every later failure path still commits it.
func (o *Orchestrator) run(ctx context.Context, state *conversation.State, userText string, events chan<- Event) error {
	if err := state.Append(conversation.NewUserMessage(userText)); err != nil {
		return fmt.Errorf("appending user message: %w", err)
	}

	for turn := 0; turn < o.maxTurns; turn++ {
		resp, err := o.generate(ctx, state, events)
		if err != nil {
			// The model failed mid-turn. Persist what we have so the
			// user's message survives into the next turn.
			if commitErr := state.Commit(ctx, o.saver); commitErr != nil {
				err = errors.Join(err, fmt.Errorf("committing after model failure: %w", commitErr))
			}
			return err
		}

		if len(resp.ToolRequests) == 0 {
			text := resp.Text
			if text == "" {
				o.logger.Warn("model returned empty final answer")
				text = FallbackMessage
				if !emit(ctx, events, Event{Kind: EventTextDelta, Delta: text}) {
					return ctx.Err()
				}
			}
			if err := state.Append(conversation.NewAssistantMessage(text)); err != nil {
				return fmt.Errorf("appending assistant message: %w", err)
			}
			if err := state.Commit(ctx, o.saver); err != nil {
				return fmt.Errorf("committing turn: %w", err)
			}
			emit(ctx, events, Event{Kind: EventTurnDone})
			return nil
		}

		// Text accompanying tool requests was already streamed; append
		// it so the transcript and the next model round keep it.
		if resp.Text != "" {
			if err := state.Append(conversation.NewAssistantMessage(resp.Text)); err != nil {
				return fmt.Errorf("appending assistant message: %w", err)
			}
		}
		if err := o.dispatch(ctx, state, resp.ToolRequests, events); err != nil {
			return err
		}
	}

	if commitErr := state.Commit(ctx, o.saver); commitErr != nil {
		return errors.Join(ErrMaxTurns, fmt.Errorf("committing after turn limit: %w", commitErr))
	}
	return ErrMaxTurns
}

func (o *Orchestrator) generate(ctx context.Context, state *conversation.State, events chan<- Event) (*Response, error) {
	msgs := state.Messages()
	history := make([]*ai.Message, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, m.AIMessage())
	}

	return o.model.Generate(ctx, &Request{
		System:   SystemPrompt,
		Messages: history,
		Tools:    o.toolRefs,
		Stream: func(ctx context.Context, delta string) error {
			if !emit(ctx, events, Event{Kind: EventTextDelta, Delta: delta}) {
				return ctx.Err()
			}
			return nil
		},
	})
}

// dispatch executes the model's tool requests in order. Every call gets
// a result message, failed ones with an error payload, so the history
// the model sees next round stays well formed.
func (o *Orchestrator) dispatch(ctx context.Context, state *conversation.State, requests []*ai.ToolRequest, events chan<- Event) error {
	for _, req := range requests {
		if !emit(ctx, events, Event{Kind: EventToolPending, ToolName: req.Name, CallID: req.Ref}) {
			return ctx.Err()
		}
		if err := state.Append(conversation.NewToolCallMessage(req.Ref, req.Name, req.Input)); err != nil {
			return fmt.Errorf("appending tool call: %w", err)
		}

		output := o.execute(ctx, req)

		if err := state.Append(conversation.NewToolResultMessage(req.Ref, req.Name, output)); err != nil {
			return fmt.Errorf("appending tool result: %w", err)
		}
		if !emit(ctx, events, Event{Kind: EventToolDone, ToolName: req.Name, CallID: req.Ref}) {
			return ctx.Err()
		}
	}
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, req *ai.ToolRequest) any {
	tool, ok := o.registry.Lookup(req.Name)
	if !ok {
		o.logger.Error("model requested unknown tool", "tool", req.Name, "error", ErrToolNotFound)
		return toolErrorPayload
	}

	raw, err := json.Marshal(req.Input)
	if err != nil {
		o.logger.Error("tool input not serializable", "tool", req.Name, "error", err)
		return toolErrorPayload
	}

	output, err := tool.Execute(ctx, raw)
	if err != nil {
		o.logger.Error("tool execution failed", "tool", req.Name, "error", err)
		return toolErrorPayload
	}
	return output
}
