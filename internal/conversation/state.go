package conversation

import (
	"context"
	"fmt"
)

// Saver persists a conversation's unsaved tail. Implemented by Store;
// tests substitute a mock.
type Saver interface {
	SaveConversation(ctx context.Context, conv *Conversation, unsaved []Message) error
}

// State is the mutable conversation state owned by exactly one in-flight
// turn. It is deliberately not synchronized: a second concurrent turn on
// the same conversation is a caller bug, and the CLI path guards against
// it with a process-level file lock.
//
// Messages are append-only. After Commit the state is sealed and further
// appends fail with ErrCommitted.
type State struct {
	conv      *Conversation
	saved     int // messages already persisted
	committed bool
}

// NewState wraps a loaded conversation for one turn. All messages
// already present are considered persisted.
func NewState(conv *Conversation) *State {
	return &State{
		conv:  conv,
		saved: len(conv.Messages),
	}
}

// Append adds a message to the in-turn history, preserving causal order.
// Fails after Commit.
func (s *State) Append(msg Message) error {
	if s.committed {
		return ErrCommitted
	}
	if msg.Role == "" || len(msg.Content) == 0 {
		return fmt.Errorf("append: message missing role or content")
	}
	s.conv.Messages = append(s.conv.Messages, msg)
	return nil
}

// Messages returns a snapshot copy of the full history.
func (s *State) Messages() []Message {
	out := make([]Message, len(s.conv.Messages))
	copy(out, s.conv.Messages)
	return out
}

// Len returns the number of messages in the history.
func (s *State) Len() int {
	return len(s.conv.Messages)
}

// Unsaved returns the messages appended since the last persistence.
func (s *State) Unsaved() []Message {
	out := make([]Message, len(s.conv.Messages)-s.saved)
	copy(out, s.conv.Messages[s.saved:])
	return out
}

// Conversation returns the underlying conversation.
func (s *State) Conversation() *Conversation {
	return s.conv
}

// Committed reports whether the turn has been sealed.
func (s *State) Committed() bool {
	return s.committed
}

// Commit validates pairing, persists the unsaved tail through the saver,
// and seals the state. A turn commits at most once.
func (s *State) Commit(ctx context.Context, saver Saver) error {
	if s.committed {
		return ErrCommitted
	}
	if err := ValidatePairing(s.conv.Messages); err != nil {
		return err
	}

	unsaved := s.Unsaved()
	if len(unsaved) > 0 {
		if err := saver.SaveConversation(ctx, s.conv, unsaved); err != nil {
			return fmt.Errorf("saving conversation: %w", err)
		}
		s.saved = len(s.conv.Messages)
	}
	s.committed = true
	return nil
}

// ValidatePairing checks the tool invariant over a message sequence:
// every assistant message carrying tool requests is immediately followed
// by a tool message answering exactly those call IDs, and no tool
// message appears without a preceding call.
func ValidatePairing(msgs []Message) error {
	for i := 0; i < len(msgs); i++ {
		reqs := msgs[i].ToolRequests()
		if msgs[i].Role == RoleTool {
			return fmt.Errorf("%w: tool result at %d has no preceding call", ErrPairing, i)
		}
		if len(reqs) == 0 {
			continue
		}

		if i+1 >= len(msgs) || msgs[i+1].Role != RoleTool {
			return fmt.Errorf("%w: call at %d has no result", ErrPairing, i)
		}
		resps := msgs[i+1].ToolResponses()
		if len(resps) != len(reqs) {
			return fmt.Errorf("%w: call at %d has %d requests but %d responses", ErrPairing, i, len(reqs), len(resps))
		}
		for j, req := range reqs {
			if resps[j].Ref != req.Ref {
				return fmt.Errorf("%w: result ref %q does not match call ref %q", ErrPairing, resps[j].Ref, req.Ref)
			}
		}
		i++ // the result message is consumed by this pair
	}
	return nil
}
