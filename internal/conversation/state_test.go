package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

// mockSaver records SaveConversation calls.
type mockSaver struct {
	saveErr error
	calls   int
	saved   []Message
}

func (m *mockSaver) SaveConversation(ctx context.Context, conv *Conversation, unsaved []Message) error {
	m.calls++
	m.saved = append(m.saved, unsaved...)
	return m.saveErr
}

func newTestConversation() *Conversation {
	return &Conversation{ID: uuid.New(), OwnerID: "user-1"}
}

func TestStateAppendPreservesOrder(t *testing.T) {
	state := NewState(newTestConversation())

	msgs := []Message{
		NewUserMessage("first"),
		NewAssistantMessage("second"),
		NewUserMessage("third"),
	}
	for _, m := range msgs {
		if err := state.Append(m); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got := state.Messages()
	if len(got) != 3 {
		t.Fatalf("Len = %d", len(got))
	}
	for i := range msgs {
		if got[i].ID != msgs[i].ID {
			t.Errorf("message %d out of order", i)
		}
	}
}

func TestStateAppendAfterCommit(t *testing.T) {
	state := NewState(newTestConversation())
	if err := state.Append(NewUserMessage("hi")); err != nil {
		t.Fatal(err)
	}
	if err := state.Commit(context.Background(), &mockSaver{}); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if err := state.Append(NewUserMessage("late")); !errors.Is(err, ErrCommitted) {
		t.Fatalf("Append after commit = %v, want ErrCommitted", err)
	}
	if err := state.Commit(context.Background(), &mockSaver{}); !errors.Is(err, ErrCommitted) {
		t.Fatalf("second Commit = %v, want ErrCommitted", err)
	}
}

func TestStateUnsavedTracksTail(t *testing.T) {
	conv := newTestConversation()
	conv.Messages = []Message{NewUserMessage("persisted")}
	state := NewState(conv)

	if n := len(state.Unsaved()); n != 0 {
		t.Fatalf("Unsaved on fresh state = %d", n)
	}

	appended := NewUserMessage("new")
	if err := state.Append(appended); err != nil {
		t.Fatal(err)
	}

	unsaved := state.Unsaved()
	if len(unsaved) != 1 || unsaved[0].ID != appended.ID {
		t.Fatalf("Unsaved = %v", unsaved)
	}
}

func TestStateCommitPersistsOnlyUnsaved(t *testing.T) {
	conv := newTestConversation()
	conv.Messages = []Message{NewUserMessage("persisted")}
	state := NewState(conv)

	appended := NewAssistantMessage("reply")
	if err := state.Append(appended); err != nil {
		t.Fatal(err)
	}

	saver := &mockSaver{}
	if err := state.Commit(context.Background(), saver); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if saver.calls != 1 {
		t.Fatalf("saver called %d times", saver.calls)
	}
	if len(saver.saved) != 1 || saver.saved[0].ID != appended.ID {
		t.Errorf("saved wrong tail: %v", saver.saved)
	}
}

func TestStateCommitSaverFailure(t *testing.T) {
	state := NewState(newTestConversation())
	if err := state.Append(NewUserMessage("hi")); err != nil {
		t.Fatal(err)
	}

	saver := &mockSaver{saveErr: errors.New("connection lost")}
	if err := state.Commit(context.Background(), saver); err == nil {
		t.Fatal("expected commit failure")
	}
	if state.Committed() {
		t.Error("state sealed despite failed save")
	}
	// A retry with a healthy saver succeeds.
	if err := state.Commit(context.Background(), &mockSaver{}); err != nil {
		t.Fatalf("retry Commit() error = %v", err)
	}
}

func TestStateMessagesIsSnapshot(t *testing.T) {
	state := NewState(newTestConversation())
	if err := state.Append(NewUserMessage("hi")); err != nil {
		t.Fatal(err)
	}

	snapshot := state.Messages()
	snapshot[0] = NewUserMessage("mutated")

	if state.Messages()[0].Text() != "hi" {
		t.Error("snapshot mutation leaked into state")
	}
}

func TestValidatePairing(t *testing.T) {
	call := NewToolCallMessage("call-1", "getInformation", map[string]any{"question": "q"})
	result := NewToolResultMessage("call-1", "getInformation", "answer")

	tests := []struct {
		name    string
		msgs    []Message
		wantErr bool
	}{
		{"empty", nil, false},
		{"text only", []Message{NewUserMessage("hi"), NewAssistantMessage("hello")}, false},
		{"paired call", []Message{NewUserMessage("hi"), call, result, NewAssistantMessage("done")}, false},
		{"call without result", []Message{NewUserMessage("hi"), call}, true},
		{"call followed by text", []Message{call, NewAssistantMessage("oops")}, true},
		{"orphan result", []Message{NewUserMessage("hi"), result}, true},
		{"mismatched ref", []Message{call, NewToolResultMessage("call-2", "getInformation", "x")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePairing(tt.msgs)
			if tt.wantErr && !errors.Is(err, ErrPairing) {
				t.Errorf("error = %v, want ErrPairing", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error = %v", err)
			}
		})
	}
}

func TestCommitRejectsUnpairedCall(t *testing.T) {
	state := NewState(newTestConversation())
	if err := state.Append(NewToolCallMessage("call-1", "createResource", nil)); err != nil {
		t.Fatal(err)
	}

	if err := state.Commit(context.Background(), &mockSaver{}); !errors.Is(err, ErrPairing) {
		t.Fatalf("Commit() = %v, want ErrPairing", err)
	}
}
