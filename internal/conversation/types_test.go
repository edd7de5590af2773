package conversation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
)

func TestMessageText(t *testing.T) {
	msg := NewUserMessage("hello there")
	if got := msg.Text(); got != "hello there" {
		t.Errorf("Text() = %q", got)
	}
}

func TestToolCallRoundTrip(t *testing.T) {
	call := NewToolCallMessage("call-7", "createResource", map[string]any{"content": "fact"})

	reqs := call.ToolRequests()
	if len(reqs) != 1 {
		t.Fatalf("got %d requests", len(reqs))
	}
	if reqs[0].Ref != "call-7" || reqs[0].Name != "createResource" {
		t.Errorf("request = %+v", reqs[0])
	}

	result := NewToolResultMessage("call-7", "createResource", "saved")
	resps := result.ToolResponses()
	if len(resps) != 1 || resps[0].Ref != "call-7" {
		t.Fatalf("responses = %v", resps)
	}
}

func TestMessageContentJSONRoundTrip(t *testing.T) {
	// Persistence encodes parts as JSONB; tool parts must survive.
	msg := NewToolCallMessage("call-1", "getInformation", map[string]any{"question": "favorite color"})

	data, err := json.Marshal(msg.Content)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded []*ai.Part
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 1 || !decoded[0].IsToolRequest() {
		t.Fatalf("decoded parts lost tool request: %v", decoded)
	}
	if decoded[0].ToolRequest.Name != "getInformation" {
		t.Errorf("tool name = %q", decoded[0].ToolRequest.Name)
	}
}

func TestAIMessageRoleMapping(t *testing.T) {
	tests := []struct {
		role string
		want ai.Role
	}{
		{RoleUser, ai.RoleUser},
		{RoleAssistant, ai.RoleModel},
		{RoleTool, ai.RoleTool},
		{RoleSystem, ai.RoleSystem},
	}
	for _, tt := range tests {
		msg := Message{Role: tt.role, Content: []*ai.Part{ai.NewTextPart("x")}}
		if got := msg.AIMessage().Role; got != tt.want {
			t.Errorf("AIMessage(%s).Role = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestDeriveTitle(t *testing.T) {
	if got := DeriveTitle("  short question  "); got != "short question" {
		t.Errorf("DeriveTitle = %q", got)
	}

	long := strings.Repeat("語", 150)
	got := DeriveTitle(long)
	if len([]rune(got)) != TitleMaxRunes {
		t.Errorf("truncated title has %d runes", len([]rune(got)))
	}
}

func TestPathFor(t *testing.T) {
	id := uuid.New()
	if got := PathFor(id); got != "/chat/"+id.String() {
		t.Errorf("PathFor = %q", got)
	}
}

func TestTranscript(t *testing.T) {
	conv := newTestConversation()
	conv.Messages = []Message{
		NewUserMessage("remember my favorite color is blue"),
		NewToolCallMessage("call-1", "createResource", nil),
		NewToolResultMessage("call-1", "createResource", "ok"),
		NewAssistantMessage("Got it, saved."),
	}

	out := Transcript(conv)
	if !strings.Contains(out, "You: remember my favorite color is blue") {
		t.Errorf("user line missing:\n%s", out)
	}
	if !strings.Contains(out, "[saving to knowledge base]") {
		t.Errorf("tool status line missing:\n%s", out)
	}
	if !strings.Contains(out, "Assistant: Got it, saved.") {
		t.Errorf("assistant line missing:\n%s", out)
	}
	if strings.Contains(out, "call-1") {
		t.Errorf("raw tool payload leaked:\n%s", out)
	}
}
