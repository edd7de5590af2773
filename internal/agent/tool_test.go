package agent

import (
	"context"
	"encoding/json"
	"testing"
)

type echoInput struct {
	Text  string `json:"text"`
	Count int    `json:"count,omitempty"`
}

type echoOutput struct {
	Echoed string `json:"echoed"`
}

func newEchoTool() *ExecutableTool {
	return NewTool(
		"echo",
		"Echoes text back.",
		func(ctx context.Context, in echoInput) (echoOutput, error) {
			return echoOutput{Echoed: in.Text}, nil
		},
	)
}

func TestNewToolMetadata(t *testing.T) {
	tool := newEchoTool()

	if tool.Name() != "echo" {
		t.Errorf("Name() = %q, want %q", tool.Name(), "echo")
	}
	if tool.Description() != "Echoes text back." {
		t.Errorf("Description() = %q", tool.Description())
	}

	schema := tool.InputSchema()
	if schema == nil {
		t.Fatal("InputSchema() returned nil")
	}
	if _, ok := schema.Properties.Get("text"); !ok {
		t.Error("schema is missing the text property")
	}
	if _, ok := schema.Properties.Get("count"); !ok {
		t.Error("schema is missing the count property")
	}
}

func TestToolExecute(t *testing.T) {
	tool := newEchoTool()

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"text":"hello"}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	echoed, ok := out.(echoOutput)
	if !ok {
		t.Fatalf("Execute() returned %T, want echoOutput", out)
	}
	if echoed.Echoed != "hello" {
		t.Errorf("Echoed = %q, want %q", echoed.Echoed, "hello")
	}
}

func TestToolExecuteRejectsUnknownFields(t *testing.T) {
	tool := newEchoTool()

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"text":"hi","bogus":1}`))
	if err == nil {
		t.Fatal("Execute() with unknown field should fail")
	}
}

func TestToolExecuteEmptyArguments(t *testing.T) {
	tool := newEchoTool()

	for _, raw := range []json.RawMessage{nil, json.RawMessage(`null`)} {
		out, err := tool.Execute(context.Background(), raw)
		if err != nil {
			t.Fatalf("Execute(%q) error = %v", raw, err)
		}
		if out.(echoOutput).Echoed != "" {
			t.Errorf("Execute(%q) should see zero-value input", raw)
		}
	}
}

func TestToolExecuteMalformedJSON(t *testing.T) {
	tool := newEchoTool()

	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"text":`)); err == nil {
		t.Fatal("Execute() with malformed JSON should fail")
	}
}
