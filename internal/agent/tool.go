package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/invopop/jsonschema"
)

// Tool is a dispatchable capability the model may invoke. Tools carry
// their own argument schema so the model sees typed declarations.
type Tool interface {
	// Name returns the unique identifier of the tool.
	Name() string

	// Description tells the model when to call the tool.
	Description() string

	// InputSchema returns the JSON schema of the tool's arguments.
	InputSchema() *jsonschema.Schema

	// Execute runs the tool with raw JSON arguments as produced by the
	// model. Unknown fields are rejected.
	Execute(ctx context.Context, input json.RawMessage) (any, error)

	// Define registers the tool with Genkit so generate calls can
	// reference it. The returned handle is only used for schema
	// surfacing; execution stays with the orchestrator.
	Define(g *genkit.Genkit) ai.Tool
}

// ExecutableTool implements Tool with type erasure so heterogeneous
// tools share one registry while handlers stay compile-time typed.
type ExecutableTool struct {
	name        string
	description string
	schema      *jsonschema.Schema

	handler func(ctx context.Context, raw json.RawMessage) (any, error)
	define  func(g *genkit.Genkit) ai.Tool
}

// Name returns the tool's unique identifier.
func (t *ExecutableTool) Name() string { return t.name }

// Description returns the tool's functionality description.
func (t *ExecutableTool) Description() string { return t.description }

// InputSchema returns the reflected argument schema.
func (t *ExecutableTool) InputSchema() *jsonschema.Schema { return t.schema }

// Execute runs the tool handler against raw JSON arguments.
func (t *ExecutableTool) Execute(ctx context.Context, input json.RawMessage) (any, error) {
	return t.handler(ctx, input)
}

// Define registers the tool with Genkit.
func (t *ExecutableTool) Define(g *genkit.Genkit) ai.Tool {
	return t.define(g)
}

// NewTool creates a tool with type-safe input and output. The argument
// schema is reflected from In once at construction.
//
// Example:
//
//	tool := agent.NewTool(
//	    "getInformation",
//	    "Search the user's knowledge base.",
//	    func(ctx context.Context, in GetInformationInput) (GetInformationOutput, error) {
//	        ...
//	    },
//	)
func NewTool[In, Out any](
	name string,
	description string,
	handler func(ctx context.Context, input In) (Out, error),
) *ExecutableTool {
	reflector := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	var zeroIn In
	schema := reflector.Reflect(&zeroIn)

	rawHandler := func(ctx context.Context, raw json.RawMessage) (any, error) {
		var input In
		if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&input); err != nil {
				return nil, fmt.Errorf("decoding %s arguments: %w", name, err)
			}
		}
		return handler(ctx, input)
	}

	return &ExecutableTool{
		name:        name,
		description: description,
		schema:      schema,
		handler:     rawHandler,
		define: func(g *genkit.Genkit) ai.Tool {
			return genkit.DefineTool(g, name, description,
				func(tc *ai.ToolContext, input In) (Out, error) {
					return handler(tc, input)
				})
		},
	}
}
