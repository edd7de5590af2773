// Package conversation models multi-turn dialogue: append-only message
// history, turn-owned state, and PostgreSQL persistence at turn
// boundaries.
package conversation

import (
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
)

// Role constants define valid message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
)

// TitleMaxRunes caps a derived conversation title.
const TitleMaxRunes = 100

// Message is a single conversation entry. Content holds Genkit parts:
// text for user/assistant messages, a tool-request part for an assistant
// tool call, a tool-response part for its result. Messages are immutable
// once appended.
type Message struct {
	ID        uuid.UUID
	Role      string
	Content   []*ai.Part
	CreatedAt time.Time
}

// Conversation is an ordered, append-only message sequence owned by one
// user.
type Conversation struct {
	ID           uuid.UUID
	OwnerID      string
	Title        string
	Path         string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Messages     []Message
}

// NewUserMessage builds a user text message.
func NewUserMessage(text string) Message {
	return Message{
		ID:        uuid.New(),
		Role:      RoleUser,
		Content:   []*ai.Part{ai.NewTextPart(text)},
		CreatedAt: time.Now().UTC(),
	}
}

// NewAssistantMessage builds an assistant text message.
func NewAssistantMessage(text string) Message {
	return Message{
		ID:        uuid.New(),
		Role:      RoleAssistant,
		Content:   []*ai.Part{ai.NewTextPart(text)},
		CreatedAt: time.Now().UTC(),
	}
}

// NewToolCallMessage builds the assistant message recording a tool
// invocation. callID links the call to its result message.
func NewToolCallMessage(callID, name string, input any) Message {
	return Message{
		ID:   uuid.New(),
		Role: RoleAssistant,
		Content: []*ai.Part{ai.NewToolRequestPart(&ai.ToolRequest{
			Ref:   callID,
			Name:  name,
			Input: input,
		})},
		CreatedAt: time.Now().UTC(),
	}
}

// NewToolResultMessage builds the tool message carrying the result for
// the call with the same callID.
func NewToolResultMessage(callID, name string, output any) Message {
	return Message{
		ID:   uuid.New(),
		Role: RoleTool,
		Content: []*ai.Part{ai.NewToolResponsePart(&ai.ToolResponse{
			Ref:    callID,
			Name:   name,
			Output: output,
		})},
		CreatedAt: time.Now().UTC(),
	}
}

// Text returns the concatenated text parts of the message.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Content {
		if p.IsText() {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// ToolRequests returns the tool-request parts of the message, if any.
func (m Message) ToolRequests() []*ai.ToolRequest {
	var reqs []*ai.ToolRequest
	for _, p := range m.Content {
		if p.IsToolRequest() {
			reqs = append(reqs, p.ToolRequest)
		}
	}
	return reqs
}

// ToolResponses returns the tool-response parts of the message, if any.
func (m Message) ToolResponses() []*ai.ToolResponse {
	var resps []*ai.ToolResponse
	for _, p := range m.Content {
		if p.IsToolResponse() {
			resps = append(resps, p.ToolResponse)
		}
	}
	return resps
}

// AIMessage converts to the Genkit message shape for model calls.
// Assistant maps to the model role.
func (m Message) AIMessage() *ai.Message {
	role := ai.RoleUser
	switch m.Role {
	case RoleAssistant:
		role = ai.RoleModel
	case RoleTool:
		role = ai.RoleTool
	case RoleSystem:
		role = ai.RoleSystem
	}
	return &ai.Message{Role: role, Content: m.Content}
}

// DeriveTitle produces a conversation title from the first user message,
// truncated to TitleMaxRunes.
func DeriveTitle(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > TitleMaxRunes {
		return string(runes[:TitleMaxRunes])
	}
	return text
}

// PathFor returns the canonical navigation path for a conversation.
func PathFor(id uuid.UUID) string {
	return "/chat/" + id.String()
}
