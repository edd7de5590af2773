package conversation

import (
	"fmt"
	"strings"
)

// Transcript renders the persisted message sequence as a user-facing
// text transcript. Tool activity appears as status lines rather than raw
// payloads.
func Transcript(conv *Conversation) string {
	var b strings.Builder
	for _, msg := range conv.Messages {
		switch msg.Role {
		case RoleUser:
			fmt.Fprintf(&b, "You: %s\n", msg.Text())
		case RoleAssistant:
			if reqs := msg.ToolRequests(); len(reqs) > 0 {
				for _, req := range reqs {
					fmt.Fprintf(&b, "[%s]\n", toolStatusLine(req.Name))
				}
				continue
			}
			if text := msg.Text(); text != "" {
				fmt.Fprintf(&b, "Assistant: %s\n", text)
			}
		case RoleTool:
			// Results are folded into the preceding status line.
		}
	}
	return b.String()
}

func toolStatusLine(name string) string {
	switch name {
	case "createResource":
		return "saving to knowledge base"
	case "getInformation":
		return "searching knowledge base"
	case "getUserResources":
		return "listing saved resources"
	default:
		return "running " + name
	}
}
