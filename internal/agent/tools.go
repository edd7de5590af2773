package agent

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/remembra/remembra/internal/auth"
	"github.com/remembra/remembra/internal/knowledge"
	"github.com/remembra/remembra/internal/log"
)

// ResourceCreator stores new knowledge. Satisfied by *knowledge.Store.
type ResourceCreator interface {
	CreateResource(ctx context.Context, ownerID, title, content string) (knowledge.Resource, error)
}

// ResourceLister enumerates stored knowledge. Satisfied by
// *knowledge.Store.
type ResourceLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]knowledge.Resource, error)
}

// Searcher answers questions against stored knowledge. Satisfied by
// *knowledge.Retriever.
type Searcher interface {
	Retrieve(ctx context.Context, ownerID, query string, opts ...knowledge.RetrieveOption) ([]knowledge.Result, error)
}

// Summarizer derives a short title from content. Satisfied by Model.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// CreateResourceInput is the argument schema of the createResource tool.
type CreateResourceInput struct {
	Content string `json:"content" jsonschema_description:"The exact information to remember, in the user's words."`
	Title   string `json:"title,omitempty" jsonschema_description:"Optional short title. Omit to have one generated."`
}

// CreateResourceOutput is returned to the model after storing.
type CreateResourceOutput struct {
	ResourceID string `json:"resourceId"`
	Title      string `json:"title"`
	Message    string `json:"message"`
}

// NewCreateResourceTool builds the tool that persists user-stated facts
// into the knowledge base. A missing title is summarized from the
// content; if summarization fails the first line of content is used so
// ingestion never blocks on a second model call.
func NewCreateResourceTool(creator ResourceCreator, summarizer Summarizer, logger log.Logger) *ExecutableTool {
	return NewTool(
		"createResource",
		"Store information in the user's personal knowledge base. "+
			"Call this whenever the user shares a fact, preference, or detail worth remembering, "+
			"even without an explicit request to remember it.",
		func(ctx context.Context, in CreateResourceInput) (CreateResourceOutput, error) {
			ownerID, err := auth.Require(ctx)
			if err != nil {
				return CreateResourceOutput{}, err
			}

			title := strings.TrimSpace(in.Title)
			if title == "" {
				title, err = summarizer.Summarize(ctx, in.Content)
				if err != nil {
					logger.Warn("title summarization failed, using content prefix", "error", err)
					title = fallbackTitle(in.Content)
				}
			}

			res, err := creator.CreateResource(ctx, ownerID, title, in.Content)
			if err != nil {
				return CreateResourceOutput{}, fmt.Errorf("creating resource: %w", err)
			}

			logger.Info("resource stored", "resource_id", res.ID, "title", res.Title)
			return CreateResourceOutput{
				ResourceID: res.ID.String(),
				Title:      res.Title,
				Message:    "Resource created and embedded.",
			}, nil
		},
	)
}

// GetInformationInput is the argument schema of the getInformation tool.
type GetInformationInput struct {
	Question string `json:"question" jsonschema_description:"The question to answer from the knowledge base."`
}

// GetInformationOutput carries retrieved chunks back to the model.
type GetInformationOutput struct {
	Found   bool     `json:"found"`
	Chunks  []string `json:"chunks,omitempty"`
	Message string   `json:"message,omitempty"`
}

// NewGetInformationTool builds the tool that searches the knowledge
// base. The model must call it before answering personal questions so
// answers stay grounded in stored facts. opts tune retrieval for every
// call of this tool.
func NewGetInformationTool(searcher Searcher, logger log.Logger, opts ...knowledge.RetrieveOption) *ExecutableTool {
	return NewTool(
		"getInformation",
		"Search the user's personal knowledge base to answer their question. "+
			"Always call this before answering questions about the user.",
		func(ctx context.Context, in GetInformationInput) (GetInformationOutput, error) {
			ownerID, err := auth.Require(ctx)
			if err != nil {
				return GetInformationOutput{}, err
			}

			results, err := searcher.Retrieve(ctx, ownerID, in.Question, opts...)
			if err != nil {
				return GetInformationOutput{}, fmt.Errorf("retrieving: %w", err)
			}

			if len(results) == 0 {
				return GetInformationOutput{
					Found:   false,
					Message: "No relevant information found in the knowledge base.",
				}, nil
			}

			chunks := make([]string, 0, len(results))
			for _, r := range results {
				chunks = append(chunks, r.Content)
			}
			logger.Debug("retrieval hit", "question_len", len(in.Question), "chunks", len(chunks))
			return GetInformationOutput{Found: true, Chunks: chunks}, nil
		},
	)
}

// GetUserResourcesInput is the (empty) argument schema of the
// getUserResources tool.
type GetUserResourcesInput struct{}

// ResourceSummary is one entry in the getUserResources listing.
type ResourceSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
}

// GetUserResourcesOutput lists what the knowledge base holds.
type GetUserResourcesOutput struct {
	Resources []ResourceSummary `json:"resources"`
}

// NewGetUserResourcesTool builds the tool that lists stored resources,
// letting the model answer "what do you know about me" style questions.
func NewGetUserResourcesTool(lister ResourceLister) *ExecutableTool {
	return NewTool(
		"getUserResources",
		"List the titles of everything stored in the user's knowledge base.",
		func(ctx context.Context, _ GetUserResourcesInput) (GetUserResourcesOutput, error) {
			ownerID, err := auth.Require(ctx)
			if err != nil {
				return GetUserResourcesOutput{}, err
			}

			resources, err := lister.ListByOwner(ctx, ownerID)
			if err != nil {
				return GetUserResourcesOutput{}, fmt.Errorf("listing resources: %w", err)
			}

			out := GetUserResourcesOutput{Resources: make([]ResourceSummary, 0, len(resources))}
			for _, r := range resources {
				out.Resources = append(out.Resources, ResourceSummary{
					ID:        r.ID.String(),
					Title:     r.Title,
					CreatedAt: r.CreatedAt.UTC().Format("2006-01-02"),
				})
			}
			return out, nil
		},
	)
}

const fallbackTitleMaxRunes = 80

func fallbackTitle(content string) string {
	line := strings.TrimSpace(content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if utf8.RuneCountInString(line) <= fallbackTitleMaxRunes {
		return line
	}
	runes := []rune(line)
	return string(runes[:fallbackTitleMaxRunes])
}
