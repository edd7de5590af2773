package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/remembra/remembra/internal/auth"
	"github.com/remembra/remembra/internal/knowledge"
	"github.com/remembra/remembra/internal/log"
)

type mockCreator struct {
	created   []knowledge.Resource
	createErr error
}

func (m *mockCreator) CreateResource(ctx context.Context, ownerID, title, content string) (knowledge.Resource, error) {
	if m.createErr != nil {
		return knowledge.Resource{}, m.createErr
	}
	res := knowledge.Resource{ID: uuid.New(), OwnerID: ownerID, Title: title, Content: content}
	m.created = append(m.created, res)
	return res, nil
}

type mockSearcher struct {
	results []knowledge.Result
	err     error
	queries []string
}

func (m *mockSearcher) Retrieve(ctx context.Context, ownerID, query string, opts ...knowledge.RetrieveOption) ([]knowledge.Result, error) {
	m.queries = append(m.queries, query)
	return m.results, m.err
}

type mockLister struct {
	resources []knowledge.Resource
	err       error
}

func (m *mockLister) ListByOwner(ctx context.Context, ownerID string) ([]knowledge.Resource, error) {
	return m.resources, m.err
}

type mockSummarizer struct {
	summary string
	err     error
	calls   int
}

func (m *mockSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	m.calls++
	return m.summary, m.err
}

func ownerCtx(t *testing.T) context.Context {
	t.Helper()
	return auth.WithOwnerID(context.Background(), "owner-1")
}

func TestCreateResourceToolStores(t *testing.T) {
	creator := &mockCreator{}
	summarizer := &mockSummarizer{summary: "Favorite color"}
	tool := NewCreateResourceTool(creator, summarizer, log.NewNop())

	raw := json.RawMessage(`{"content":"My favorite color is blue.","title":"Color"}`)
	out, err := tool.Execute(ownerCtx(t), raw)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	result := out.(CreateResourceOutput)
	if result.Title != "Color" {
		t.Errorf("Title = %q, want %q", result.Title, "Color")
	}
	if summarizer.calls != 0 {
		t.Error("summarizer should not be called when a title is given")
	}
	if len(creator.created) != 1 {
		t.Fatalf("created %d resources, want 1", len(creator.created))
	}
	if creator.created[0].OwnerID != "owner-1" {
		t.Errorf("OwnerID = %q, want %q", creator.created[0].OwnerID, "owner-1")
	}
}

func TestCreateResourceToolSummarizesMissingTitle(t *testing.T) {
	creator := &mockCreator{}
	summarizer := &mockSummarizer{summary: "Favorite color is blue"}
	tool := NewCreateResourceTool(creator, summarizer, log.NewNop())

	raw := json.RawMessage(`{"content":"My favorite color is blue."}`)
	out, err := tool.Execute(ownerCtx(t), raw)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if got := out.(CreateResourceOutput).Title; got != "Favorite color is blue" {
		t.Errorf("Title = %q, want summarized title", got)
	}
	if summarizer.calls != 1 {
		t.Errorf("summarizer calls = %d, want 1", summarizer.calls)
	}
}

func TestCreateResourceToolFallbackTitle(t *testing.T) {
	creator := &mockCreator{}
	summarizer := &mockSummarizer{err: errors.New("model unavailable")}
	tool := NewCreateResourceTool(creator, summarizer, log.NewNop())

	raw := json.RawMessage(`{"content":"First line here.\nSecond line."}`)
	out, err := tool.Execute(ownerCtx(t), raw)
	if err != nil {
		t.Fatalf("Execute() should not fail when summarization fails: %v", err)
	}

	if got := out.(CreateResourceOutput).Title; got != "First line here." {
		t.Errorf("Title = %q, want first content line", got)
	}
}

func TestCreateResourceToolRequiresOwner(t *testing.T) {
	tool := NewCreateResourceTool(&mockCreator{}, &mockSummarizer{}, log.NewNop())

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"content":"x"}`))
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("Execute() error = %v, want ErrUnauthorized", err)
	}
}

func TestGetInformationToolFindsChunks(t *testing.T) {
	searcher := &mockSearcher{results: []knowledge.Result{
		{ChunkID: uuid.New(), Content: "Favorite color is blue.", Similarity: 0.91},
		{ChunkID: uuid.New(), Content: "Lives in Lisbon.", Similarity: 0.62},
	}}
	tool := NewGetInformationTool(searcher, log.NewNop())

	out, err := tool.Execute(ownerCtx(t), json.RawMessage(`{"question":"what is my favorite color?"}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	result := out.(GetInformationOutput)
	if !result.Found {
		t.Error("Found = false, want true")
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(result.Chunks))
	}
	if result.Chunks[0] != "Favorite color is blue." {
		t.Errorf("Chunks[0] = %q", result.Chunks[0])
	}
	if len(searcher.queries) != 1 || searcher.queries[0] != "what is my favorite color?" {
		t.Errorf("queries = %v", searcher.queries)
	}
}

func TestGetInformationToolNoResults(t *testing.T) {
	tool := NewGetInformationTool(&mockSearcher{}, log.NewNop())

	out, err := tool.Execute(ownerCtx(t), json.RawMessage(`{"question":"anything?"}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	result := out.(GetInformationOutput)
	if result.Found {
		t.Error("Found = true, want false")
	}
	if result.Message == "" {
		t.Error("Message should explain that nothing was found")
	}
}

func TestGetInformationToolRequiresOwner(t *testing.T) {
	tool := NewGetInformationTool(&mockSearcher{}, log.NewNop())

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"question":"q"}`))
	if !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("Execute() error = %v, want ErrUnauthorized", err)
	}
}

func TestGetUserResourcesTool(t *testing.T) {
	lister := &mockLister{resources: []knowledge.Resource{
		{ID: uuid.New(), Title: "Favorite color"},
		{ID: uuid.New(), Title: "Home city"},
	}}
	tool := NewGetUserResourcesTool(lister)

	out, err := tool.Execute(ownerCtx(t), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	result := out.(GetUserResourcesOutput)
	if len(result.Resources) != 2 {
		t.Fatalf("got %d resources, want 2", len(result.Resources))
	}
	if result.Resources[0].Title != "Favorite color" {
		t.Errorf("Resources[0].Title = %q", result.Resources[0].Title)
	}
}

func TestGetUserResourcesToolEmpty(t *testing.T) {
	tool := NewGetUserResourcesTool(&mockLister{})

	out, err := tool.Execute(ownerCtx(t), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := out.(GetUserResourcesOutput).Resources; len(got) != 0 {
		t.Errorf("got %d resources, want 0", len(got))
	}
}

func TestFallbackTitleTruncatesOnRuneBoundary(t *testing.T) {
	long := ""
	for range 30 {
		long += "知識庫"
	}
	title := fallbackTitle(long)
	if got := len([]rune(title)); got != fallbackTitleMaxRunes {
		t.Errorf("rune count = %d, want %d", got, fallbackTitleMaxRunes)
	}
}
