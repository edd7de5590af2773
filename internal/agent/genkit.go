package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/remembra/remembra/internal/log"
)

// GenkitModel adapts a Genkit-registered model to the Model interface.
// Calls are rate limited client-side so bursts of tool-call rounds stay
// under the provider quota.
type GenkitModel struct {
	g           *genkit.Genkit
	modelName   string
	temperature float64
	limiter     *rate.Limiter
	logger      log.Logger
}

// NewGenkitModel creates a model adapter. modelName is the full
// provider-qualified name, e.g. "googleai/gemini-2.5-flash". rpm bounds
// requests per minute; zero disables limiting.
func NewGenkitModel(g *genkit.Genkit, modelName string, temperature float64, rpm int, logger log.Logger) *GenkitModel {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rpm > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
	}
	return &GenkitModel{
		g:           g,
		modelName:   modelName,
		temperature: temperature,
		limiter:     limiter,
		logger:      logger,
	}
}

// Generate runs one model call. Tool requests are returned to the
// caller rather than executed by Genkit, so the orchestrator keeps
// control over dispatch and state.
func (m *GenkitModel) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	opts := []ai.GenerateOption{
		ai.WithModelName(m.modelName),
		ai.WithConfig(map[string]any{"temperature": m.temperature}),
		ai.WithMessages(req.Messages...),
		ai.WithReturnToolRequests(true),
	}
	if req.System != "" {
		opts = append(opts, ai.WithSystem(req.System))
	}
	if len(req.Tools) > 0 {
		opts = append(opts, ai.WithTools(req.Tools...))
	}
	if req.Stream != nil {
		opts = append(opts, ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			text := chunk.Text()
			if text == "" {
				return nil
			}
			return req.Stream(ctx, text)
		}))
	}

	resp, err := genkit.Generate(ctx, m.g, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModel, err)
	}

	out := &Response{
		Text:    resp.Text(),
		Message: resp.Message,
	}
	if resp.Message != nil {
		for _, part := range resp.Message.Content {
			if part.IsToolRequest() {
				out.ToolRequests = append(out.ToolRequests, part.ToolRequest)
			}
		}
	}

	m.logger.Debug("model call completed",
		"model", m.modelName,
		"tool_requests", len(out.ToolRequests),
		"text_len", len(out.Text))

	return out, nil
}

// Summarize produces a short title-like phrase for the given text.
func (m *GenkitModel) Summarize(ctx context.Context, text string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	resp, err := genkit.Generate(ctx, m.g,
		ai.WithModelName(m.modelName),
		ai.WithConfig(map[string]any{"temperature": 0.2}),
		ai.WithPrompt("Summarize the following text in at most eight words. "+
			"Reply with the summary only, no quotes or punctuation at the end.\n\n"+text),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModel, err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
