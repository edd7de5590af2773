package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/core/tracing"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/remembra/remembra/db"
	"github.com/remembra/remembra/internal/agent"
	"github.com/remembra/remembra/internal/config"
	"github.com/remembra/remembra/internal/conversation"
	"github.com/remembra/remembra/internal/database"
	"github.com/remembra/remembra/internal/knowledge"
	"github.com/remembra/remembra/internal/log"
)

// Setup initializes the application. The config must already be
// validated. Call Close on the returned App to release resources; on
// error everything initialized so far is cleaned up.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	a.otelShutdown = setupTracing(ctx, cfg, logger)

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	a.Pool = pool

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit")
	}
	a.Genkit = g

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}

	querier := knowledge.NewPG(pool)
	chunker := knowledge.NewChunker(knowledge.DefaultMaxChunkSize)
	kbEmbedder := knowledge.NewEmbedder(embedder, cfg.EmbedderModel, cfg.EmbedderDimension, logger)
	a.Knowledge = knowledge.NewStore(querier, chunker, kbEmbedder, logger)
	a.Retriever = knowledge.NewRetriever(querier, kbEmbedder, logger)

	a.Conversations = conversation.NewStore(pool, logger)

	model := agent.NewGenkitModel(g, cfg.FullModelName(), float64(cfg.Temperature), cfg.ModelRPM, logger)

	a.Registry = agent.NewRegistry()
	for _, tool := range []*agent.ExecutableTool{
		agent.NewCreateResourceTool(a.Knowledge, model, logger),
		agent.NewGetInformationTool(a.Retriever, logger,
			knowledge.WithTopK(cfg.RetrievalTopK),
			knowledge.WithMinSimilarity(cfg.RetrievalMinSimilarity)),
		agent.NewGetUserResourcesTool(a.Knowledge),
	} {
		if err := a.Registry.Register(tool); err != nil {
			return nil, fmt.Errorf("registering tool: %w", err)
		}
	}
	toolRefs := a.Registry.DefineAll(g)

	a.Orchestrator = agent.NewOrchestrator(model, a.Registry, toolRefs, a.Conversations, cfg.MaxTurns, logger)

	logger.Info("application initialized",
		"model", cfg.FullModelName(),
		"embedder", cfg.EmbedderModel,
		"tools", len(toolRefs))

	return a, nil
}

// setupTracing registers an OTLP HTTP span exporter on Genkit's tracer
// provider. A missing endpoint disables export; exporter failures are
// logged and tracing is skipped rather than failing startup.
func setupTracing(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	if cfg.OTLPEndpoint == "" {
		return func() {}
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Warn("creating trace exporter, tracing disabled", "error", err)
		return func() {}
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)
	logger.Debug("tracing enabled", "endpoint", cfg.OTLPEndpoint)

	shutdown := tracing.TracerProvider().Shutdown
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}
