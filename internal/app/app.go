// Package app assembles the application: configuration, database,
// Genkit, knowledge base, conversation store, and the turn
// orchestrator. Setup wires everything; Close releases it in reverse
// order.
package app

import (
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/remembra/remembra/internal/agent"
	"github.com/remembra/remembra/internal/config"
	"github.com/remembra/remembra/internal/conversation"
	"github.com/remembra/remembra/internal/knowledge"
	"github.com/remembra/remembra/internal/log"
)

// App is the application container. Fields are populated by Setup and
// valid until Close.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit *genkit.Genkit
	Pool   *pgxpool.Pool

	Knowledge     *knowledge.Store
	Retriever     *knowledge.Retriever
	Conversations *conversation.Store
	Registry      *agent.Registry
	Orchestrator  *agent.Orchestrator

	otelShutdown func()
}

// Close releases all resources. Safe to call on a partially initialized
// App; Setup relies on that for its error paths.
func (a *App) Close() error {
	if a.Pool != nil {
		a.Pool.Close()
		a.Logger.Debug("database pool closed")
	}
	if a.otelShutdown != nil {
		a.otelShutdown()
	}
	return nil
}
