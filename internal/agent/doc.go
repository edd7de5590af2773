// Package agent orchestrates a conversational turn: it drives the model,
// dispatches tool calls against the knowledge base, keeps the
// conversation state consistent with every side effect, and streams
// incremental output to the caller as events.
package agent
