// Package handlers implements the HTTP API surface: project CRUD, the
// content generation pipeline, scheduling and immediate publishing,
// project analytics, platform connection tests, and health probes.
//
// Every endpoint writes the same JSON envelope through [WriteSuccess]
// and [WriteError]; store sentinel errors map onto HTTP statuses in
// one place so a malformed ObjectID is always a 400 and a missing
// document always a 404. Handlers depend on narrow interfaces rather
// than the concrete services, which keeps them testable without
// Mongo, Redis, Qdrant or a live LLM behind them.
package handlers
