/*
Package main is the socialmedia service executable.

Subcommands: serve (the service), version, health (probe a running
instance). serve loads YAML + env configuration, builds the MongoDB
store, Redis cache, Qdrant index, LLM pipeline, social publishers,
scheduler and MCP endpoint, and runs three listeners: the content API,
the Prometheus metrics port, and the MCP transport address.

The middleware chain wraps the API server: Recovery, RequestID,
SecurityHeaders, RequestLogger, metrics, optional OTel tracing, CORS,
per-IP rate limiting, a request body cap, and API-key or JWT auth when
configured. The config admin API under /api/v1/config carries its own
auth check independent of the chain.

Version, BuildTime, and GitCommit are injected through ldflags.
*/
package main
