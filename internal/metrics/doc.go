// Copyright (c) Ai-social-media Authors.
// Licensed under the MIT License.

/*
Package metrics provides Prometheus instrumentation for the whole
pipeline: HTTP, LLM, content generation, publishing, scheduling,
vector operations, cache, and MongoDB.

Collector registers every metric through promauto under a configurable
namespace; the metrics server exposes them via promhttp on its own
port. Labels stay low-cardinality: HTTP status codes collapse to
2xx/3xx/4xx/5xx, paths are normalized before they reach
RecordHTTPRequest, and platform or provider names come from fixed
sets.

The domain metrics follow the request flow. An incoming generate call
shows up in http_requests_total, each model call in llm_requests_total
with token counts, each produced draft in content_generated_total
(status ok, fallback, or error), and each publish attempt in
posts_published_total per platform. schedules_executed_total tracks
poller outcomes, vector_operations_total the Qdrant traffic, and
mongo_operation_duration_seconds the store latency.
*/
package metrics
