// Copyright (c) Ai-social-media Authors.
// Licensed under the MIT License.

/*
Package cache provides Redis-backed caching for the content service:
connection pooling, health checks, and JSON serialization helpers.

Manager wraps the go-redis client and owns the connection lifecycle,
including startup ping, periodic health checks, and graceful close.
All keys are namespaced with a configurable prefix so the service can
share a Redis instance with other workloads.

The service uses the cache for three things:

  - analytics responses, cached for a short TTL to absorb dashboard polling
  - platform connection test results, cached so repeated checks do not
    burn social API quota
  - scheduler idempotency marks, written with SetNX so a schedule fires
    at most once even if two pollers pick it up

Cache failures are never fatal. Read errors surface as misses and write
errors are logged at Warn level; callers fall through to the backing
store either way.
*/
package cache
