// Copyright (c) Ai-social-media Authors.
// Licensed under the MIT License.

/*
Package types provides the shared type contracts of the service.

It is the lowest-level package and depends on nothing internal; the
store, social, content, and api layers all build on the types here to
avoid import cycles.

Core types:

  - Error / ErrorCode — structured errors with HTTP status, Retryable,
    Platform tag, and detail map
  - Context propagation: WithRequestID / RequestID, WithUserID / UserID
*/
package types
