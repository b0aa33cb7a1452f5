// Copyright (c) Ai-social-media Authors.
// Licensed under the MIT License.

/*
Package server manages HTTP server lifecycle: non-blocking start,
graceful shutdown, and system signal handling.

Manager wraps net/http.Server. Start binds the listener synchronously
(so port conflicts fail fast) and then serves in a background
goroutine; serve errors are delivered on the Errors channel.
WaitForShutdown blocks until SIGINT/SIGTERM or a serve failure, and
Shutdown drains in-flight requests within the configured timeout.

The service runs two Managers: the API server and the metrics server
on a separate port.
*/
package server
