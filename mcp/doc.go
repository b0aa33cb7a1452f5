// Package mcp exposes the content pipeline over the Model Context
// Protocol (JSON-RPC 2.0, revision 2024-11-05).
//
// [NewContentServer] wires five tools (project lookup, generation,
// scheduling, analytics, similarity search), three live resources
// under the content:// scheme, and one drafting prompt per platform.
// A [Server] is transport-agnostic: [StdioTransport] frames messages
// with Content-Length headers for subprocess use, [Handler] serves
// WebSocket and SSE sessions over HTTP, and [Client] drives the same
// protocol from the calling side with pipelined request routing.
package mcp
