// Package mcpclient wraps a Model Context Protocol (MCP) tool server behind
// a small client surface: connect, discover the tool catalog, invoke one
// named tool.
//
// The client speaks to the reference GitHub MCP server either as a stdio
// subprocess (the default, launched via npx) or over streamable HTTP. The
// mcp-go library handles the JSON-RPC 2.0 framing; this package adds the
// pieces the assistant needs on top of it:
//
//   - a ToolCatalog of immutable descriptors, discovered once per session
//   - argument validation against each descriptor's schema before any
//     remote call is made
//   - a typed error taxonomy (ConnectError, DiscoveryError, InvokeError)
//     so callers can distinguish a missing tool from a provider failure
//     from a timeout
//
// Invocations are at-most-once: the client never retries on its own, and a
// failed invocation leaves the connection and catalog untouched.
package mcpclient
