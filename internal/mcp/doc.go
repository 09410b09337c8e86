// Package mcp implements the Model Context Protocol (MCP) server for docquery.
//
// The MCP server exposes two tools to AI coding assistants:
//   - query_docs: Answer a question from the ingested documentation
//   - get_status: Check ingestion status and corpus size
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server is typically started via the serve command:
//
//	docquery serve
//
// It then listens on stdin for MCP protocol messages and writes responses
// to stdout. All logging goes to stderr; stdout is reserved for the
// protocol.
//
// # Tool: query_docs
//
// Answer a question from the indexed documentation:
//
//	Request:
//	{
//	  "name": "query_docs",
//	  "arguments": {
//	    "question": "How do I configure the UART baud rate?"
//	  }
//	}
//
//	Response:
//	{
//	  "answer": "Set the baud rate with ...",
//	  "sources": ["docs/uart.md", "docs/setup.md"]
//	}
//
// # Tool: get_status
//
// Check ingestion status:
//
//	Request:
//	{
//	  "name": "get_status",
//	  "arguments": {}
//	}
//
//	Response:
//	{
//	  "ingested": true,
//	  "total_runs": 3,
//	  "last_run": {
//	    "completed_at": "2026-08-20T14:03:12Z",
//	    "documents": 42,
//	    "chunks": 317,
//	    "duration_ms": 8120
//	  }
//	}
//
// # Error Handling
//
// The server returns standard JSON-RPC error responses. Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error
//   - -32001: No corpus ingested yet
//   - -32002: Provider request failed
//   - -32004: Question is empty
//
// Ingestion is deliberately not exposed as a tool: it is a batch
// operation run from the CLI, while the MCP surface stays read-only.
package mcp
