package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// queryDocsTool returns the tool definition for query_docs
func queryDocsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "query_docs",
		Description: "Answer a natural-language question from the ingested documentation corpus",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer from the documentation",
				},
			},
			Required: []string{"question"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report ingestion status: whether a corpus has been ingested and its size",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
