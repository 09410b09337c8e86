package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/docquery-mcp/internal/catalog"
	"github.com/dshills/docquery-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodeNotIngested    = -32001 // No corpus has been ingested yet
	ErrorCodeProviderFailed = -32002 // The hosted provider call failed
	ErrorCodeEmptyQuestion  = -32004 // Question parameter is empty
)

// handleQueryDocs handles the query_docs tool invocation
func (s *Server) handleQueryDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	question, ok := args["question"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "question parameter is required", map[string]interface{}{
			"param":  "question",
			"reason": "missing or not a string",
		})
	}

	answer, err := s.query.Query(ctx, question)
	if err != nil {
		return nil, queryError(err)
	}

	response := map[string]interface{}{
		"answer":  answer.Text,
		"sources": answer.Sources,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// queryError maps query service errors to MCP error codes so callers
// can tell a usage problem from a missing index or a provider outage.
func queryError(err error) error {
	switch {
	case errors.Is(err, types.ErrEmptyQuestion):
		return newMCPError(ErrorCodeEmptyQuestion, "question cannot be empty", map[string]interface{}{
			"param":  "question",
			"reason": "empty or whitespace-only",
		})
	case errors.Is(err, types.ErrIndexNotBuilt):
		return newMCPError(ErrorCodeNotIngested, "no documentation has been ingested; run docquery ingest first", nil)
	case errors.Is(err, types.ErrProviderFailed):
		return newMCPError(ErrorCodeProviderFailed, "provider request failed", map[string]interface{}{
			"error": err.Error(),
		})
	default:
		return newMCPError(ErrorCodeInternalError, "query failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// No catalog file means ingest has never run. Checked before Open,
	// which would create an empty database as a side effect.
	catalogPath := s.cfg.CatalogPath()
	if _, err := os.Stat(catalogPath); err != nil {
		response := map[string]interface{}{
			"ingested": false,
			"message":  "No documentation ingested. Run docquery ingest first.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	cat, err := catalog.Open(catalogPath)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to open catalog", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() { _ = cat.Close() }()

	status, err := cat.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"ingested":   status.Ingested,
		"total_runs": status.TotalRuns,
	}
	if status.LastRun != nil {
		response["last_run"] = map[string]interface{}{
			"completed_at": status.LastRun.CompletedAt.Format("2006-01-02T15:04:05Z07:00"),
			"documents":    status.LastRun.Documents,
			"chunks":       status.LastRun.Chunks,
			"duration_ms":  status.LastRun.Duration.Milliseconds(),
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}
