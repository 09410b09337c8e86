package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docquery-mcp/internal/catalog"
	"github.com/dshills/docquery-mcp/internal/config"
	"github.com/dshills/docquery-mcp/pkg/types"
)

func testServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Dir = t.TempDir()
	cfg.Provider.Name = "local"

	server, err := NewServer(cfg, nil)
	require.NoError(t, err)
	return server, cfg
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func requireMCPCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr), "expected MCPError, got %T: %v", err, err)
	assert.Equal(t, code, mcpErr.Code)
}

func TestNewServerComponents(t *testing.T) {
	server, _ := testServer(t)
	assert.NotNil(t, server.mcp)
	assert.NotNil(t, server.query)
	assert.NotNil(t, server.provider)
}

func TestNewServerMissingAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Dir = t.TempDir()
	cfg.Provider.Name = "openai"
	cfg.Provider.APIKey = ""

	_, err := NewServer(cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingAPIKey)
}

func TestHandleQueryDocsMissingQuestion(t *testing.T) {
	server, _ := testServer(t)

	_, err := server.handleQueryDocs(context.Background(), callRequest(map[string]interface{}{}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)

	_, err = server.handleQueryDocs(context.Background(), callRequest(map[string]interface{}{
		"question": 42,
	}))
	requireMCPCode(t, err, ErrorCodeInvalidParams)
}

func TestHandleQueryDocsEmptyQuestion(t *testing.T) {
	server, _ := testServer(t)

	_, err := server.handleQueryDocs(context.Background(), callRequest(map[string]interface{}{
		"question": "   ",
	}))
	requireMCPCode(t, err, ErrorCodeEmptyQuestion)
}

func TestHandleQueryDocsBeforeIngest(t *testing.T) {
	server, _ := testServer(t)

	_, err := server.handleQueryDocs(context.Background(), callRequest(map[string]interface{}{
		"question": "how does this work?",
	}))
	requireMCPCode(t, err, ErrorCodeNotIngested)
}

func TestQueryErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"empty question", types.ErrEmptyQuestion, ErrorCodeEmptyQuestion},
		{"index not built", fmt.Errorf("open: %w", types.ErrIndexNotBuilt), ErrorCodeNotIngested},
		{"provider failed", fmt.Errorf("embed: %w", types.ErrProviderFailed), ErrorCodeProviderFailed},
		{"unknown", errors.New("disk full"), ErrorCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireMCPCode(t, queryError(tt.err), tt.code)
		})
	}
}

func TestHandleGetStatusNotIngested(t *testing.T) {
	server, _ := testServer(t)

	result, err := server.handleGetStatus(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, false, response["ingested"])
}

func TestHandleGetStatusAfterIngest(t *testing.T) {
	server, cfg := testServer(t)

	cat, err := catalog.Open(cfg.CatalogPath())
	require.NoError(t, err)
	started := time.Now().Add(-time.Second)
	require.NoError(t, cat.RecordRun(context.Background(), &catalog.Run{
		StartedAt:   started,
		CompletedAt: started.Add(800 * time.Millisecond),
		Documents:   12,
		Chunks:      95,
		Duration:    800 * time.Millisecond,
	}, nil))
	require.NoError(t, cat.Close())

	result, err := server.handleGetStatus(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, true, response["ingested"])
	assert.Equal(t, float64(1), response["total_runs"])

	lastRun, ok := response["last_run"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(12), lastRun["documents"])
	assert.Equal(t, float64(95), lastRun["chunks"])
}
