package mssqlmcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the ten tools on the given MCP server. Tool
// failures come back as error results, never as protocol errors.
func RegisterMCPTools(mcpServer *server.MCPServer, msMcp *MssqlMcp) {
	for _, def := range toolCatalog {
		mcpServer.AddTool(mcpTool(def), msMcp.loggedToolHandler(def.Name, msMcp.toolHandler(def.Name)))
	}
}

// mcpTool converts a catalog entry to its MCP schema. Every tool is
// annotated read-only.
func mcpTool(def ToolDefinition) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(def.Description),
		mcp.WithReadOnlyHintAnnotation(true),
	}
	for _, param := range def.Params {
		propOpts := []mcp.PropertyOption{mcp.Description(param.Description)}
		if param.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		switch param.Type {
		case "integer":
			opts = append(opts, mcp.WithNumber(param.Name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(param.Name, propOpts...))
		}
	}
	return mcp.NewTool(def.Name, opts...)
}

func (p *MssqlMcp) toolHandler(tool string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := p.Dispatch(ctx, tool, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(p.ErrorText(err)), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// loggedToolHandler wraps a tool handler to log the call and record metrics.
func (p *MssqlMcp) loggedToolHandler(tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		callID := uuid.NewString()
		start := time.Now()
		reqLen := requestLength(req)

		result, err := handler(ctx, req)

		elapsed := time.Since(start)
		failed := err != nil || (result != nil && result.IsError)
		p.metrics.ObserveToolCall(tool, !failed, elapsed)

		if failed {
			p.logger.Error().
				Str("tool", tool).
				Str("call_id", callID).
				Str("error", resultText(result)).
				Msg("tool error")
		}
		p.logger.Info().
			Str("tool", tool).
			Str("call_id", callID).
			Int("request_bytes", reqLen).
			Int("response_bytes", resultLength(result)).
			Dur("duration", elapsed).
			Msg("tool call")
		return result, err
	}
}

// requestLength returns the JSON-encoded byte length of the request arguments.
func requestLength(req mcp.CallToolRequest) int {
	args := req.GetArguments()
	if len(args) == 0 {
		return 0
	}
	b, err := json.Marshal(args)
	if err != nil {
		return 0
	}
	return len(b)
}

// resultLength returns the total byte length of text content in a CallToolResult.
func resultLength(result *mcp.CallToolResult) int {
	return len(resultText(result))
}

func resultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	var text string
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			text += tc.Text
		}
	}
	return text
}
