package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/commitforge/internal/commit"
)

type ParseCommitLogHandler struct{}

func (h *ParseCommitLogHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := req.GetString("log", "")
	if strings.TrimSpace(log) == "" {
		return mcp.NewToolResultError("log parameter is required"), nil
	}
	return jsonResult(commit.ParseLog(log)), nil
}
