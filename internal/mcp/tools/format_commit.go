package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/commitforge/internal/commit"
)

type FormatCommitHandler struct{}

func (h *FormatCommitHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subject := req.GetString("subject", "")
	if subject == "" {
		return mcp.NewToolResultError("subject parameter is required"), nil
	}
	msg := commit.Message{
		Type:           commit.NormalizeType(req.GetString("type", "")),
		Scope:          req.GetString("scope", ""),
		Subject:        subject,
		Body:           req.GetString("body", ""),
		BreakingChange: req.GetString("breaking_change", ""),
		Issues:         req.GetStringSlice("issues", []string{}),
	}
	return mcp.NewToolResultText(commit.ToConventional(msg)), nil
}
