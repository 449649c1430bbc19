package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/commitforge/internal/commit"
	"github.com/roivaz/commitforge/internal/commitgen"
)

type CommitGenerator interface {
	Generate(ctx context.Context, req commitgen.Request) commit.Message
}

type GenerateCommitHandler struct {
	Generator CommitGenerator
}

type generateCommitResult struct {
	Message    string         `json:"message"`
	Structured commit.Message `json:"structured"`
}

func (h *GenerateCommitHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	diff := req.GetString("diff", "")
	files := req.GetStringSlice("files", []string{})
	if diff == "" && len(files) == 0 {
		return mcp.NewToolResultError("diff or files parameter is required"), nil
	}
	msg := h.Generator.Generate(ctx, commitgen.Request{
		Repo:   req.GetString("repo", ""),
		Author: req.GetString("author", ""),
		Files:  files,
		Diff:   diff,
	})
	return jsonResult(generateCommitResult{
		Message:    commit.ToConventional(msg),
		Structured: msg,
	}), nil
}
