package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/commitforge/internal/commit"
	"github.com/roivaz/commitforge/internal/github"
)

type PRBuilder interface {
	Build(ctx context.Context, commits []commit.Message, polish bool) string
}

type PullRequestSource interface {
	PullRequestCommits(ctx context.Context, repo github.Repository, number int) ([]commit.Message, error)
}

// PRDescriptionHandler renders a pull request description from a raw
// commit log, or from the commits of a GitHub pull request when repo and
// pr_number are given and a GitHub client is configured.
type PRDescriptionHandler struct {
	Builder PRBuilder
	GitHub  PullRequestSource
}

func (h *PRDescriptionHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	polish := req.GetBool("polish", false)

	if repoArg := req.GetString("repo", ""); repoArg != "" {
		if h.GitHub == nil {
			return mcp.NewToolResultError("GitHub lookups are not configured"), nil
		}
		number, err := positiveInt("pr_number", args["pr_number"])
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		repo, err := github.ParseRepository(repoArg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		commits, err := h.GitHub.PullRequestCommits(ctx, repo, number)
		if err != nil {
			return nil, fmt.Errorf("fetch commits for %s#%d: %w", repo, number, err)
		}
		return mcp.NewToolResultText(h.Builder.Build(ctx, commits, polish)), nil
	}

	log := req.GetString("log", "")
	if strings.TrimSpace(log) == "" {
		return mcp.NewToolResultError("log or repo parameter is required"), nil
	}
	return mcp.NewToolResultText(h.Builder.Build(ctx, commit.ParseLog(log), polish)), nil
}
