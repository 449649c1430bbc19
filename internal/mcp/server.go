package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "commitforge"
	ServerVersion = "1.0.0"
	EndpointPath  = "/mcp/jsonrpc"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP     *server.MCPServer
	HTTP    *server.StreamableHTTPServer
	Handler http.Handler
}

// toolDefinitions describes every tool the server can expose. Only those
// with an adapter in Config are registered.
var toolDefinitions = map[string]mcp.Tool{
	"generate_commit": mcp.NewTool("generate_commit",
		mcp.WithDescription("Generate a Conventional Commit message from a diff and the list of changed files. Falls back to a heuristic message when the model is unavailable or returns unusable output."),
		mcp.WithString("repo",
			mcp.Description("Repository name used in the prompt (default: repo)"),
		),
		mcp.WithString("author",
			mcp.Description("Author name used in the prompt (default: dev)"),
		),
		mcp.WithArray("files",
			mcp.Description("Changed file paths, in order"),
			mcp.WithStringItems(),
		),
		mcp.WithString("diff",
			mcp.Description("Unified diff of the change; truncated to 18000 characters"),
		),
	),
	"format_commit": mcp.NewTool("format_commit",
		mcp.WithDescription("Render structured commit fields as a Conventional Commit message with a wrapped body, BREAKING CHANGE paragraph and issue footer."),
		mcp.WithString("type",
			mcp.Description("Commit type (default: chore)"),
			mcp.Enum("feat", "fix", "docs", "style", "refactor", "test", "perf", "build", "ci", "chore", "revert"),
		),
		mcp.WithString("scope",
			mcp.Description("Optional scope, e.g. a package or folder"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Imperative one-line summary"),
		),
		mcp.WithString("body",
			mcp.Description("Optional body text"),
		),
		mcp.WithString("breaking_change",
			mcp.Description("Description of the breaking change, if any"),
		),
		mcp.WithArray("issues",
			mcp.Description("Issue references such as #123 or JIRA-42"),
			mcp.WithStringItems(),
		),
	),
	"parse_commit_log": mcp.NewTool("parse_commit_log",
		mcp.WithDescription("Parse commit messages separated by lines containing ----8<---- into structured commits."),
		mcp.WithString("log",
			mcp.Required(),
			mcp.Description("Raw commit messages separated by ----8<---- lines"),
		),
	),
	"pr_description": mcp.NewTool("pr_description",
		mcp.WithDescription("Build a Markdown pull request description grouped by commit type, from a raw commit log or from a GitHub pull request."),
		mcp.WithString("log",
			mcp.Description("Raw commit messages separated by ----8<---- lines"),
		),
		mcp.WithString("repo",
			mcp.Description("GitHub repository as owner/name or URL; used with pr_number instead of log"),
		),
		mcp.WithNumber("pr_number",
			mcp.Description("Pull request number (e.g., 1234)"),
		),
		mcp.WithBoolean("polish",
			mcp.Description("Ask the model to polish the wording (default: false)"),
		),
	),
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)

	for name, adapter := range cfg.ToolAdapters {
		tool, ok := toolDefinitions[name]
		if !ok {
			cfg.Logger.Info("skipping unknown tool", "tool", name)
			continue
		}
		mcpServer.AddTool(tool, adapter.ToolAdapter)
	}

	httpServer := server.NewStreamableHTTPServer(mcpServer, cfg.Options...)

	return &Server{
		MCP:     mcpServer,
		HTTP:    httpServer,
		Handler: httpServer,
	}
}
