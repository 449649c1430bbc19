package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/commitforge/internal/logging"
	"github.com/roivaz/commitforge/internal/mcp/tools"
)

type Config struct {
	ToolAdapters map[string]ToolAdapter
	Options      []server.StreamableHTTPOption
	Logger       logging.Logger
}

// Dependencies are the services the tools delegate to. GitHub may be nil.
type Dependencies struct {
	Generator tools.CommitGenerator
	Builder   tools.PRBuilder
	GitHub    tools.PullRequestSource
}

func DefaultConfig(deps Dependencies, log logging.Logger) Config {
	return Config{
		ToolAdapters: map[string]ToolAdapter{
			"generate_commit":  &tools.GenerateCommitHandler{Generator: deps.Generator},
			"format_commit":    &tools.FormatCommitHandler{},
			"parse_commit_log": &tools.ParseCommitLogHandler{},
			"pr_description":   &tools.PRDescriptionHandler{Builder: deps.Builder, GitHub: deps.GitHub},
		},
		Options: []server.StreamableHTTPOption{
			server.WithEndpointPath(EndpointPath),
			server.WithStateLess(true),
		},
		Logger: log.WithName("mcp"),
	}
}
