package prdesc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roivaz/commitforge/internal/commit"
	"github.com/roivaz/commitforge/internal/llm"
	"github.com/roivaz/commitforge/internal/logging"
	"github.com/roivaz/commitforge/internal/metrics"
	"github.com/roivaz/commitforge/internal/prompt"
)

const (
	emptyDescription = "# Update\n\n_No commits found._\n"
	footer           = "_Generated from Conventional Commit messages._\n"
	otherGroup       = "other"
)

// groupOrder is the order of the "### type" sections under Changes.
var groupOrder = []string{"feat", "fix", "perf", "refactor", "docs", "test", "build", "ci", "chore", "style", "revert", otherGroup}

// titleTypes are preferred when picking the document title.
var titleTypes = map[string]bool{"feat": true, "fix": true, "perf": true, "refactor": true}

// BuildDeterministic renders commits into a Markdown pull request
// description. The output depends only on the input.
func BuildDeterministic(commits []commit.Message) string {
	if len(commits) == 0 {
		return emptyDescription
	}

	var b strings.Builder
	b.WriteString("# " + title(commits) + "\n\n")

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- This PR includes %d commit(s).\n\n", len(commits))

	b.WriteString("## Changes\n")
	groups := groupByType(commits)
	for _, typ := range groupOrder {
		group := groups[typ]
		if len(group) == 0 {
			continue
		}
		b.WriteString("### " + typ + "\n")
		for _, c := range group {
			writeCommit(&b, c)
		}
		b.WriteString("\n")
	}

	var breaking []string
	for _, c := range commits {
		if c.IsBreaking() {
			breaking = append(breaking, strings.TrimSpace(c.BreakingChange))
		}
	}
	if len(breaking) > 0 {
		b.WriteString("## ⚠️ Breaking Changes\n")
		for _, br := range breaking {
			b.WriteString("- " + br + "\n")
		}
		b.WriteString("\n")
	}

	if issues := distinctIssues(commits); len(issues) > 0 {
		b.WriteString("## Related Issues\n")
		b.WriteString(strings.Join(issues, " "))
		b.WriteString("\n\n")
	}

	b.WriteString(footer)
	return b.String()
}

func title(commits []commit.Message) string {
	for _, c := range commits {
		if titleTypes[groupKey(c.Type)] && strings.TrimSpace(c.Subject) != "" {
			return commit.StripWrappingQuotes(strings.TrimSpace(c.Subject))
		}
	}
	for _, c := range commits {
		if s := strings.TrimSpace(c.Subject); s != "" {
			return commit.StripWrappingQuotes(s)
		}
	}
	return "Update"
}

// groupKey lower-cases typ. Blank and unrecognised types land in "other".
func groupKey(typ string) string {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" || !commit.IsValidType(typ) {
		return otherGroup
	}
	return typ
}

func groupByType(commits []commit.Message) map[string][]commit.Message {
	groups := make(map[string][]commit.Message)
	for _, c := range commits {
		key := groupKey(c.Type)
		groups[key] = append(groups[key], c)
	}
	return groups
}

func writeCommit(b *strings.Builder, c commit.Message) {
	typ := strings.ToLower(strings.TrimSpace(c.Type))
	if typ == "" {
		typ = otherGroup
	}
	b.WriteString("- " + typ)
	if scope := strings.TrimSpace(c.Scope); scope != "" {
		b.WriteString("(" + scope + ")")
	}
	if c.IsBreaking() {
		b.WriteString("!")
	}
	b.WriteString(": " + strings.TrimSpace(c.Subject) + "\n")

	for _, line := range strings.Split(c.Body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "- ") {
			b.WriteString("  " + line + "\n")
		} else {
			b.WriteString("  - " + line + "\n")
		}
	}
	if c.IsBreaking() {
		b.WriteString("  - BREAKING: " + strings.TrimSpace(c.BreakingChange) + "\n")
	}
	if len(c.Issues) > 0 {
		b.WriteString("  - Issues: " + strings.Join(c.Issues, " ") + "\n")
	}
}

func distinctIssues(commits []commit.Message) []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range commits {
		for _, issue := range c.Issues {
			issue = strings.TrimSpace(issue)
			if issue == "" || seen[issue] {
				continue
			}
			seen[issue] = true
			out = append(out, issue)
		}
	}
	return out
}

// Builder adds the optional model polish step on top of BuildDeterministic.
type Builder struct {
	gateway llm.Gateway
	metrics *metrics.Metrics
	log     logging.Logger
}

func NewBuilder(gateway llm.Gateway, m *metrics.Metrics, log logging.Logger) *Builder {
	return &Builder{gateway: gateway, metrics: m, log: log.WithName("prdesc")}
}

// Build renders commits and, when polish is set, runs the result through
// Polish.
func (b *Builder) Build(ctx context.Context, commits []commit.Message, polish bool) string {
	md := BuildDeterministic(commits)
	if !polish {
		return md
	}
	return b.Polish(ctx, md)
}

// Polish asks the model to improve wording while keeping the structure. The
// input is returned unchanged when no gateway is configured, the call fails,
// or the answer is blank.
func (b *Builder) Polish(ctx context.Context, markdown string) string {
	if b.gateway == nil {
		return markdown
	}
	start := time.Now()
	out, err := b.gateway.Complete(ctx, prompt.Polish(markdown))
	b.metrics.Observe(metrics.TypePRPolish, start, err)
	if err != nil {
		b.log.Error(err, "polish failed, keeping deterministic description")
		return markdown
	}
	if strings.TrimSpace(out) == "" {
		b.log.Info("polish returned empty text, keeping deterministic description")
		return markdown
	}
	return out
}
