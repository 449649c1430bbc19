package prompt

import "strings"

// MaxDiffChars bounds the diff included in a commit prompt.
const MaxDiffChars = 18000

const (
	DefaultRepo   = "repo"
	DefaultAuthor = "dev"
)

const commitPromptTemplate = `You are a senior engineer who writes Conventional Commit messages.
Return ONLY a JSON object with exactly these fields:
{
  "type": "feat|fix|docs|style|refactor|test|perf|build|ci|chore|revert",
  "scope": "optional short scope or null",
  "subject": "imperative summary, max 72 chars, no trailing period",
  "body": "optional explanation of what and why, or null",
  "breakingChange": "description of the breaking change, or null",
  "issues": ["#123"]
}
Do not wrap the JSON in markdown fences and do not add commentary.

Repository: {{.Repo}}
Author: {{.Author}}
Files changed:
{{.Files}}

Diff:
{{.Diff}}`

// CommitInput carries the request fields rendered into a commit prompt.
type CommitInput struct {
	Repo   string
	Author string
	Files  []string
	Diff   string
}

// Commit renders the commit-message instruction for in. Empty repository and
// author fall back to DefaultRepo and DefaultAuthor; the diff is cut to
// MaxDiffChars characters. Values are inserted verbatim.
func Commit(in CommitInput) string {
	repo := in.Repo
	if strings.TrimSpace(repo) == "" {
		repo = DefaultRepo
	}
	author := in.Author
	if strings.TrimSpace(author) == "" {
		author = DefaultAuthor
	}

	r := strings.NewReplacer(
		"{{.Repo}}", repo,
		"{{.Author}}", author,
		"{{.Files}}", strings.Join(in.Files, "\n"),
		"{{.Diff}}", TruncateDiff(in.Diff),
	)
	return r.Replace(commitPromptTemplate)
}

// TruncateDiff returns the first MaxDiffChars characters of diff.
func TruncateDiff(diff string) string {
	return truncateRunes(diff, MaxDiffChars)
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
