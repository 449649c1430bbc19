package commit

import "strings"

// Message is a structured Conventional Commit. Optional fields are empty
// strings when absent.
type Message struct {
	Type           string   `json:"type"`
	Scope          string   `json:"scope"`
	Subject        string   `json:"subject"`
	Body           string   `json:"body"`
	BreakingChange string   `json:"breakingChange"`
	Issues         []string `json:"issues"`
}

const DefaultType = "chore"

// Types lists the Conventional Commit types a Message may carry.
var Types = []string{"feat", "fix", "docs", "style", "refactor", "test", "perf", "build", "ci", "chore", "revert"}

var typeCorrections = map[string]string{
	"feature":       "feat",
	"features":      "feat",
	"bugfix":        "fix",
	"bug":           "fix",
	"hotfix":        "fix",
	"doc":           "docs",
	"documentation": "docs",
	"tests":         "test",
	"testing":       "test",
	"performance":   "perf",
	"refactoring":   "refactor",
	"chores":        "chore",
}

// IsValidType reports whether t is one of Types.
func IsValidType(t string) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// NormalizeType lower-cases t and maps common misspellings onto a valid type.
// Anything unrecognised becomes DefaultType.
func NormalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if IsValidType(t) {
		return t
	}
	if corrected, ok := typeCorrections[t]; ok {
		return corrected
	}
	return DefaultType
}

// IsBreaking reports whether the message carries a breaking change note.
func (m Message) IsBreaking() bool {
	return strings.TrimSpace(m.BreakingChange) != ""
}
