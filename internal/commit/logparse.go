package commit

import (
	"regexp"
	"strings"
)

// LogSeparator delimits commit messages in a raw log block. A matching
// `git log` format is "%B" followed by this line.
const LogSeparator = "----8<----"

var (
	logSeparatorRegexp = regexp.MustCompile(`(?m)^----8<----[ \t\r]*$`)
	headerRegexp       = regexp.MustCompile(`^([a-z]+)(?:\(([^)]+)\))?!?:\s*(.+)$`)
	breakingRegexp     = regexp.MustCompile(`(?i)^BREAKING CHANGE:\s*(.+)$`)
	issueRegexp        = regexp.MustCompile(`#\d+|[A-Z]+-\d+`)
	lineBreakRegexp    = regexp.MustCompile(`\r\n|\r|\n`)
)

// ParseLog splits a sentinel-delimited block of commit messages and parses
// each one back into a Message. Blank blocks are skipped.
func ParseLog(raw string) []Message {
	out := []Message{}
	for _, block := range logSeparatorRegexp.Split(raw, -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		out = append(out, parseBlock(block))
	}
	return out
}

func parseBlock(block string) Message {
	lines := lineBreakRegexp.Split(strings.TrimSpace(block), -1)

	m := Message{Type: DefaultType, Issues: []string{}}
	rest := lines
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if match := headerRegexp.FindStringSubmatch(line); match != nil {
			m.Type = match[1]
			m.Scope = match[2]
			m.Subject = StripWrappingQuotes(strings.TrimSpace(match[3]))
		} else {
			m.Subject = StripWrappingQuotes(line)
		}
		rest = lines[i+1:]
		break
	}

	var body []string
	var refSources []string
	for _, line := range rest {
		trimmed := strings.TrimSpace(line)
		if match := breakingRegexp.FindStringSubmatch(trimmed); match != nil {
			m.BreakingChange = strings.TrimSpace(match[1])
			continue
		}
		if isIssueFooter(trimmed) {
			refSources = append(refSources, trimmed)
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		body = append(body, line)
		refSources = append(refSources, line)
	}

	m.Body = strings.TrimSpace(strings.Join(body, "\n"))
	m.Issues = collectIssues(refSources)
	return m
}

// isIssueFooter reports whether line holds nothing but issue references,
// optionally separated by commas.
func isIssueFooter(line string) bool {
	if !issueRegexp.MatchString(line) {
		return false
	}
	leftover := issueRegexp.ReplaceAllString(line, "")
	return strings.Trim(leftover, " \t,") == ""
}

func collectIssues(lines []string) []string {
	issues := []string{}
	seen := map[string]bool{}
	for _, line := range lines {
		for _, ref := range issueRegexp.FindAllString(line, -1) {
			if !seen[ref] {
				seen[ref] = true
				issues = append(issues, ref)
			}
		}
	}
	return issues
}

// StripWrappingQuotes removes one matching pair of surrounding double or
// single quotes.
func StripWrappingQuotes(s string) string {
	if len(s) < 3 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if (first == '"' || first == '\'') && first == last {
		return s[1 : len(s)-1]
	}
	return s
}
