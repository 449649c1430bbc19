package commit

import "strings"

const wrapWidth = 72

// ToConventional renders m as a Conventional Commit message: a header line,
// an optional wrapped body, an optional BREAKING CHANGE paragraph and an
// optional line of issue references, separated by blank lines.
func ToConventional(m Message) string {
	var b strings.Builder
	b.WriteString(Header(m))

	if body := strings.TrimSpace(m.Body); body != "" {
		b.WriteString("\n\n")
		b.WriteString(Wrap(body, wrapWidth))
	}
	if m.IsBreaking() {
		b.WriteString("\n\nBREAKING CHANGE: ")
		b.WriteString(strings.TrimSpace(m.BreakingChange))
	}
	if issues := nonBlank(m.Issues); len(issues) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(issues, " "))
	}
	return strings.TrimSpace(b.String())
}

// Header returns the first line of the rendered message.
func Header(m Message) string {
	typ := strings.TrimSpace(m.Type)
	if typ == "" {
		typ = DefaultType
	}
	var b strings.Builder
	b.WriteString(typ)
	if scope := strings.TrimSpace(m.Scope); scope != "" {
		b.WriteString("(" + scope + ")")
	}
	if m.IsBreaking() {
		b.WriteString("!")
	}
	b.WriteString(": ")
	b.WriteString(strings.TrimSpace(m.Subject))
	return b.String()
}

// Wrap greedily fills lines up to width columns. Existing line breaks are
// collapsed and words are joined by single spaces; a word longer than width
// sits on its own line.
func Wrap(text string, width int) string {
	var b strings.Builder
	col := 0
	for _, w := range strings.Fields(text) {
		if col > 0 && col+len(w)+1 > width {
			b.WriteString("\n")
			col = 0
		}
		if col > 0 {
			b.WriteString(" ")
			col++
		}
		b.WriteString(w)
		col += len(w)
	}
	return b.String()
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
