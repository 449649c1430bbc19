package commit

import (
	"fmt"
	"strings"
)

// Fallback builds a chore commit from the changed file list alone. It is used
// whenever the model output cannot be turned into a Message.
func Fallback(files []string) Message {
	return Message{
		Type:    DefaultType,
		Scope:   fallbackScope(files),
		Subject: fallbackSubject(files),
		Body:    fallbackBody(files),
		Issues:  []string{},
	}
}

// fallbackScope is the leading directory of the first file, if it has one.
func fallbackScope(files []string) string {
	if len(files) == 0 {
		return ""
	}
	first := files[0]
	if idx := strings.Index(first, "/"); idx > 0 {
		return first[:idx]
	}
	return ""
}

func fallbackSubject(files []string) string {
	switch len(files) {
	case 0:
		return "update repository files"
	case 1:
		return "update " + files[0]
	default:
		return fmt.Sprintf("update %d files", len(files))
	}
}

func fallbackBody(files []string) string {
	if len(files) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Changes:\n")
	for _, f := range files {
		b.WriteString("- " + f + "\n")
	}
	return b.String()
}
