package prompt

import (
	"strconv"
	"strings"
)

const ChatSystem = "You are a concise, helpful assistant. Reply in under 120 words unless asked otherwise."

const (
	DefaultSummaryWords = 120
	DefaultTargetLang   = "English"
)

const summarizeTemplate = `Summarize the following text in at most {{.MaxWords}} words. Keep key facts and names.

Text:
{{.Text}}`

const translateTemplate = `Translate the following text to {{.Lang}}. Only return the translation.

Text:
{{.Text}}`

const polishTemplate = `Improve clarity and tone of the following PR description, but keep the same sections and bullets.
Do not add extra sections. Keep the title succinct.

---
{{.Text}}
---`

const RAGSystem = "Answer ONLY using retrieved context. If missing, say you don't know."

const ragTemplate = `Context:
{{.Context}}

Question: {{.Question}}`

// Summarize asks for a summary of at most maxWords words. Non-positive
// values use DefaultSummaryWords.
func Summarize(text string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = DefaultSummaryWords
	}
	p := strings.ReplaceAll(summarizeTemplate, "{{.MaxWords}}", strconv.Itoa(maxWords))
	return strings.ReplaceAll(p, "{{.Text}}", text)
}

// Translate asks for a translation into lang, English when blank.
func Translate(text, lang string) string {
	if strings.TrimSpace(lang) == "" {
		lang = DefaultTargetLang
	}
	p := strings.ReplaceAll(translateTemplate, "{{.Lang}}", lang)
	return strings.ReplaceAll(p, "{{.Text}}", text)
}

// Polish wraps a rendered PR description in the rewrite instruction.
func Polish(markdown string) string {
	return strings.ReplaceAll(polishTemplate, "{{.Text}}", markdown)
}

// RAGQuestion combines retrieved passages and the user question. Passages are
// separated by blank lines.
func RAGQuestion(passages []string, question string) string {
	p := strings.ReplaceAll(ragTemplate, "{{.Context}}", strings.Join(passages, "\n\n"))
	return strings.ReplaceAll(p, "{{.Question}}", question)
}
