package commit

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	jsonBlockRegexp = regexp.MustCompile(`(?s)\{.*?\}`)

	ErrNoJSONObject = errors.New("no JSON object found")
	ErrEmptySubject = errors.New("commit subject is empty")
)

// Decode turns a model response into a Message. The whole response is tried
// first; if that fails, the first brace-delimited span is tried on its own.
// Unknown fields are ignored and the type is normalised.
func Decode(raw string) (Message, error) {
	m, err := decodeObject(strings.TrimSpace(raw))
	if err == nil {
		return m, nil
	}
	span := jsonBlockRegexp.FindString(raw)
	if span == "" {
		return Message{}, fmt.Errorf("decode commit: %w (%v)", ErrNoJSONObject, err)
	}
	m, err = decodeObject(span)
	if err != nil {
		return Message{}, fmt.Errorf("decode extracted commit: %w", err)
	}
	return m, nil
}

func decodeObject(s string) (Message, error) {
	if !gjson.Valid(s) {
		return Message{}, errors.New("invalid JSON")
	}
	res := gjson.Parse(s)
	if !res.IsObject() {
		return Message{}, errors.New("JSON value is not an object")
	}

	m := Message{
		Type:           NormalizeType(res.Get("type").String()),
		Scope:          strings.TrimSpace(res.Get("scope").String()),
		Subject:        strings.TrimSpace(res.Get("subject").String()),
		Body:           strings.TrimSpace(res.Get("body").String()),
		BreakingChange: strings.TrimSpace(firstString(res, "breakingChange", "breaking_change")),
		Issues:         decodeIssues(res.Get("issues")),
	}
	if m.Subject == "" {
		return Message{}, ErrEmptySubject
	}
	return m, nil
}

func firstString(res gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := res.Get(p); v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
	}
	return ""
}

// decodeIssues accepts either a JSON array or a single comma/space separated
// string.
func decodeIssues(v gjson.Result) []string {
	issues := []string{}
	switch {
	case v.IsArray():
		for _, item := range v.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				issues = append(issues, s)
			}
		}
	case v.Type == gjson.String:
		issues = append(issues, strings.FieldsFunc(v.String(), func(r rune) bool { return r == ',' || r == ' ' })...)
	}
	return issues
}
