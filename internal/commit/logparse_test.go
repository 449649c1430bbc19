package commit

import (
	"reflect"
	"testing"
)

func TestParseLog_RoundTripsRenderedMessage(t *testing.T) {
	raw := "feat(api): add X\n\nBody line\n\nBREAKING CHANGE: Y\n\n#123"
	got := ParseLog(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(got))
	}
	want := Message{
		Type:           "feat",
		Scope:          "api",
		Subject:        "add X",
		Body:           "Body line",
		BreakingChange: "Y",
		Issues:         []string{"#123"},
	}
	if !reflect.DeepEqual(got[0], want) {
		t.Fatalf("unexpected commit %+v", got[0])
	}
}

func TestParseLog_SplitsOnSeparator(t *testing.T) {
	raw := "fix: one\n----8<----\n\n----8<----  \nchore(deps): two\n\nbump JIRA-9\n"
	got := ParseLog(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(got))
	}
	if got[0].Type != "fix" || got[0].Subject != "one" || got[0].Scope != "" {
		t.Fatalf("unexpected first commit %+v", got[0])
	}
	if got[1].Scope != "deps" || got[1].Body != "bump JIRA-9" {
		t.Fatalf("unexpected second commit %+v", got[1])
	}
	if !reflect.DeepEqual(got[1].Issues, []string{"JIRA-9"}) {
		t.Fatalf("unexpected issues %v", got[1].Issues)
	}
}

func TestParseLog_NonConventionalHeader(t *testing.T) {
	got := ParseLog(`"Merge branch 'main'"`)
	if len(got) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(got))
	}
	if got[0].Type != "chore" {
		t.Fatalf("expected chore, got %q", got[0].Type)
	}
	if got[0].Subject != "Merge branch 'main'" {
		t.Fatalf("unexpected subject %q", got[0].Subject)
	}
}

func TestParseLog_SkipsCommentLines(t *testing.T) {
	got := ParseLog("docs: readme\n\n# Please enter the commit message\nkept line\n")
	if got[0].Body != "kept line" {
		t.Fatalf("unexpected body %q", got[0].Body)
	}
	if len(got[0].Issues) != 0 {
		t.Fatalf("unexpected issues %v", got[0].Issues)
	}
}

func TestParseLog_DeduplicatesIssues(t *testing.T) {
	got := ParseLog("fix: x\n\nfixes #4 and OPS-1\n\n#4, OPS-2")
	want := []string{"#4", "OPS-1", "OPS-2"}
	if !reflect.DeepEqual(got[0].Issues, want) {
		t.Fatalf("unexpected issues %v", got[0].Issues)
	}
	if got[0].Body != "fixes #4 and OPS-1" {
		t.Fatalf("unexpected body %q", got[0].Body)
	}
}

func TestParseLog_BreakingCaseInsensitive(t *testing.T) {
	got := ParseLog("refactor!: drop v1\n\nbreaking change: v1 removed")
	if got[0].BreakingChange != "v1 removed" {
		t.Fatalf("unexpected breaking change %q", got[0].BreakingChange)
	}
	if got[0].Body != "" {
		t.Fatalf("expected empty body, got %q", got[0].Body)
	}
}

func TestParseLog_Empty(t *testing.T) {
	if got := ParseLog("  \n----8<----\n"); len(got) != 0 {
		t.Fatalf("expected no commits, got %d", len(got))
	}
}

func TestStripWrappingQuotes(t *testing.T) {
	cases := map[string]string{
		`"quoted"`: "quoted",
		`'single'`: "single",
		`"mixed'`:  `"mixed'`,
		`""`:       `""`,
		`plain`:    "plain",
	}
	for in, want := range cases {
		if got := StripWrappingQuotes(in); got != want {
			t.Fatalf("StripWrappingQuotes(%q) = %q, want %q", in, got, want)
		}
	}
}
