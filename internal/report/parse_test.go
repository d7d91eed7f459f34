package report

import (
	"encoding/json"
	"strings"
	"testing"
)

var prior = json.RawMessage(`{"kept":true}`)

func TestParseWellFormed(t *testing.T) {
	t.Parallel()
	raw := "USER_REPORT:\nfoo\nNEW_MEMORY:\n```json\n{\"a\":1}\n```"

	p := Parse(raw, prior)
	if p.Report != "foo" {
		t.Fatalf("Report = %q, want %q", p.Report, "foo")
	}
	if !p.ContextParsed {
		t.Fatal("ContextParsed = false, want true")
	}
	var got map[string]any
	if err := json.Unmarshal(p.Context, &got); err != nil {
		t.Fatalf("Context is not valid JSON: %v", err)
	}
	if got["a"] != float64(1) {
		t.Fatalf("Context = %v", got)
	}
	if p.Violation != "" {
		t.Fatalf("unexpected violation %q", p.Violation)
	}
}

func TestParseMissingReportMarker(t *testing.T) {
	t.Parallel()
	p := Parse("just some chatter from the model", prior)
	if p.Report != "just some chatter from the model" {
		t.Fatalf("Report = %q", p.Report)
	}
	if p.ContextParsed {
		t.Fatal("context must not be replaced without a memory block")
	}
	if string(p.Context) != string(prior) {
		t.Fatalf("Context = %s, want prior", p.Context)
	}
	if p.Violation == "" {
		t.Fatal("expected a format violation")
	}
}

func TestParseMissingMemoryMarker(t *testing.T) {
	t.Parallel()
	p := Parse("USER_REPORT:\n  findings here  ", prior)
	if p.Report != "findings here" {
		t.Fatalf("Report = %q", p.Report)
	}
	if p.ContextParsed || string(p.Context) != string(prior) {
		t.Fatal("prior context must be preserved")
	}
}

func TestParseBareBracesFallback(t *testing.T) {
	t.Parallel()
	raw := "USER_REPORT:\ndone\nNEW_MEMORY:\nHere you go: {\"count\": 2} hope that helps"

	p := Parse(raw, prior)
	if !p.ContextParsed {
		t.Fatalf("brace fallback failed, violation=%q", p.Violation)
	}
	var got map[string]any
	if err := json.Unmarshal(p.Context, &got); err != nil || got["count"] != float64(2) {
		t.Fatalf("Context = %s (err %v)", p.Context, err)
	}
}

func TestParseFencedWithoutLanguageTag(t *testing.T) {
	t.Parallel()
	raw := "USER_REPORT:\nok\nNEW_MEMORY:\n```\n{\"x\":\"y\"}\n```"
	p := Parse(raw, prior)
	if !p.ContextParsed {
		t.Fatalf("fenced block without tag not parsed, violation=%q", p.Violation)
	}
}

func TestParseMalformedMemory(t *testing.T) {
	t.Parallel()
	raw := "USER_REPORT:\nreport body\nNEW_MEMORY:\n```json\n{broken\n```"

	p := Parse(raw, prior)
	if p.ContextParsed {
		t.Fatal("malformed memory must not replace context")
	}
	if string(p.Context) != string(prior) {
		t.Fatalf("Context = %s, want prior", p.Context)
	}
	if !strings.Contains(p.Report, "previous context retained") {
		t.Fatalf("report missing diagnostic note: %q", p.Report)
	}
	if !strings.HasPrefix(p.Report, "report body") {
		t.Fatalf("report body lost: %q", p.Report)
	}
}

func TestParseNonObjectMemory(t *testing.T) {
	t.Parallel()
	raw := "USER_REPORT:\nr\nNEW_MEMORY:\n```json\n[1,2,3]\n```"
	p := Parse(raw, prior)
	if p.ContextParsed {
		t.Fatal("memory must be a JSON object")
	}
}
