// Package report handles the executor's textual output: extracting the
// two-block response protocol and persisting the human-readable report.
package report

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	reportMarker = "USER_REPORT:"
	memoryMarker = "NEW_MEMORY:"
)

// fencedBlock matches a fenced code block with an optional language tag.
// Best effort: model output is free text, not a grammar.
var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*[ \t]*\r?\n?(.*?)```")

// Parsed is the outcome of interpreting one executor response.
type Parsed struct {
	// Report is the human-readable portion.
	Report string

	// Context is the memory object to persist. When the NEW_MEMORY block
	// is missing or malformed this is the prior context, untouched.
	Context json.RawMessage

	// ContextParsed reports whether Context came from the response
	// (true) or was carried over from before the run (false).
	ContextParsed bool

	// Violation describes a protocol deviation, empty when the response
	// followed the two-block format. Violations are logged, never fatal.
	Violation string
}

// Parse splits raw executor output into a report and a memory update.
//
// The degradation ladder, in order:
//  1. No USER_REPORT: marker -> whole text is the report, prior context kept.
//  2. No NEW_MEMORY: marker -> everything after USER_REPORT: is the report,
//     prior context kept.
//  3. Memory section present -> try a fenced code block, then the outermost
//     {...} span, then the raw section.
//  4. Candidate must decode as a JSON object; anything else keeps the prior
//     context and appends a diagnostic note to the report.
//
// Context is only ever replaced by a successfully decoded object. A
// malformed response degrades the memory update, never corrupts it.
func Parse(raw string, prior json.RawMessage) Parsed {
	idx := strings.Index(raw, reportMarker)
	if idx < 0 {
		return Parsed{
			Report:    strings.TrimSpace(raw),
			Context:   prior,
			Violation: "missing USER_REPORT marker",
		}
	}

	remainder := raw[idx+len(reportMarker):]

	midx := strings.Index(remainder, memoryMarker)
	if midx < 0 {
		return Parsed{
			Report:    strings.TrimSpace(remainder),
			Context:   prior,
			Violation: "missing NEW_MEMORY marker",
		}
	}

	rep := strings.TrimSpace(remainder[:midx])
	memSection := remainder[midx+len(memoryMarker):]

	candidate := extractJSON(memSection)

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		rep += "\n\n[note: NEW_MEMORY block could not be parsed as JSON; previous context retained]"
		return Parsed{
			Report:    rep,
			Context:   prior,
			Violation: "malformed NEW_MEMORY block",
		}
	}

	return Parsed{
		Report:        rep,
		Context:       json.RawMessage(candidate),
		ContextParsed: true,
	}
}

// extractJSON pulls the most plausible JSON substring out of a memory
// section: fenced block first, outermost braces second, raw text last.
func extractJSON(section string) string {
	if m := fencedBlock.FindStringSubmatch(section); m != nil {
		return strings.TrimSpace(m[1])
	}

	open := strings.Index(section, "{")
	end := strings.LastIndex(section, "}")
	if open >= 0 && end > open {
		return strings.TrimSpace(section[open : end+1])
	}

	return strings.TrimSpace(section)
}
