package agent

import (
	"bytes"
	"encoding/json"
	"strings"

	"willdo/internal/task"
)

// systemPrompt instructs the model to emit the two-block response protocol
// that report.Parse consumes.
const systemPrompt = `You are an automated task agent. Execute the user's request precisely.

Structure your entire response as exactly two labeled blocks, in this order:

USER_REPORT:
A clear, human-readable report of what you did and what you found.

NEW_MEMORY:
A single fenced json code block containing one JSON object. This object
replaces your stored context wholesale, so carry forward anything from the
previous context that you still need.`

// buildUserPrompt assembles the user message: previous context first (state
// awareness), then the instruction, then the advisory tool list.
func buildUserPrompt(t task.Task) string {
	var b strings.Builder

	if ctx := prettyContext(t.Context); ctx != "" {
		b.WriteString("PREVIOUS CONTEXT:\n")
		b.WriteString(ctx)
		b.WriteString("\n\n")
	}

	b.WriteString("CURRENT TASK:\n")
	b.WriteString(strings.TrimSpace(t.TaskDefinition))

	if len(t.Tools) > 0 {
		b.WriteString("\n\nTOOLS: you may use these tools if your runtime provides them: ")
		b.WriteString(strings.Join(t.Tools, ", "))
	}

	return b.String()
}

// prettyContext renders the stored context JSON for the prompt. Empty or
// unreadable context is omitted rather than sent as noise.
func prettyContext(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("{}")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
