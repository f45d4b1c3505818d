package telegram

import (
	"fmt"
	"strings"

	"solvesnap/api/internal/solution"
)

// FormatResult flattens a parsed solution into one chat message. On fallback
// the raw answer is sent verbatim.
func FormatResult(res *solution.Result, raw string) string {
	if res == nil {
		return ""
	}
	if res.Fallback {
		return strings.TrimSpace(raw)
	}
	var b strings.Builder
	for i, step := range res.Steps {
		fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, step.Title, step.Content)
	}
	if res.FinalAnswer != "" {
		b.WriteString("✅ Final answer: " + res.FinalAnswer)
	}
	return strings.TrimSpace(b.String())
}
