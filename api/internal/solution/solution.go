// Package solution turns a raw markdown answer from a language model into an
// ordered list of titled steps plus an isolated final answer. The input is
// untrusted model output: nothing about its shape is guaranteed, so parsing is
// best-effort and never fails.
package solution

import (
	"fmt"
	"strings"
)

// Step is one titled unit of a parsed solution. Content is never empty for a
// retained step.
type Step struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Result is the structured form of a raw model answer. When Fallback is true
// both Steps and FinalAnswer are empty and the caller should render the raw
// text verbatim instead.
type Result struct {
	Steps       []Step `json:"steps"`
	FinalAnswer string `json:"final_answer"`
	Fallback    bool   `json:"fallback"`
}

// Markdown renders the result back into the canonical answer layout. Used by
// the CLI front end; on Fallback it returns the empty string so the caller can
// substitute the raw answer.
func (r *Result) Markdown() string {
	if r == nil || r.Fallback {
		return ""
	}
	var b strings.Builder
	if len(r.Steps) > 0 {
		b.WriteString("## Solution Steps\n\n")
		for i, st := range r.Steps {
			fmt.Fprintf(&b, "### Step %d: %s\n\n%s\n\n", i+1, st.Title, st.Content)
		}
	}
	if r.FinalAnswer != "" {
		b.WriteString("## Final Answer\n\n")
		b.WriteString(r.FinalAnswer)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
