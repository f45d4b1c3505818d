package llm

import (
	"fmt"
	"strings"
)

// The markdown layout every engine is asked to produce. The parser tolerates
// deviation from it; this is a prompt contract, not an enforced format.
const answerLayout = `## Solution Steps
### Step 1: <short step title>
<explanation of the step>
### Step 2: <short step title>
<explanation of the step>
## Final Answer
<the final answer only, no extra commentary>`

// SolutionSystemPrompt builds the system instruction for a solve request.
func SolutionSystemPrompt(language string) string {
	lang := strings.TrimSpace(language)
	if lang == "" {
		lang = "English"
	}
	return fmt.Sprintf(`You are a patient school tutor. Solve the given homework task and explain it step by step so a student can follow the reasoning. Respond in %s.

Format the whole answer as markdown using EXACTLY this layout:

%s

Use as many steps as the task needs. Keep step titles short. Put nothing after the final answer.`, lang, answerLayout)
}

// SolutionUserPrompt builds the user message for a solve request.
func SolutionUserPrompt(in SolveInput) string {
	if in.HasQuestion() && in.HasImage() {
		return "Solve this task. The attached image is part of the task.\n\nTask:\n" + strings.TrimSpace(in.Question)
	}
	if in.HasQuestion() {
		return "Solve this task:\n\n" + strings.TrimSpace(in.Question)
	}
	return "Solve the task shown on the attached image."
}
