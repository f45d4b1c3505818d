package solution

import (
	"regexp"
	"strings"
)

// Placeholder titles and the single-step fallback title.
const (
	titleExplanation = "Explanation"
	titleStepDetails = "Step Details"
	titleAnalysis    = "Analysis"
)

// splitStrategy is the step-delimiter heuristic chosen for one answer. Models
// are expected to pick one convention per answer, so exactly one strategy is
// selected by first-match precedence and applied uniformly.
type splitStrategy int

const (
	splitNone splitStrategy = iota
	splitHeading
	splitBold
	splitStepKeyword
	splitNumbered
)

var (
	// "## Final Answer" or "**Final Answer", case-insensitive.
	reFinalAnswer = regexp.MustCompile(`(?i)(?:##+\s*|\*\*\s*)final answer`)
	// A "##"-level heading containing "Solution Steps".
	reStepsHeading = regexp.MustCompile(`(?im)^##[^#\n]*solution steps[^\n]*$`)

	// Step-boundary patterns, in priority order.
	reHeadingLine  = regexp.MustCompile(`(?m)^###\s`)
	reBoldLine     = regexp.MustCompile(`(?im)^\*\*[^*\n]*\bstep\b`)
	reKeywordLine  = regexp.MustCompile(`(?im)^step\s*\d+\s*[:.]`)
	reNumberedLine = regexp.MustCompile(`(?m)^\d+\.\s+[A-Z]`)

	// Header cleanup.
	reLeadingJunk = regexp.MustCompile(`^[\s:*]+`)
	reHeadingMark = regexp.MustCompile(`^###\s*`)
	reStepPrefix  = regexp.MustCompile(`(?i)^(?:step\s*\d+|step\s+[a-z]|\d+\.)\s*[-:.]?\s*`)
)

// Parse maps a raw markdown answer to its structured form. It returns nil only
// when raw is blank (no result yet). For any other input it produces a
// best-effort structure and never fails: the worst case is a single "Analysis"
// step or Fallback=true.
func Parse(raw string) *Result {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	finalAnswer := ""
	stepsText := raw
	if loc := reFinalAnswer.FindStringIndex(raw); loc != nil {
		finalAnswer = strings.TrimSpace(reLeadingJunk.ReplaceAllString(raw[loc[1]:], ""))
		stepsText = raw[:loc[0]]
	}

	contentToParse := stepsText
	if loc := reStepsHeading.FindStringIndex(stepsText); loc != nil {
		contentToParse = stepsText[loc[1]:]
	}

	var steps []Step
	if _, re := chooseStrategy(contentToParse); re != nil {
		for _, segment := range splitBefore(contentToParse, re) {
			if step, ok := normalizeStep(segment); ok {
				steps = append(steps, step)
			}
		}
	}

	fallback := false
	if len(steps) == 0 {
		if body := strings.TrimSpace(contentToParse); body != "" {
			steps = []Step{{Title: titleAnalysis, Content: body}}
		} else if finalAnswer == "" {
			fallback = true
		}
	}

	return &Result{Steps: steps, FinalAnswer: finalAnswer, Fallback: fallback}
}

// chooseStrategy picks the first step-boundary pattern that matches anywhere
// in the content. The strict priority order keeps a heading-structured answer
// from being re-fragmented by coincidental numeric lines inside it.
func chooseStrategy(content string) (splitStrategy, *regexp.Regexp) {
	switch {
	case reHeadingLine.MatchString(content):
		return splitHeading, reHeadingLine
	case reBoldLine.MatchString(content):
		return splitBold, reBoldLine
	case reKeywordLine.MatchString(content):
		return splitStepKeyword, reKeywordLine
	case reNumberedLine.MatchString(content):
		return splitNumbered, reNumberedLine
	default:
		return splitNone, nil
	}
}

// splitBefore cuts content immediately before every line matching re. Text
// preceding the first match is kept as its own segment when non-blank.
func splitBefore(content string, re *regexp.Regexp) []string {
	locs := re.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}
	segments := make([]string, 0, len(locs)+1)
	if head := content[:locs[0][0]]; strings.TrimSpace(head) != "" {
		segments = append(segments, head)
	}
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segments = append(segments, content[loc[0]:end])
	}
	return segments
}

// normalizeStep converts one raw split segment into a Step. The first line is
// the header, the rest is body. A header whose content ended up inline (no
// body) is demoted into the body under the "Explanation" placeholder. Steps
// with no body content at all are dropped.
func normalizeStep(segment string) (Step, bool) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return Step{}, false
	}

	header := segment
	body := ""
	if i := strings.IndexByte(segment, '\n'); i >= 0 {
		header = segment[:i]
		body = strings.TrimSpace(segment[i+1:])
	}

	title := reHeadingMark.ReplaceAllString(strings.TrimSpace(header), "")
	title = strings.ReplaceAll(title, "**", "")
	title = strings.TrimSpace(reStepPrefix.ReplaceAllString(strings.TrimSpace(title), ""))

	if body == "" && title != "" {
		body = title
		title = titleExplanation
	}
	if title == "" {
		title = titleStepDetails
	}
	if body == "" {
		return Step{}, false
	}
	return Step{Title: title, Content: body}, true
}
