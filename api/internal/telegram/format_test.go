package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"solvesnap/api/internal/solution"
)

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name string
		res  *solution.Result
		raw  string
		want string
	}{
		{
			name: "nil result",
			res:  nil,
			raw:  "anything",
			want: "",
		},
		{
			name: "fallback sends raw text",
			res:  &solution.Result{Fallback: true},
			raw:  "  unparseable answer \n",
			want: "unparseable answer",
		},
		{
			name: "steps and final answer",
			res: &solution.Result{
				Steps: []solution.Step{
					{Title: "Setup", Content: "Do X."},
					{Title: "Solve", Content: "Do Y."},
				},
				FinalAnswer: "42",
			},
			want: "1. Setup\nDo X.\n\n2. Solve\nDo Y.\n\n✅ Final answer: 42",
		},
		{
			name: "steps without final answer",
			res: &solution.Result{
				Steps: []solution.Step{{Title: "Analysis", Content: "Reasoning."}},
			},
			want: "1. Analysis\nReasoning.",
		},
		{
			name: "final answer only",
			res:  &solution.Result{FinalAnswer: "x = 7"},
			want: "✅ Final answer: x = 7",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatResult(tc.res, tc.raw))
		})
	}
}
