package insight

import (
	"github.com/abhisek/feedsight/internal/analysis"
	"github.com/abhisek/feedsight/internal/llm"
)

func stringList(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

func sentimentLabels() []any {
	out := make([]any, 0, 4)
	for _, s := range analysis.Sentiments() {
		out = append(out, string(s))
	}
	return out
}

// InsightSchema is sent with the request when structured output is enabled.
// Every key is required and nothing else is allowed, which OpenAI strict
// mode demands.
var InsightSchema = &llm.Schema{
	Name:        "feedback-insight",
	Description: "Structured analysis of one piece of customer feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			analysis.KeySentiment: map[string]any{
				"type":        "string",
				"enum":        sentimentLabels(),
				"description": "Overall sentiment of the feedback",
			},
			analysis.KeySummary: map[string]any{
				"type":        "string",
				"description": "One or two sentences summarizing the key points",
			},
			analysis.KeyThemes:       stringList("Topics the feedback touches on"),
			analysis.KeyComplaints:   stringList("Complaints stated in the feedback, empty if none"),
			analysis.KeyImprovements: stringList("Improvements addressing the complaints"),
		},
		"required":             []any{analysis.KeySentiment, analysis.KeySummary, analysis.KeyThemes, analysis.KeyComplaints, analysis.KeyImprovements},
		"additionalProperties": false,
	},
}
