// Package analysis holds the shared feedback assessment shape and the
// operations that keep it canonical: normalization of raw analyzer output,
// shape validation, and reconciliation of a rule result with a model result.
package analysis

import "strings"

// None is the sentinel used in place of an empty list or a missing summary.
const None = "None"

// Sentiment is the overall tone assigned to a feedback item.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentMixed    Sentiment = "Mixed"
)

// Sentiments lists the four canonical values.
func Sentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed}
}

// ParseSentiment maps a label to its canonical value, ignoring case and
// surrounding whitespace.
func ParseSentiment(label string) (Sentiment, bool) {
	label = strings.TrimSpace(label)
	for _, s := range Sentiments() {
		if strings.EqualFold(label, string(s)) {
			return s, true
		}
	}
	return "", false
}

// Analysis is the structured assessment of one feedback item, produced
// independently by the rule classifier and the model analyzer.
type Analysis struct {
	Sentiment    Sentiment `json:"sentiment"`
	Summary      string    `json:"summary"`
	Themes       []string  `json:"themes"`
	Complaints   []string  `json:"complaints"`
	Improvements []string  `json:"improvement_suggestions"`
}

// Decision is the reconciled verdict for one feedback item. It has the same
// shape as Analysis and exists only as the return value of Reconcile.
type Decision = Analysis

// Baseline returns the maximally neutral analysis: Neutral sentiment and the
// sentinel in every other field.
func Baseline() Analysis {
	return Analysis{
		Sentiment:    SentimentNeutral,
		Summary:      None,
		Themes:       []string{None},
		Complaints:   []string{None},
		Improvements: []string{None},
	}
}

// IsNone reports whether values is empty or holds only the sentinel.
func IsNone(values []string) bool {
	for _, v := range values {
		if !isSentinel(v) {
			return false
		}
	}
	return true
}

func isSentinel(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), None)
}

// field pairs a list field name with accessors, so per-field algorithms are
// written once.
type field struct {
	name string
	get  func(*Analysis) []string
	set  func(*Analysis, []string)
}

var listFields = []field{
	{
		name: "themes",
		get:  func(a *Analysis) []string { return a.Themes },
		set:  func(a *Analysis, v []string) { a.Themes = v },
	},
	{
		name: "complaints",
		get:  func(a *Analysis) []string { return a.Complaints },
		set:  func(a *Analysis, v []string) { a.Complaints = v },
	},
	{
		name: "improvement_suggestions",
		get:  func(a *Analysis) []string { return a.Improvements },
		set:  func(a *Analysis, v []string) { a.Improvements = v },
	},
}
