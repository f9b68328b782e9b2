package rules

import (
	"strings"

	"github.com/abhisek/feedsight/internal/analysis"
)

// Classifier applies a fixed rule table to feedback text. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier over rules. A nil or empty table selects
// DefaultRules.
func NewClassifier(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// Rules returns a copy of the active rule table.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify maps feedback text to an analysis. Every rule is evaluated
// independently and contributions accumulate as sets. Sentiment is Mixed when
// a complaint and praise both fired, Negative for complaints alone, Positive
// when only praise fired, and Neutral otherwise. Empty text yields
// analysis.Baseline.
func (c *Classifier) Classify(text string) analysis.Analysis {
	lowered := strings.ToLower(text)

	var themes, complaints, improvements, points set
	praised := false

	for _, r := range c.rules {
		if !r.Matches(lowered) {
			continue
		}
		complaints.add(r.Complaint)
		themes.add(r.Theme)
		improvements.add(r.Improvement)
		points.add(r.Summary)
		if r.Praise() {
			praised = true
		}
	}

	summary := analysis.None
	if !points.empty() {
		summary = analysis.JoinSummary(points.items)
	}

	return analysis.Analysis{
		Sentiment:    deriveSentiment(!complaints.empty(), praised, !themes.empty()),
		Summary:      summary,
		Themes:       themes.orNone(),
		Complaints:   complaints.orNone(),
		Improvements: improvements.orNone(),
	}
}

func deriveSentiment(complained, praised, themed bool) analysis.Sentiment {
	switch {
	case complained && praised:
		return analysis.SentimentMixed
	case complained:
		return analysis.SentimentNegative
	case themed || praised:
		return analysis.SentimentPositive
	default:
		return analysis.SentimentNeutral
	}
}

// set is an insertion-ordered string set.
type set struct {
	items []string
	seen  map[string]struct{}
}

func (s *set) add(v string) {
	if v == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *set) empty() bool { return len(s.items) == 0 }

func (s *set) orNone() []string {
	if s.empty() {
		return []string{analysis.None}
	}
	return s.items
}
