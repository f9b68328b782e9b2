// Package lexicon scores feedback with the VADER sentiment lexicon. The
// score is reported next to each item for reference and never feeds the
// reconciled decision.
package lexicon

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/abhisek/feedsight/internal/analysis"
)

// Threshold is the compound score magnitude past which text counts as
// positive or negative.
const Threshold = 0.20

// Result is the lexicon reading of one text.
type Result struct {
	Compound  float64            `json:"compound"`
	Sentiment analysis.Sentiment `json:"sentiment"`
}

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?://[^\s)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

// Scorer wraps a VADER analyzer. Calls are serialized, so one Scorer can be
// shared by the pipeline workers.
type Scorer struct {
	mu       sync.Mutex
	compound func(text string) float64
}

// NewScorer loads the VADER lexicon.
func NewScorer() *Scorer {
	vader := govader.NewSentimentIntensityAnalyzer()
	return &Scorer{compound: func(text string) float64 {
		return vader.PolarityScores(text).Compound
	}}
}

// Score returns the compound polarity of text and its coarse label.
func (s *Scorer) Score(text string) Result {
	plain := PlainText(text)
	s.mu.Lock()
	compound := s.compound(plain)
	s.mu.Unlock()
	return Result{Compound: compound, Sentiment: Label(compound)}
}

// Label maps a compound score to Positive, Negative or Neutral.
func Label(compound float64) analysis.Sentiment {
	switch {
	case compound >= Threshold:
		return analysis.SentimentPositive
	case compound <= -Threshold:
		return analysis.SentimentNegative
	default:
		return analysis.SentimentNeutral
	}
}

// PlainText renders markdown feedback (as pasted from tickets) to plain
// words: link targets and bare URLs are dropped.
func PlainText(text string) string {
	text = linkPattern.ReplaceAllString(text, "$1")
	rendered := blackfriday.Run([]byte(text),
		blackfriday.WithNoExtensions(),
		blackfriday.WithRenderer(blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{})))
	plain := html.UnescapeString(tagPattern.ReplaceAllString(string(rendered), " "))
	plain = urlPattern.ReplaceAllString(plain, "")
	return strings.Join(strings.Fields(plain), " ")
}
