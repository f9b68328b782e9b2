package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/feedsight/internal/analysis"
	"github.com/abhisek/feedsight/internal/lexicon"
	"github.com/abhisek/feedsight/internal/pipeline"
)

var crashRule = analysis.Analysis{
	Sentiment:    analysis.SentimentNegative,
	Summary:      "App crashes reported",
	Themes:       []string{"App Stability"},
	Complaints:   []string{"Application crashes reported"},
	Improvements: []string{"Fix crashes introduced in the update"},
}

var crashModel = analysis.Analysis{
	Sentiment:    analysis.SentimentNegative,
	Summary:      "Frequent crashes after update",
	Themes:       []string{"App Stability", "Updates"},
	Complaints:   []string{"Frequent application crashes"},
	Improvements: []string{"Fix crashes introduced in the update"},
}

func sampleOutcomes() []pipeline.Outcome {
	final := analysis.Reconcile(crashRule, crashModel)
	return []pipeline.Outcome{
		{
			Index:    0,
			Feedback: "The app crashes frequently after the update",
			Rule:     crashRule,
			Model:    crashModel,
			Final:    final,
			Lexicon:  &lexicon.Result{Compound: -0.42, Sentiment: analysis.SentimentNegative},
			Elapsed:  1500 * time.Millisecond,
		},
		{
			Index:    1,
			Feedback: "Support was slow",
			Rule:     analysis.Baseline(),
			Err:      errors.New("item 2: model analysis: rate limited"),
		},
	}
}

func TestFormatList(t *testing.T) {
	assert.Equal(t, "None", FormatList(nil))
	assert.Equal(t, "None", FormatList([]string{analysis.None}))
	assert.Equal(t, `"Delivery"`, FormatList([]string{"Delivery"}))
	assert.Equal(t, `"Delivery", "App Stability"`, FormatList([]string{"Delivery", "App Stability"}))
	assert.Equal(t, `"Said \"never again\"", "C:\path"`, FormatList([]string{`Said \"never again\"`, `C:\path`}))
	assert.Equal(t, `"Said "never again""`, FormatList([]string{`Said "never again"`}), "items are quoted, not escaped")
}

func TestText_QuotesWithoutEscaping(t *testing.T) {
	o := pipeline.Outcome{
		Feedback:  `The "new" app crashes`,
		Rule:      crashRule,
		Final:     crashRule,
		RulesOnly: true,
	}
	o.Rule.Summary = `App "crashes" reported`
	o.Final = o.Rule

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, []pipeline.Outcome{o}, true))
	assert.Contains(t, buf.String(), `[1] "The "new" app crashes"`)
	assert.Contains(t, buf.String(), `Summary: "App "crashes" reported"`)
	assert.NotContains(t, buf.String(), `\"`)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestText_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleOutcomes(), true))
	out := buf.String()

	assert.NotContains(t, out, "\x1b[", "plain output carries no escape codes")
	assert.Contains(t, out, `[1] "The app crashes frequently after the update"`)
	assert.Contains(t, out, "  Rule-Based\n    Sentiment: \"Negative\"\n    Summary: \"App crashes reported\"\n")
	assert.Contains(t, out, "  Lexicon Score: -0.42 (Negative)\n")
	assert.Contains(t, out, "  AI-Based\n")
	assert.Contains(t, out, "  Final Decision\n")
	assert.Contains(t, out, `    Improvement Suggestions: "Fix crashes introduced in the update"`)

	assert.Contains(t, out, `[2] "Support was slow"`)
	assert.Contains(t, out, "    Themes: None\n")
	assert.Contains(t, out, "AI-Based (unavailable)")
	assert.Contains(t, out, "Error: item 2: model analysis: rate limited")
	assert.Equal(t, 2, strings.Count(out, "Rule-Based"))
	assert.Equal(t, 1, strings.Count(out, "Final Decision"), "failed items get no decision")

	assert.True(t, strings.HasSuffix(out, "2 items: 1 Negative; 1 failed\n"), out)
}

func TestText_RulesOnly(t *testing.T) {
	o := pipeline.Outcome{Feedback: "crash", Rule: crashRule, Final: crashRule, RulesOnly: true}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, []pipeline.Outcome{o}, true))
	assert.Contains(t, buf.String(), "AI-Based (skipped: rules only)")
	assert.Contains(t, buf.String(), "1 item: 1 Negative\n")
}

func TestText_Styled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleOutcomes()[:1], false))
	assert.Contains(t, buf.String(), "Final Decision")
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestSummaryLine(t *testing.T) {
	sum := pipeline.Summary{
		Total:  4,
		Failed: 0,
		BySentiment: map[analysis.Sentiment]int{
			analysis.SentimentMixed:    1,
			analysis.SentimentPositive: 2,
			analysis.SentimentNeutral:  1,
		},
	}
	assert.Equal(t, "4 items: 2 Positive, 1 Neutral, 1 Mixed", SummaryLine(sum))
	assert.Equal(t, "0 items", SummaryLine(pipeline.Summary{}))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleOutcomes(), Options{Format: FormatJSON}))

	var doc jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Items, 2)

	first := doc.Items[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, int64(1500), first.ElapsedMs)
	require.NotNil(t, first.AIBased)
	require.NotNil(t, first.Final)
	if diff := cmp.Diff(analysis.Reconcile(crashRule, crashModel), *first.Final); diff != "" {
		t.Errorf("final decision mismatch (-want +got):\n%s", diff)
	}

	second := doc.Items[1]
	require.NotNil(t, first.Lexicon)
	assert.Equal(t, -0.42, first.Lexicon.Compound)

	assert.Nil(t, second.AIBased)
	assert.Nil(t, second.Lexicon)
	assert.Nil(t, second.Final)
	assert.Equal(t, "item 2: model analysis: rate limited", second.Error)

	assert.Equal(t, 2, doc.Summary.Total)
	assert.Equal(t, 1, doc.Summary.Failed)
	assert.Equal(t, 1, doc.Summary.BySentiment[analysis.SentimentNegative])
	assert.Contains(t, buf.String(), `"improvement_suggestions"`)
}
