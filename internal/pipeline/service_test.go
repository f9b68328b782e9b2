package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/feedsight/internal/analysis"
	"github.com/abhisek/feedsight/internal/lexicon"
	"github.com/abhisek/feedsight/internal/rules"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeAnalyzer answers from a table keyed by feedback text.
type fakeAnalyzer struct {
	mu       sync.Mutex
	replies  map[string]analysis.Analysis
	errs     map[string]error
	delay    time.Duration
	inflight atomic.Int32
	peak     atomic.Int32
	calls    int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string) (analysis.Analysis, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return analysis.Analysis{}, ctx.Err()
		}
	}
	if err, ok := f.errs[text]; ok {
		return analysis.Analysis{}, err
	}
	if a, ok := f.replies[text]; ok {
		return a, nil
	}
	return analysis.Baseline(), nil
}

var crashModel = analysis.Analysis{
	Sentiment:    analysis.SentimentNegative,
	Summary:      "Frequent crashes after update",
	Themes:       []string{"App Stability"},
	Complaints:   []string{"Frequent application crashes"},
	Improvements: []string{"Fix crashes introduced in the update"},
}

func TestProcess_ReconcilesBothAnalyzers(t *testing.T) {
	text := "The app crashes frequently after the update"
	svc := NewService(rules.NewClassifier(nil), &fakeAnalyzer{replies: map[string]analysis.Analysis{text: crashModel}}, Config{}, nil)

	out := svc.Process(context.Background(), 0, text)
	require.NoError(t, out.Err)
	assert.False(t, out.RulesOnly)
	assert.Equal(t, analysis.SentimentNegative, out.Rule.Sentiment)
	assert.Equal(t, crashModel, out.Model)
	assert.Equal(t, analysis.SentimentNegative, out.Final.Sentiment)
	assert.Equal(t, "Frequent crashes after update", out.Final.Summary)
	assert.Equal(t, []string{"Fix crashes introduced in the update"}, out.Final.Improvements)
}

func TestProcess_ModelFailureIsPerItem(t *testing.T) {
	boom := errors.New("provider down")
	svc := NewService(rules.NewClassifier(nil), &fakeAnalyzer{errs: map[string]error{"bad": boom}}, Config{}, nil)

	out := svc.Process(context.Background(), 2, "bad")
	require.ErrorIs(t, out.Err, boom)
	assert.True(t, out.Failed())
	assert.Contains(t, out.Err.Error(), "item 3")
	assert.Equal(t, analysis.Decision{}, out.Final)
	assert.Equal(t, analysis.SentimentNeutral, out.Rule.Sentiment, "rule result is kept for reporting")
}

func TestProcess_InvalidDecisionIsReported(t *testing.T) {
	// A model result that skipped normalization.
	raw := analysis.Analysis{Sentiment: "negative", Summary: "x", Themes: []string{}, Complaints: []string{}, Improvements: []string{}}
	svc := NewService(rules.NewClassifier(nil), &fakeAnalyzer{replies: map[string]analysis.Analysis{"x": raw}}, Config{Policy: analysis.PolicyUnion}, nil)

	out := svc.Process(context.Background(), 0, "x")
	var shape *analysis.ErrInvalidShape
	require.ErrorAs(t, out.Err, &shape)
}

func TestProcess_RulesOnly(t *testing.T) {
	model := &fakeAnalyzer{}
	svc := NewService(rules.NewClassifier(nil), model, Config{RulesOnly: true}, nil)

	out := svc.Process(context.Background(), 0, "Great product but shipping was slow")
	require.NoError(t, out.Err)
	assert.True(t, out.RulesOnly)
	assert.Equal(t, out.Rule, out.Final)
	assert.Equal(t, analysis.SentimentMixed, out.Final.Sentiment)
	assert.Zero(t, model.calls)
}

func TestNewService_NilModelMeansRulesOnly(t *testing.T) {
	svc := NewService(rules.NewClassifier(nil), nil, Config{}, nil)
	assert.True(t, svc.RulesOnly())

	outcomes, err := svc.Run(context.Background(), []string{"crash", ""})
	require.NoError(t, err)
	assert.Equal(t, analysis.SentimentNegative, outcomes[0].Final.Sentiment)
	assert.Equal(t, analysis.Baseline(), outcomes[1].Final)
}

func TestRun_PreservesOrderAndBoundsConcurrency(t *testing.T) {
	items := make([]string, 20)
	replies := make(map[string]analysis.Analysis, len(items))
	for i := range items {
		items[i] = fmt.Sprintf("feedback %d", i)
		replies[items[i]] = analysis.Analysis{
			Sentiment:    analysis.SentimentNeutral,
			Summary:      items[i],
			Themes:       []string{analysis.None},
			Complaints:   []string{analysis.None},
			Improvements: []string{analysis.None},
		}
	}
	model := &fakeAnalyzer{replies: replies, delay: 5 * time.Millisecond}
	svc := NewService(rules.NewClassifier(nil), model, Config{Concurrency: 3}, nil)

	outcomes, err := svc.Run(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, outcomes, len(items))
	for i, o := range outcomes {
		require.NoError(t, o.Err)
		assert.Equal(t, i, o.Index)
		assert.Equal(t, items[i], o.Feedback)
		assert.Equal(t, items[i], o.Final.Summary)
		assert.True(t, o.Elapsed >= 5*time.Millisecond, "elapsed %v", o.Elapsed)
	}
	assert.LessOrEqual(t, model.peak.Load(), int32(3))
	assert.Equal(t, len(items), model.calls)
}

func TestRun_FailureDoesNotHideOtherItems(t *testing.T) {
	model := &fakeAnalyzer{errs: map[string]error{"second": errors.New("timeout")}}
	svc := NewService(rules.NewClassifier(nil), model, Config{Concurrency: 2}, nil)

	outcomes, err := svc.Run(context.Background(), []string{"first slow", "second", "third crash"})
	require.NoError(t, err)
	assert.False(t, outcomes[0].Failed())
	assert.True(t, outcomes[1].Failed())
	assert.False(t, outcomes[2].Failed())

	sum := Summarize(outcomes)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 2, sum.BySentiment[analysis.SentimentNegative])
}

func TestRun_Cancelled(t *testing.T) {
	items := make([]string, 50)
	for i := range items {
		items[i] = fmt.Sprintf("item %d", i)
	}
	model := &fakeAnalyzer{delay: time.Second}
	svc := NewService(rules.NewClassifier(nil), model, Config{Concurrency: 2}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	outcomes, err := svc.Run(ctx, items)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Len(t, outcomes, len(items))
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.DeadlineExceeded, "item %d", o.Index)
	}
	assert.Less(t, model.calls, len(items))
}

func TestRun_Empty(t *testing.T) {
	svc := NewService(rules.NewClassifier(nil), &fakeAnalyzer{}, Config{}, nil)
	outcomes, err := svc.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

type fixedScorer float64

func (f fixedScorer) Score(string) lexicon.Result {
	return lexicon.Result{Compound: float64(f), Sentiment: lexicon.Label(float64(f))}
}

func TestProcess_LexiconIsInformational(t *testing.T) {
	svc := NewService(rules.NewClassifier(nil), nil, Config{Lexicon: fixedScorer(0.8)}, nil)

	out := svc.Process(context.Background(), 0, "The app crashes frequently after the update")
	require.NoError(t, out.Err)
	require.NotNil(t, out.Lexicon)
	assert.Equal(t, analysis.SentimentPositive, out.Lexicon.Sentiment)
	assert.Equal(t, analysis.SentimentNegative, out.Final.Sentiment, "lexicon never changes the decision")

	out = NewService(rules.NewClassifier(nil), nil, Config{}, nil).Process(context.Background(), 0, "crash")
	assert.Nil(t, out.Lexicon)
}
