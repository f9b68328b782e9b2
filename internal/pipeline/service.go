// Package pipeline runs both analyzers over a batch of feedback and
// reconciles their results, one independent outcome per item.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/feedsight/internal/analysis"
	"github.com/abhisek/feedsight/internal/lexicon"
)

// DefaultConcurrency bounds in-flight model calls when Config leaves it unset.
const DefaultConcurrency = 4

// RuleClassifier is the deterministic analyzer.
type RuleClassifier interface {
	Classify(text string) analysis.Analysis
}

// ModelAnalyzer is the language-model analyzer.
type ModelAnalyzer interface {
	Analyze(ctx context.Context, text string) (analysis.Analysis, error)
}

// LexiconScorer gives a reference polarity score that is reported but
// never reconciled.
type LexiconScorer interface {
	Score(text string) lexicon.Result
}

// Config holds pipeline settings.
type Config struct {
	Concurrency int
	Policy      analysis.Policy

	// RulesOnly skips the model; the rule result becomes the decision.
	RulesOnly bool

	// Lexicon, when set, scores every item alongside the analyzers.
	Lexicon LexiconScorer
}

// Outcome is the result for one feedback item. When Err is set, Final is
// the zero value and must not be reported as a decision.
type Outcome struct {
	Index     int
	Feedback  string
	Rule      analysis.Analysis
	Model     analysis.Analysis
	Final     analysis.Decision
	Lexicon   *lexicon.Result
	RulesOnly bool
	Elapsed   time.Duration
	Err       error
}

// Failed reports whether no decision could be produced for the item.
func (o Outcome) Failed() bool { return o.Err != nil }

// Service wires the analyzers to the reconciler.
type Service struct {
	rules      RuleClassifier
	model      ModelAnalyzer
	reconciler analysis.Reconciler
	cfg        Config
	logger     *slog.Logger
}

// NewService creates a pipeline. A nil model forces rules-only mode.
func NewService(rules RuleClassifier, model ModelAnalyzer, cfg Config, logger *slog.Logger) *Service {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	if model == nil {
		cfg.RulesOnly = true
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		rules:      rules,
		model:      model,
		reconciler: analysis.NewReconciler(cfg.Policy),
		cfg:        cfg,
		logger:     logger,
	}
}

// RulesOnly reports whether the service runs without the model.
func (s *Service) RulesOnly() bool { return s.cfg.RulesOnly }

// Process analyzes a single feedback item.
func (s *Service) Process(ctx context.Context, index int, text string) (out Outcome) {
	start := time.Now()
	out = Outcome{Index: index, Feedback: text, RulesOnly: s.cfg.RulesOnly}
	defer func() { out.Elapsed = time.Since(start) }()

	out.Rule = s.rules.Classify(text)
	if s.cfg.Lexicon != nil {
		score := s.cfg.Lexicon.Score(text)
		out.Lexicon = &score
	}

	if s.cfg.RulesOnly {
		out.Final = out.Rule
	} else {
		model, err := s.model.Analyze(ctx, text)
		if err != nil {
			out.Err = fmt.Errorf("item %d: %w", index+1, err)
			s.logger.WarnContext(ctx, "model analysis failed", "item", index+1, "err", err)
			return out
		}
		out.Model = model
		out.Final = s.reconciler.Reconcile(out.Rule, model)
	}

	if err := out.Final.Validate(); err != nil {
		out.Err = fmt.Errorf("item %d: decision: %w", index+1, err)
		out.Final = analysis.Decision{}
		return out
	}

	s.logger.DebugContext(ctx, "item analyzed",
		"item", index+1, "rule", out.Rule.Sentiment, "model", out.Model.Sentiment, "final", out.Final.Sentiment)
	return out
}

// Run analyzes items on a bounded worker pool. Outcomes keep input order
// and one item's failure never affects another. The returned error is
// non-nil only when ctx ended before every item was processed; items that
// were never dispatched carry the context error.
func (s *Service) Run(ctx context.Context, items []string) ([]Outcome, error) {
	outcomes := make([]Outcome, len(items))
	for i, text := range items {
		outcomes[i] = Outcome{Index: i, Feedback: text, RulesOnly: s.cfg.RulesOnly}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	dispatched := 0
	for i, text := range items {
		if gctx.Err() != nil {
			break
		}
		dispatched++
		g.Go(func() error {
			outcomes[i] = s.Process(gctx, i, text)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		for i := dispatched; i < len(items); i++ {
			outcomes[i].Err = fmt.Errorf("item %d: %w", i+1, err)
		}
		return outcomes, err
	}
	return outcomes, nil
}

// Summary counts outcomes for the report footer.
type Summary struct {
	Total       int
	Failed      int
	BySentiment map[analysis.Sentiment]int
}

// Summarize tallies final sentiments over the successful outcomes.
func Summarize(outcomes []Outcome) Summary {
	sum := Summary{Total: len(outcomes), BySentiment: make(map[analysis.Sentiment]int)}
	for _, o := range outcomes {
		if o.Failed() {
			sum.Failed++
			continue
		}
		sum.BySentiment[o.Final.Sentiment]++
	}
	return sum
}
