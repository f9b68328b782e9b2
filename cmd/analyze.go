package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/feedsight/internal/analysis"
	"github.com/abhisek/feedsight/internal/ingest"
	"github.com/abhisek/feedsight/internal/insight"
	"github.com/abhisek/feedsight/internal/lexicon"
	"github.com/abhisek/feedsight/internal/llm"
	"github.com/abhisek/feedsight/internal/pipeline"
	"github.com/abhisek/feedsight/internal/report"
	"github.com/abhisek/feedsight/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [feedback...]",
	Short: "Analyze customer feedback",
	Long: "Analyze each feedback item with the rule classifier and the configured language\n" +
		"model, and print both results with the reconciled final decision.\n\n" +
		"Feedback comes from arguments, or one item per line from --file (\"-\" for stdin).\n" +
		"Without a configured model provider the analysis runs on rules alone.",
	Example: `  feedsight analyze "The app crashes frequently after the update"
  feedsight analyze -f feedbacks.txt --format json
  cat feedbacks.txt | feedsight analyze -f - --policy union`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringP("file", "f", "", "Read feedback from a file, one item per line (\"-\" for stdin)")
	f.String("rules", "", "YAML rule file (default: built-in rules)")
	f.String("policy", string(analysis.PolicyOverlap), "Reconciliation policy: overlap or union")
	f.IntP("concurrency", "c", pipeline.DefaultConcurrency, "Maximum concurrent model calls")
	f.String("format", string(report.FormatText), "Output format: text or json")
	f.Bool("plain", false, "Disable colors in text output")
	f.Bool("rules-only", false, "Skip the language model and use the rule result as the decision")
	f.Bool("no-events", false, "Do not record model calls in the event database")
	f.Bool("no-lexicon", false, "Skip the VADER lexicon score shown with each item")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	items, err := readFeedback(cmd, args)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errors.New("no feedback to analyze: pass text arguments or --file")
	}

	classifier, err := loadClassifier(cmd)
	if err != nil {
		return err
	}

	policyName, _ := cmd.Flags().GetString("policy")
	policy, err := analysis.ParsePolicy(policyName)
	if err != nil {
		return err
	}
	formatName, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}
	plain, _ := cmd.Flags().GetBool("plain")
	rulesOnly, _ := cmd.Flags().GetBool("rules-only")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	runID := uuid.NewString()
	ctx := llm.WithRunID(cmd.Context(), runID)

	// Left nil unless a provider is configured; the pipeline then runs on
	// rules alone.
	var model pipeline.ModelAnalyzer
	if !rulesOnly {
		repo, closeRepo := openEventRepo(cmd, logger)
		defer closeRepo()

		provider, llmCfg, err := llm.NewProviderFromEnv(ctx, repo, logger)
		switch {
		case errors.Is(err, llm.ErrNotConfigured):
			logger.Warn("no model provider configured, running on rules only")
		case err != nil:
			return fmt.Errorf("configure model provider: %w", err)
		default:
			cfg := insight.ConfigFromEnv()
			if llmCfg.Timeout > 0 {
				cfg.Timeout = llmCfg.Timeout
			}
			model = insight.NewAnalyzer(provider, cfg)
			logger.Info("analyzing feedback",
				"items", len(items), "provider", llmCfg.Provider, "model", provider.ModelID(), "run", runID)
		}
	}

	pcfg := pipeline.Config{
		Concurrency: concurrency,
		Policy:      policy,
		RulesOnly:   rulesOnly,
	}
	if off, _ := cmd.Flags().GetBool("no-lexicon"); !off {
		pcfg.Lexicon = lexicon.NewScorer()
	}
	svc := pipeline.NewService(classifier, model, pcfg, logger)

	outcomes, runErr := svc.Run(ctx, items)
	if err := report.Write(cmd.OutOrStdout(), outcomes, report.Options{Format: format, Plain: plain}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("analysis interrupted: %w", runErr)
	}
	if sum := pipeline.Summarize(outcomes); sum.Failed > 0 {
		return fmt.Errorf("%d of %d items failed", sum.Failed, sum.Total)
	}
	return nil
}

func readFeedback(cmd *cobra.Command, args []string) ([]string, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return ingest.Args(args), nil
	}
	if len(args) > 0 {
		return nil, errors.New("pass feedback as arguments or --file, not both")
	}
	if path == "-" {
		return ingest.Lines(cmd.InOrStdin())
	}
	return ingest.ReadFile(path)
}

// openEventRepo opens the event store for call telemetry. Telemetry is
// best effort: when the database cannot be opened the run continues
// without it.
func openEventRepo(cmd *cobra.Command, logger *slog.Logger) (store.EventRepo, func()) {
	if off, _ := cmd.Flags().GetBool("no-events"); off {
		return nil, func() {}
	}
	s, err := openStore(cmd)
	if err != nil {
		logger.Warn("event recording disabled", "err", err)
		return nil, func() {}
	}
	return s.EventRepo(), func() { s.Close() }
}
