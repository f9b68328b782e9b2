// Package insight asks a language model for a structured reading of one
// piece of customer feedback and normalizes the reply.
package insight

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/abhisek/feedsight/internal/analysis"
	"github.com/abhisek/feedsight/internal/llm"
)

// Purpose tags every analysis call in the event log.
const Purpose = "feedback-analysis"

// AnalyzerConfig holds configuration for the model analyzer.
type AnalyzerConfig struct {
	MaxTokens   int
	Temperature float64

	// Structured sends InsightSchema with the request, so providers use
	// native structured output and validate the reply. Off by default: the
	// prompt alone asks for JSON and fenced replies are tolerated.
	Structured bool

	// Timeout bounds one Analyze call, retries included. Zero means no
	// bound beyond the caller's context.
	Timeout time.Duration
}

// DefaultAnalyzerConfig returns sensible defaults.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MaxTokens: 512,
		Timeout:   30 * time.Second,
	}
}

// ConfigFromEnv applies FEEDSIGHT_STRUCTURED_OUTPUT and
// FEEDSIGHT_MAX_TOKENS over the defaults.
func ConfigFromEnv() AnalyzerConfig {
	cfg := DefaultAnalyzerConfig()
	if v := os.Getenv("FEEDSIGHT_STRUCTURED_OUTPUT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Structured = b
		}
	}
	if v := os.Getenv("FEEDSIGHT_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	return cfg
}

// Analyzer produces an analysis.Analysis from a model.
type Analyzer struct {
	provider llm.Provider
	cfg      AnalyzerConfig
}

// NewAnalyzer creates a model analyzer.
func NewAnalyzer(provider llm.Provider, cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{provider: provider, cfg: cfg}
}

// ModelID reports the model behind the analyzer.
func (a *Analyzer) ModelID() string {
	return a.provider.ModelID()
}

// Analyze sends text to the model and returns its normalized analysis.
// Transport failures come back wrapped from the llm package; malformed
// replies surface as analysis.ErrDecode, analysis.ErrMissingField or
// analysis.ErrMalformedSentiment.
func (a *Analyzer) Analyze(ctx context.Context, text string) (analysis.Analysis, error) {
	ctx = llm.WithPurpose(ctx, Purpose)
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	prompt, err := buildPrompt(text)
	if err != nil {
		return analysis.Analysis{}, fmt.Errorf("build analysis prompt: %w", err)
	}

	req := llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	}
	if a.cfg.Structured {
		req.Schema = InsightSchema
	}

	resp, err := a.provider.Generate(ctx, req)
	if err != nil {
		return analysis.Analysis{}, fmt.Errorf("model analysis: %w", err)
	}

	result, err := analysis.ParseModelResponse(string(resp.Content))
	if err != nil {
		return analysis.Analysis{}, fmt.Errorf("parse model analysis: %w", err)
	}
	return result, nil
}

const systemPrompt = "You generate structured customer insights."

var userTemplate = template.Must(template.New("insight").Funcs(template.FuncMap{
	"trim": strings.TrimSpace,
}).Parse(`You are an expert customer feedback analyst.

Analyze the feedback and return a VALID JSON object with EXACTLY these keys:
{{range .Keys}}- {{.}}
{{end}}
Rules:
- sentiment is one of: {{.Sentiments}}.
- Extract complaints ONLY from the feedback.
- If a complaint exists, suggest at least one improvement.
- Do NOT return None.
- Use empty lists only if nothing applies.

Customer feedback:
{{trim .Text}}
`))

func buildPrompt(text string) (string, error) {
	labels := make([]string, 0, 4)
	for _, s := range analysis.Sentiments() {
		labels = append(labels, string(s))
	}

	var buf bytes.Buffer
	err := userTemplate.Execute(&buf, struct {
		Keys       []string
		Sentiments string
		Text       string
	}{
		Keys:       analysis.RequiredKeys(),
		Sentiments: strings.Join(labels, ", "),
		Text:       text,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
