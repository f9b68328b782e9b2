package insight

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/feedsight/internal/analysis"
	"github.com/abhisek/feedsight/internal/llm"
)

const crashReply = `{
  "sentiment": "negative",
  "summary_of_key_points": "Frequent crashes after update",
  "themes": ["App Stability"],
  "complaints": ["Frequent application crashes"],
  "improvement_suggestions": ["Fix app crashes"]
}`

func TestAnalyze_ParsesAndNormalizes(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(crashReply)})
	a := NewAnalyzer(mock, DefaultAnalyzerConfig())

	got, err := a.Analyze(context.Background(), "The app crashes frequently after the update")
	require.NoError(t, err)

	assert.Equal(t, analysis.SentimentNegative, got.Sentiment)
	assert.Equal(t, "Frequent crashes after update", got.Summary)
	assert.Equal(t, []string{"App Stability"}, got.Themes)
	assert.Equal(t, []string{"Frequent application crashes"}, got.Complaints)
	assert.Equal(t, []string{"Fix app crashes"}, got.Improvements)
}

func TestAnalyze_FencedReply(t *testing.T) {
	fenced := "```json\n" + crashReply + "\n```"
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(fenced)})

	got, err := NewAnalyzer(mock, DefaultAnalyzerConfig()).Analyze(context.Background(), "crash")
	require.NoError(t, err)
	assert.Equal(t, analysis.SentimentNegative, got.Sentiment)
}

func TestAnalyze_EmptyListsBecomeNone(t *testing.T) {
	reply := `{"sentiment":"Positive","summary_of_key_points":"","themes":["Support"],"complaints":[],"improvement_suggestions":[]}`
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(reply)})

	got, err := NewAnalyzer(mock, DefaultAnalyzerConfig()).Analyze(context.Background(), "Support was great")
	require.NoError(t, err)
	assert.Equal(t, analysis.None, got.Summary)
	assert.Equal(t, []string{analysis.None}, got.Complaints)
	assert.Equal(t, []string{analysis.None}, got.Improvements)
	require.NoError(t, got.Validate())
}

func TestAnalyze_BuildsRequest(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(crashReply)})
	cfg := DefaultAnalyzerConfig()
	cfg.Temperature = 0.2

	_, err := NewAnalyzer(mock, cfg).Analyze(context.Background(), "  Delivery was slow  ")
	require.NoError(t, err)
	require.Equal(t, 1, mock.CallCount())

	req := mock.Calls[0]
	assert.Equal(t, "You generate structured customer insights.", req.System)
	assert.Nil(t, req.Schema, "schema is opt-in")
	assert.Equal(t, 512, req.MaxTokens)
	assert.Equal(t, 0.2, req.Temperature)
	require.Len(t, req.Messages, 1)

	prompt := req.Messages[0].Content
	for _, key := range analysis.RequiredKeys() {
		assert.Contains(t, prompt, "- "+key+"\n")
	}
	assert.Contains(t, prompt, "Positive, Negative, Neutral, Mixed")
	assert.True(t, strings.HasSuffix(prompt, "Customer feedback:\nDelivery was slow\n"), prompt)
}

func TestAnalyze_StructuredSendsSchema(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(crashReply)})
	cfg := DefaultAnalyzerConfig()
	cfg.Structured = true

	_, err := NewAnalyzer(mock, cfg).Analyze(context.Background(), "crash")
	require.NoError(t, err)
	assert.Same(t, InsightSchema, mock.Calls[0].Schema)
}

func TestAnalyze_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})

	_, err := NewAnalyzer(mock, DefaultAnalyzerConfig()).Analyze(context.Background(), "crash")
	var rl *llm.ErrRateLimit
	require.ErrorAs(t, err, &rl)
}

func TestAnalyze_MalformedReplies(t *testing.T) {
	tests := []struct {
		name   string
		reply  string
		target any
	}{
		{"not json", "I think the customer is upset.", new(*analysis.ErrDecode)},
		{"missing field", `{"sentiment":"Negative","themes":[],"complaints":[],"improvement_suggestions":[]}`, new(*analysis.ErrMissingField)},
		{"bad sentiment", `{"sentiment":"Furious","summary_of_key_points":"x","themes":[],"complaints":[],"improvement_suggestions":[]}`, new(*analysis.ErrMalformedSentiment)},
		{"wrong type", `{"sentiment":"Negative","summary_of_key_points":"x","themes":"App","complaints":[],"improvement_suggestions":[]}`, new(*analysis.ErrDecode)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.reply)})
			_, err := NewAnalyzer(mock, DefaultAnalyzerConfig()).Analyze(context.Background(), "x")
			require.Error(t, err)
			assert.ErrorAs(t, err, tt.target)
		})
	}
}

func TestAnalyze_TagsPurposeAndHonorsTimeout(t *testing.T) {
	var (
		purpose  string
		deadline bool
	)
	p := providerFunc(func(ctx context.Context, _ llm.Request) (*llm.Response, error) {
		purpose = llm.PurposeFrom(ctx)
		_, deadline = ctx.Deadline()
		return &llm.Response{Content: json.RawMessage(crashReply)}, nil
	})

	cfg := DefaultAnalyzerConfig()
	cfg.Timeout = time.Second
	_, err := NewAnalyzer(p, cfg).Analyze(context.Background(), "crash")
	require.NoError(t, err)
	assert.Equal(t, Purpose, purpose)
	assert.True(t, deadline)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("FEEDSIGHT_STRUCTURED_OUTPUT", "true")
	t.Setenv("FEEDSIGHT_MAX_TOKENS", "900")

	cfg := ConfigFromEnv()
	assert.True(t, cfg.Structured)
	assert.Equal(t, 900, cfg.MaxTokens)

	t.Setenv("FEEDSIGHT_STRUCTURED_OUTPUT", "maybe")
	t.Setenv("FEEDSIGHT_MAX_TOKENS", "0")
	cfg = ConfigFromEnv()
	assert.False(t, cfg.Structured)
	assert.Equal(t, DefaultAnalyzerConfig().MaxTokens, cfg.MaxTokens)
}

func TestInsightSchema_Compiles(t *testing.T) {
	require.NoError(t, llm.ValidateSchema(InsightSchema))
}

type providerFunc func(context.Context, llm.Request) (*llm.Response, error)

func (f providerFunc) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return f(ctx, req)
}

func (f providerFunc) ModelID() string { return "func" }
