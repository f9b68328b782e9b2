package rules

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/feedsight/internal/analysis"
)

func TestClassify_EmptyTextIsBaseline(t *testing.T) {
	got := NewClassifier(nil).Classify("")
	if diff := cmp.Diff(analysis.Baseline(), got); diff != "" {
		t.Errorf("Classify(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_NoTriggerIsBaseline(t *testing.T) {
	c := NewClassifier(nil)
	for _, text := range []string{
		"The price went up last month",
		"I absolutely love the app",
		"   ",
	} {
		got := c.Classify(text)
		assert.Equal(t, analysis.SentimentNeutral, got.Sentiment, text)
		assert.Equal(t, analysis.None, got.Summary, text)
		assert.Equal(t, []string{analysis.None}, got.Themes, text)
		assert.Equal(t, []string{analysis.None}, got.Complaints, text)
		assert.Equal(t, []string{analysis.None}, got.Improvements, text)
	}
}

func TestClassify_CrashIsNegative(t *testing.T) {
	c := NewClassifier(nil)
	for _, text := range []string{
		"The app crashes frequently after the update",
		"CRASH on launch",
		"it crashed twice",
	} {
		got := c.Classify(text)
		assert.Equal(t, analysis.SentimentNegative, got.Sentiment, text)
		assert.Equal(t, []string{"Application crashes reported"}, got.Complaints, text)
		assert.Equal(t, []string{"App Stability"}, got.Themes, text)
		assert.Equal(t, []string{"Fix crashes introduced in the update"}, got.Improvements, text)
		assert.Equal(t, "App crashes reported", got.Summary, text)
	}
}

func TestClassify_SlowAndGreatIsMixed(t *testing.T) {
	got := NewClassifier(nil).Classify("Great product but shipping was slow")

	assert.Equal(t, analysis.SentimentMixed, got.Sentiment)
	assert.Equal(t, []string{"Delivery", "Customer Support"}, got.Themes)
	assert.Equal(t, []string{"Delivery was delayed"}, got.Complaints)
	assert.Equal(t, []string{"Improve delivery timelines", "Acknowledge positive feedback"}, got.Improvements)
	assert.Equal(t, "Delivery issues detected; Positive customer experience noted", got.Summary)
}

func TestClassify_PraiseOnlyIsPositive(t *testing.T) {
	got := NewClassifier(nil).Classify("Customer service resolved my issue quickly")

	assert.Equal(t, analysis.SentimentPositive, got.Sentiment)
	assert.Equal(t, []string{"Customer Support"}, got.Themes)
	assert.Equal(t, []string{analysis.None}, got.Complaints)
	assert.Equal(t, []string{"Acknowledge positive feedback"}, got.Improvements)
}

func TestClassify_MultipleComplaints(t *testing.T) {
	got := NewClassifier(nil).Classify("Onboarding is confusing and delivery had a delay")

	assert.Equal(t, analysis.SentimentNegative, got.Sentiment)
	assert.Equal(t, []string{"Delivery was delayed", "Onboarding process is confusing"}, got.Complaints)
	assert.Equal(t, "Delivery issues detected; Onboarding issues detected", got.Summary)
}

func TestClassify_RepeatedTriggersCollapse(t *testing.T) {
	got := NewClassifier(nil).Classify("slow slow delay, helpful and great and resolved")

	assert.Equal(t, []string{"Delivery was delayed"}, got.Complaints)
	assert.Equal(t, []string{"Delivery", "Customer Support"}, got.Themes)
}

func TestClassify_SharedContributionsCollapse(t *testing.T) {
	c := NewClassifier([]Rule{
		{Name: "late", Triggers: []string{"late"}, Complaint: "Delivery problem", Theme: "Delivery"},
		{Name: "lost", Triggers: []string{"lost"}, Complaint: "Delivery problem", Theme: "Delivery", Summary: "Lost parcel"},
	})

	got := c.Classify("late and then lost")
	assert.Equal(t, []string{"Delivery problem"}, got.Complaints)
	assert.Equal(t, []string{"Delivery"}, got.Themes)
	assert.Equal(t, "Lost parcel", got.Summary)
	assert.Equal(t, []string{analysis.None}, got.Improvements)
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(nil)
	texts := []string{
		"",
		"Delivery was slow but customer support was helpful",
		"The app crashes frequently after the update",
		"Great features but onboarding is confusing",
		"I absolutely love the app – smooth performance, great features, and excellent support",
	}
	for _, text := range texts {
		first := c.Classify(text)
		second := c.Classify(text)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Classify(%q) not deterministic:\n%s", text, diff)
		}
	}
}

func TestClassify_OutputIsCanonical(t *testing.T) {
	c := NewClassifier(nil)
	texts := []string{
		"",
		"slow",
		"helpful",
		"crash and great and confusing and delay",
		strings.Repeat("delay ", 50),
	}
	for _, text := range texts {
		got := c.Classify(text)
		require.NoError(t, got.Validate(), text)

		normalized, err := analysis.Normalize(got)
		require.NoError(t, err)
		if diff := cmp.Diff(got, normalized); diff != "" {
			t.Errorf("classifier output for %q not canonical (-got +normalized):\n%s", text, diff)
		}
	}
}

func TestClassify_LegacyRuleFile(t *testing.T) {
	table, err := Load("testdata/legacy.yaml")
	require.NoError(t, err)

	got := NewClassifier(table).Classify("The app crashes frequently after the update")
	assert.Equal(t, analysis.SentimentNegative, got.Sentiment)
	assert.Equal(t, []string{"App stability issues"}, got.Complaints)
	assert.Equal(t, []string{"Technical"}, got.Themes)

	model := analysis.Analysis{
		Sentiment:    analysis.SentimentNegative,
		Summary:      "Frequent crashes after update",
		Themes:       []string{"App Stability"},
		Complaints:   []string{"Frequent application crashes"},
		Improvements: []string{"Fix app crashes"},
	}
	final := analysis.Reconcile(got, model)
	assert.Equal(t, []string{"Frequent application crashes"}, final.Complaints,
		"no literal containment, so the model's complaints are kept")
}

func TestNewClassifier_CopiesTable(t *testing.T) {
	table := DefaultRules()
	c := NewClassifier(table)
	table[0].Triggers = []string{"nothing-matches-this"}

	assert.Equal(t, analysis.SentimentNegative, c.Classify("slow").Sentiment)
	assert.Len(t, c.Rules(), 4)
}
