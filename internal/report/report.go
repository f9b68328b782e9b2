// Package report renders pipeline outcomes for the terminal or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/feedsight/internal/analysis"
	"github.com/abhisek/feedsight/internal/lexicon"
	"github.com/abhisek/feedsight/internal/pipeline"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat resolves a format name; the empty string is FormatText.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q", name)
}

// Options controls rendering.
type Options struct {
	Format Format

	// Plain disables terminal styling in text output.
	Plain bool
}

// Write renders outcomes in the selected format.
func Write(w io.Writer, outcomes []pipeline.Outcome, opts Options) error {
	if opts.Format == FormatJSON {
		return JSON(w, outcomes)
	}
	return Text(w, outcomes, opts.Plain)
}

// FormatList renders a list field: the literal None when it holds no real
// items, otherwise the quoted items joined by ", ".
func FormatList(values []string) string {
	if analysis.IsNone(values) {
		return analysis.None
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote(v)
	}
	return strings.Join(quoted, ", ")
}

// quote wraps s in literal double quotes without escaping its contents.
func quote(s string) string {
	return `"` + s + `"`
}

type printer struct {
	w     io.Writer
	plain bool
	err   error
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if p.plain {
		return s
	}
	return style.Render(s)
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// Text writes the per-item report followed by a summary line.
func Text(w io.Writer, outcomes []pipeline.Outcome, plain bool) error {
	p := &printer{w: w, plain: plain}
	for _, o := range outcomes {
		p.outcome(o)
	}
	p.printf("%s\n", p.render(titleStyle, SummaryLine(pipeline.Summarize(outcomes))))
	return p.err
}

func (p *printer) outcome(o pipeline.Outcome) {
	p.printf("%s %s\n", p.render(titleStyle, fmt.Sprintf("[%d]", o.Index+1)), quote(o.Feedback))
	if o.Lexicon != nil {
		p.printf("  %s %+.2f (%s)\n", p.render(labelStyle, "Lexicon Score:"), o.Lexicon.Compound, o.Lexicon.Sentiment)
	}

	p.block("Rule-Based", o.Rule)

	switch {
	case o.RulesOnly:
		p.printf("  %s %s\n", p.render(headingStyle, "AI-Based"), p.render(hintStyle, "(skipped: rules only)"))
	case o.Failed() && o.Model.Sentiment == "":
		p.printf("  %s %s\n", p.render(headingStyle, "AI-Based"), p.render(errorStyle, "(unavailable)"))
	default:
		p.block("AI-Based", o.Model)
	}

	if o.Failed() {
		p.printf("  %s %s\n\n", p.render(errorStyle, "Error:"), o.Err.Error())
		return
	}
	p.block("Final Decision", o.Final)
	p.printf("\n")
}

func (p *printer) block(heading string, a analysis.Analysis) {
	p.printf("  %s\n", p.render(headingStyle, heading))
	p.field("Sentiment", p.render(sentimentStyle(a.Sentiment), quote(string(a.Sentiment))))
	p.field("Summary", quote(a.Summary))
	p.field("Themes", FormatList(a.Themes))
	p.field("Complaints", FormatList(a.Complaints))
	p.field("Improvement Suggestions", FormatList(a.Improvements))
}

func (p *printer) field(label, value string) {
	p.printf("    %s %s\n", p.render(labelStyle, label+":"), value)
}

// SummaryLine describes the batch, e.g.
// "3 items: 2 Negative, 1 Mixed; 1 failed".
func SummaryLine(sum pipeline.Summary) string {
	noun := "items"
	if sum.Total == 1 {
		noun = "item"
	}
	var parts []string
	for _, s := range analysis.Sentiments() {
		if n := sum.BySentiment[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	line := fmt.Sprintf("%d %s", sum.Total, noun)
	if len(parts) > 0 {
		line += ": " + strings.Join(parts, ", ")
	}
	if sum.Failed > 0 {
		line += fmt.Sprintf("; %d failed", sum.Failed)
	}
	return line
}

type jsonItem struct {
	Index     int                `json:"index"`
	Feedback  string             `json:"feedback"`
	RuleBased analysis.Analysis  `json:"rule_based"`
	AIBased   *analysis.Analysis `json:"ai_based,omitempty"`
	Final     *analysis.Decision `json:"final_decision,omitempty"`
	Lexicon   *lexicon.Result    `json:"lexicon,omitempty"`
	RulesOnly bool               `json:"rules_only,omitempty"`
	Error     string             `json:"error,omitempty"`
	ElapsedMs int64              `json:"elapsed_ms"`
}

type jsonSummary struct {
	Total       int                        `json:"total"`
	Failed      int                        `json:"failed"`
	BySentiment map[analysis.Sentiment]int `json:"by_sentiment"`
}

type jsonReport struct {
	Items   []jsonItem  `json:"items"`
	Summary jsonSummary `json:"summary"`
}

// JSON writes outcomes as one indented JSON document.
func JSON(w io.Writer, outcomes []pipeline.Outcome) error {
	sum := pipeline.Summarize(outcomes)
	doc := jsonReport{
		Items: make([]jsonItem, 0, len(outcomes)),
		Summary: jsonSummary{
			Total:       sum.Total,
			Failed:      sum.Failed,
			BySentiment: sum.BySentiment,
		},
	}
	for _, o := range outcomes {
		item := jsonItem{
			Index:     o.Index + 1,
			Feedback:  o.Feedback,
			RuleBased: o.Rule,
			Lexicon:   o.Lexicon,
			RulesOnly: o.RulesOnly,
			ElapsedMs: o.Elapsed.Milliseconds(),
		}
		if !o.RulesOnly && o.Model.Sentiment != "" {
			model := o.Model
			item.AIBased = &model
		}
		if o.Failed() {
			item.Error = o.Err.Error()
		} else {
			final := o.Final
			item.Final = &final
		}
		doc.Items = append(doc.Items, item)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
