package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FenceMarker opens and closes a fenced block in a model reply.
const FenceMarker = "```"

// Response keys the model is instructed to produce.
const (
	KeySentiment    = "sentiment"
	KeySummary      = "summary_of_key_points"
	KeyThemes       = "themes"
	KeyComplaints   = "complaints"
	KeyImprovements = "improvement_suggestions"
)

// RequiredKeys lists the keys a model response must carry, in prompt order.
func RequiredKeys() []string {
	return []string{KeySentiment, KeySummary, KeyThemes, KeyComplaints, KeyImprovements}
}

// Normalize coerces an analysis into canonical shape. The sentiment label is
// canonicalized case-insensitively; an empty summary becomes None; every list
// field loses blank items and duplicates and becomes exactly [None] when
// nothing is left. Normalizing a canonical analysis returns an equal value.
func Normalize(a Analysis) (Analysis, error) {
	sentiment, ok := ParseSentiment(string(a.Sentiment))
	if !ok {
		return Analysis{}, &ErrMalformedSentiment{Value: string(a.Sentiment)}
	}

	out := Analysis{
		Sentiment: sentiment,
		Summary:   normalizeSummary(a.Summary),
	}
	for _, f := range listFields {
		f.set(&out, normalizeList(f.get(&a)))
	}
	return out, nil
}

func normalizeSummary(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || isSentinel(s) {
		return None
	}
	return s
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || isSentinel(v) {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return []string{None}
	}
	return out
}

// StripFence removes a fenced-block wrapper from a model reply. When the
// trimmed content begins with the fence marker, exactly its first and last
// lines are dropped; anything else is returned trimmed and unchanged.
func StripFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, FenceMarker) {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return ""
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}

// ParseModelResponse decodes a raw model reply into a canonical analysis.
// A surrounding fence is stripped first. It returns *ErrDecode when the reply
// is not a JSON object or a value has the wrong type, *ErrMissingField when a
// required key is absent, and *ErrMalformedSentiment for an unknown label.
func ParseModelResponse(content string) (Analysis, error) {
	body := StripFence(content)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return Analysis{}, &ErrDecode{Content: content, Err: err}
	}

	for _, key := range RequiredKeys() {
		if _, ok := fields[key]; !ok {
			return Analysis{}, &ErrMissingField{Field: key}
		}
	}

	var raw Analysis
	var sentiment string
	if err := decodeField(fields, KeySentiment, &sentiment); err != nil {
		return Analysis{}, &ErrDecode{Content: content, Err: err}
	}
	raw.Sentiment = Sentiment(sentiment)

	summary, err := decodeSummary(fields[KeySummary])
	if err != nil {
		return Analysis{}, &ErrDecode{Content: content, Err: err}
	}
	raw.Summary = summary

	lists := []struct {
		key string
		dst *[]string
	}{
		{KeyThemes, &raw.Themes},
		{KeyComplaints, &raw.Complaints},
		{KeyImprovements, &raw.Improvements},
	}
	for _, l := range lists {
		if err := decodeField(fields, l.key, l.dst); err != nil {
			return Analysis{}, &ErrDecode{Content: content, Err: err}
		}
	}

	return Normalize(raw)
}

func decodeField(fields map[string]json.RawMessage, key string, dst any) error {
	if err := json.Unmarshal(fields[key], dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

// decodeSummary accepts a string, null, or a list of key points, which is
// joined the same way rule summary points are.
func decodeSummary(raw json.RawMessage) (string, error) {
	var s *string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == nil {
			return "", nil
		}
		return *s, nil
	}

	var points []string
	if err := json.Unmarshal(raw, &points); err != nil {
		return "", fmt.Errorf("field %q: want string or list of strings: %w", KeySummary, err)
	}
	return JoinSummary(points), nil
}

// JoinSummary joins summary points with "; ", skipping blanks.
func JoinSummary(points []string) string {
	kept := make([]string, 0, len(points))
	for _, p := range points {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "; ")
}
