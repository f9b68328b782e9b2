package analysis

import "strings"

// Validate checks the canonical shape: a known sentiment, a non-empty
// summary, and list fields that are either sentinel-free and non-empty or
// exactly [None]. It returns *ErrInvalidShape for the first violation.
func (a Analysis) Validate() error {
	if canonical, ok := ParseSentiment(string(a.Sentiment)); !ok || canonical != a.Sentiment {
		return &ErrInvalidShape{Field: "sentiment", Reason: "not one of Positive, Negative, Neutral, Mixed"}
	}
	if strings.TrimSpace(a.Summary) == "" {
		return &ErrInvalidShape{Field: "summary", Reason: "empty; use the None sentinel"}
	}

	for _, f := range listFields {
		values := f.get(&a)
		if len(values) == 0 {
			return &ErrInvalidShape{Field: f.name, Reason: "empty; use [None]"}
		}
		if len(values) == 1 && isSentinel(values[0]) {
			if values[0] != None {
				return &ErrInvalidShape{Field: f.name, Reason: "sentinel must be spelled None"}
			}
			continue
		}
		for _, v := range values {
			if isSentinel(v) {
				return &ErrInvalidShape{Field: f.name, Reason: "sentinel mixed with items"}
			}
			if strings.TrimSpace(v) == "" {
				return &ErrInvalidShape{Field: f.name, Reason: "blank item"}
			}
		}
	}
	return nil
}
