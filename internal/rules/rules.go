// Package rules implements the keyword rule classifier. A rule table maps
// trigger substrings to the labels they contribute; the classifier matches
// every rule against the feedback text and derives a sentiment from what fired.
package rules

import (
	"fmt"
	"strings"
)

// Rule is one row of the rule table. When any trigger occurs in the feedback
// text (case-insensitively), each non-empty contribution is recorded.
type Rule struct {
	Name        string   `yaml:"name"`
	Triggers    []string `yaml:"triggers"`
	Complaint   string   `yaml:"complaint,omitempty"`
	Theme       string   `yaml:"theme,omitempty"`
	Improvement string   `yaml:"improvement,omitempty"`
	Summary     string   `yaml:"summary,omitempty"`
}

// Praise reports whether the rule signals positive feedback, i.e. it fires
// without recording a complaint.
func (r Rule) Praise() bool {
	return r.Complaint == ""
}

// Matches reports whether any trigger occurs in lowered, which must already
// be lowercase.
func (r Rule) Matches(lowered string) bool {
	for _, t := range r.Triggers {
		if strings.Contains(lowered, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// Validate checks that the rule can fire and contributes something.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("rule name required")
	}
	if len(r.Triggers) == 0 {
		return fmt.Errorf("rule %q: at least one trigger required", r.Name)
	}
	for _, t := range r.Triggers {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("rule %q: empty trigger", r.Name)
		}
	}
	if r.Complaint == "" && r.Theme == "" && r.Improvement == "" && r.Summary == "" {
		return fmt.Errorf("rule %q: no contributions", r.Name)
	}
	return nil
}

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "delivery",
			Triggers:    []string{"slow", "delay"},
			Complaint:   "Delivery was delayed",
			Theme:       "Delivery",
			Improvement: "Improve delivery timelines",
			Summary:     "Delivery issues detected",
		},
		{
			Name:        "stability",
			Triggers:    []string{"crash"},
			Complaint:   "Application crashes reported",
			Theme:       "App Stability",
			Improvement: "Fix crashes introduced in the update",
			Summary:     "App crashes reported",
		},
		{
			Name:        "onboarding",
			Triggers:    []string{"onboarding", "confusing"},
			Complaint:   "Onboarding process is confusing",
			Theme:       "Onboarding",
			Improvement: "Simplify onboarding experience",
			Summary:     "Onboarding issues detected",
		},
		{
			Name:        "support",
			Triggers:    []string{"helpful", "resolved", "great"},
			Theme:       "Customer Support",
			Improvement: "Acknowledge positive feedback",
			Summary:     "Positive customer experience noted",
		},
	}
}
