package analysis

import (
	"fmt"
	"slices"
	"strings"
)

// Policy selects how a rule result and a model result are merged.
type Policy string

const (
	// PolicyOverlap keeps the items both analyzers agree on and only falls
	// back to one analyzer's full output when they share nothing.
	PolicyOverlap Policy = "overlap"

	// PolicyUnion takes the model's sentiment and summary and the union of
	// both analyzers' items.
	PolicyUnion Policy = "union"
)

// Policies lists the supported merge policies, default first.
func Policies() []Policy {
	return []Policy{PolicyOverlap, PolicyUnion}
}

// ParsePolicy resolves a policy name. The empty string selects PolicyOverlap.
func ParsePolicy(name string) (Policy, error) {
	if name == "" {
		return PolicyOverlap, nil
	}
	p := Policy(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(Policies(), p) {
		return "", fmt.Errorf("unknown reconciliation policy %q", name)
	}
	return p, nil
}

// Reconciler merges the two analyses of one feedback item under a fixed policy.
type Reconciler struct {
	Policy Policy
}

// NewReconciler returns a Reconciler for p; the zero policy means PolicyOverlap.
func NewReconciler(p Policy) Reconciler {
	if p == "" {
		p = PolicyOverlap
	}
	return Reconciler{Policy: p}
}

// Reconcile produces the final decision. Both inputs are expected in
// canonical shape.
func (r Reconciler) Reconcile(rule, model Analysis) Decision {
	if r.Policy == PolicyUnion {
		return reconcileUnion(rule, model)
	}
	return Reconcile(rule, model)
}

// Reconcile merges a rule result and a model result with the overlap policy.
//
// Sentiment: the agreed value, else Negative when either side is Negative,
// else Mixed. Summary: the model's unless it is None. Each list field keeps
// the model items that agree with some rule item; with no agreement it falls
// back to the model's items, then the rule's, then [None].
func Reconcile(rule, model Analysis) Decision {
	d := Decision{
		Sentiment: reconcileSentiment(rule.Sentiment, model.Sentiment),
		Summary:   model.Summary,
	}
	if isSentinel(d.Summary) || strings.TrimSpace(d.Summary) == "" {
		d.Summary = rule.Summary
	}
	for _, f := range listFields {
		f.set(&d, mergeOverlap(f.get(&rule), f.get(&model)))
	}
	return d
}

func reconcileSentiment(rule, model Sentiment) Sentiment {
	switch {
	case rule == model:
		return rule
	case rule == SentimentNegative || model == SentimentNegative:
		return SentimentNegative
	default:
		return SentimentMixed
	}
}

func mergeOverlap(rule, model []string) []string {
	ruleItems := items(rule)
	modelItems := items(model)

	var overlap []string
	for _, m := range modelItems {
		if agrees(m, ruleItems) {
			overlap = append(overlap, m)
		}
	}

	switch {
	case len(overlap) > 0:
		return normalizeList(overlap)
	case len(modelItems) > 0:
		return normalizeList(modelItems)
	default:
		return normalizeList(ruleItems)
	}
}

// agrees reports whether item contains, or is contained by, any of others,
// ignoring case. This is raw substring containment, not semantic matching:
// "app" agrees with "application issue".
func agrees(item string, others []string) bool {
	item = strings.ToLower(item)
	for _, o := range others {
		o = strings.ToLower(o)
		if strings.Contains(item, o) || strings.Contains(o, item) {
			return true
		}
	}
	return false
}

// items returns the real entries of a list field, without the sentinel.
func items(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" || isSentinel(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func reconcileUnion(rule, model Analysis) Decision {
	d := Decision{
		Sentiment: model.Sentiment,
		Summary:   normalizeSummary(model.Summary),
	}
	for _, f := range listFields {
		f.set(&d, normalizeList(append(items(f.get(&rule)), items(f.get(&model))...)))
	}
	return d
}
