// Package classifier routes post text to a verdict with three tiers of
// named pattern rules.
//
// Definite rules win on the first match. Suspicious and exclude rules are
// tallied by distinct rule, and a post is suspicious only when the
// suspicious tally reaches the threshold and beats the exclude tally.
package classifier

import (
	"BookTriage/internal/domain"
	"BookTriage/internal/ports"
)

// Explanation lists which rules fired for a piece of text.
type Explanation struct {
	Verdict    domain.Verdict
	Definite   string
	Suspicious []string
	Exclude    []string
}

// Classifier applies a compiled rule set.
type Classifier struct {
	rules RuleSet
}

var _ ports.Classifier = (*Classifier)(nil)

// New wraps a compiled rule set.
func New(rules RuleSet) *Classifier {
	return &Classifier{rules: rules}
}

// NewDefault builds a classifier from the embedded rules.
func NewDefault() (*Classifier, error) {
	rules, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	return New(rules), nil
}

// Classify returns the verdict for text.
func (c *Classifier) Classify(text string) domain.Verdict {
	return c.Explain(text).Verdict
}

// Explain classifies text and reports the rules that decided it.
func (c *Classifier) Explain(text string) Explanation {
	if text == "" {
		return Explanation{Verdict: domain.VerdictNonpublish}
	}

	for _, rule := range c.rules.Definite {
		if rule.Match(text) {
			return Explanation{Verdict: domain.VerdictDefinite, Definite: rule.Name}
		}
	}

	exp := Explanation{
		Suspicious: matching(c.rules.Suspicious, text),
		Exclude:    matching(c.rules.Exclude, text),
	}

	suspicious, exclude := len(exp.Suspicious), len(exp.Exclude)
	if suspicious >= c.threshold() && suspicious > exclude {
		exp.Verdict = domain.VerdictSuspicious
	} else {
		exp.Verdict = domain.VerdictNonpublish
	}
	return exp
}

func (c *Classifier) threshold() int {
	if c.rules.Threshold <= 0 {
		return defaultThreshold
	}
	return c.rules.Threshold
}

func matching(rules []Rule, text string) []string {
	var names []string
	for _, rule := range rules {
		if rule.Match(text) {
			names = append(names, rule.Name)
		}
	}
	return names
}
