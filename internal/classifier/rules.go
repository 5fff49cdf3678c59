package classifier

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

const defaultThreshold = 2

// ErrInvalidRule reports a rule that cannot be compiled or is unnamed.
var ErrInvalidRule = errors.New("invalid rule")

// Rule is a named case-insensitive pattern.
type Rule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`

	expr *regexp.Regexp
}

// Match reports whether the rule finds its pattern anywhere in text.
func (r Rule) Match(text string) bool {
	if r.expr == nil {
		return false
	}
	return r.expr.MatchString(text)
}

// RuleSet groups the three tiers with the suspicious threshold.
type RuleSet struct {
	Threshold  int    `yaml:"threshold"`
	Definite   []Rule `yaml:"definite"`
	Suspicious []Rule `yaml:"suspicious"`
	Exclude    []Rule `yaml:"exclude"`
}

// DefaultRules returns the embedded rule set.
func DefaultRules() (RuleSet, error) {
	return ParseRules(defaultRulesYAML)
}

// LoadRules reads a YAML rule set from path.
func LoadRules(path string) (RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	rules, err := ParseRules(raw)
	if err != nil {
		return RuleSet{}, fmt.Errorf("rules %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes and compiles a YAML rule set.
func ParseRules(raw []byte) (RuleSet, error) {
	var set RuleSet
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return RuleSet{}, fmt.Errorf("parse rules: %w", err)
	}
	if err := set.Compile(); err != nil {
		return RuleSet{}, err
	}
	return set, nil
}

// Compile prepares every pattern; it is safe to call more than once.
func (s *RuleSet) Compile() error {
	if s.Threshold <= 0 {
		s.Threshold = defaultThreshold
	}
	tiers := []struct {
		name  string
		rules []Rule
	}{
		{"definite", s.Definite},
		{"suspicious", s.Suspicious},
		{"exclude", s.Exclude},
	}
	for _, tier := range tiers {
		for i := range tier.rules {
			if err := tier.rules[i].compile(); err != nil {
				return fmt.Errorf("%s rule %d: %w", tier.name, i, err)
			}
		}
	}
	return nil
}

func (r *Rule) compile() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidRule)
	}
	if r.Pattern == "" {
		return fmt.Errorf("%w: %s has an empty pattern", ErrInvalidRule, r.Name)
	}
	expr, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRule, r.Name, err)
	}
	r.expr = expr
	return nil
}
