package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BookTriage/internal/domain"
)

func newDefault(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewDefault()
	require.NoError(t, err)
	return c
}

func TestClassifyScenarios(t *testing.T) {
	t.Parallel()

	c := newDefault(t)

	tests := []struct {
		name string
		text string
		want domain.Verdict
	}{
		{"finished reading", "読了！『三体』を読み終わった、傑作だった", domain.VerdictDefinite},
		{"novel impression", "面白い小説だった。主人公が魅力的", domain.VerdictSuspicious},
		{"weather", "本日は晴天なり、本当に良い天気", domain.VerdictNonpublish},
		{"empty", "", domain.VerdictNonpublish},
		{"unrelated", "ランチはカレーでした", domain.VerdictNonpublish},
		{"kindle case folded", "KINDLE で買い直した", domain.VerdictDefinite},
		{"single weak cue", "作家の講演会に行った", domain.VerdictNonpublish},
		{"full-width volume number", "第３巻が出た。シリーズ最高", domain.VerdictSuspicious},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestDefiniteWinsOverExcludes(t *testing.T) {
	t.Parallel()

	c := newDefault(t)
	text := "本日は本当に基本の日本の話。書評です。絵本と図鑑と技術書も"

	exp := c.Explain(text)
	assert.Equal(t, domain.VerdictDefinite, exp.Verdict)
	assert.Equal(t, "book-review", exp.Definite)
	assert.Empty(t, exp.Suspicious, "suspicious tier must not run after a definite match")
}

func TestExcludesSuppressSuspicious(t *testing.T) {
	t.Parallel()

	c := newDefault(t)
	// book-word and fiction-medium match; every exclude rule matches too.
	text := "本日の絵本と漫画、本の少しだけ技術書"

	exp := c.Explain(text)
	assert.ElementsMatch(t, []string{"book-word", "fiction-medium"}, exp.Suspicious)
	assert.Len(t, exp.Exclude, 4)
	assert.Equal(t, domain.VerdictNonpublish, exp.Verdict)
}

func TestDistinctRulesCountedOnce(t *testing.T) {
	t.Parallel()

	c := newDefault(t)
	// Many occurrences of a single cue still count as one rule.
	exp := c.Explain("小説 小説 小説 小説")
	assert.Equal(t, []string{"fiction-medium"}, exp.Suspicious)
	assert.Equal(t, domain.VerdictNonpublish, exp.Verdict)
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	c := newDefault(t)
	inputs := []string{"", "面白い小説だった。主人公が魅力的", "本日は晴天なり", "読破した"}
	for _, in := range inputs {
		first := c.Classify(in)
		for i := 0; i < 5; i++ {
			require.Equal(t, first, c.Classify(in), "input %q", in)
		}
	}
}

func TestEachDefaultRuleMatchesSample(t *testing.T) {
	t.Parallel()

	rules, err := DefaultRules()
	require.NoError(t, err)
	require.Len(t, rules.Definite, 25)
	require.Len(t, rules.Suspicious, 15)
	require.Len(t, rules.Exclude, 4)
	assert.Equal(t, 2, rules.Threshold)

	samples := map[string]string{
		"library-loan":                   "図書館で借りた",
		"quoted-title-with-reading-verb": "『銀河鉄道の夜』を読んだ",
		"demonstrative-work":             "この作品は心に残る",
		"volume-number":                  "第12巻まで来た",
		"online-bookseller":              "Amazonで注文",
		"hon-no-phrase":                  "本の一部だけ",
	}

	all := append(append(append([]Rule{}, rules.Definite...), rules.Suspicious...), rules.Exclude...)
	found := 0
	for _, rule := range all {
		sample, ok := samples[rule.Name]
		if !ok {
			continue
		}
		found++
		assert.True(t, rule.Match(sample), "rule %s should match %q", rule.Name, sample)
		if rule.Name == "volume-number" {
			assert.True(t, rule.Match("第３巻まで来た"), "full-width digits")
			assert.True(t, rule.Match("１２巻"), "full-width digits")
		}
	}
	assert.Equal(t, len(samples), found)
}

func TestParseRulesRejectsBadPattern(t *testing.T) {
	t.Parallel()

	_, err := ParseRules([]byte("definite:\n  - name: broken\n    pattern: '(unclosed'\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRule)
	assert.Contains(t, err.Error(), "broken")

	_, err = ParseRules([]byte("exclude:\n  - pattern: 'x'\n"))
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestLoadRulesFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	raw := []byte(`threshold: 1
definite:
  - name: review
    pattern: 'review'
suspicious:
  - name: novel
    pattern: 'novel'
`)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	c := New(rules)
	assert.Equal(t, domain.VerdictDefinite, c.Classify("Book REVIEW"))
	assert.Equal(t, domain.VerdictSuspicious, c.Classify("a novel"))
	assert.Equal(t, domain.VerdictNonpublish, c.Classify("weather"))

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
