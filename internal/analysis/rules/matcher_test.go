package rules

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchFirstRuleWins(t *testing.T) {
	m := NewMatcher(DefaultTable(), WithSeed(1))
	table := DefaultTable()

	cases := []struct {
		name  string
		input string
		rule  int
	}{
		{"sad", "I feel sad today", 0},
		{"case insensitive", "SO STRESSED", 1},
		{"substring", "I'm stuck and lost", 2},
		{"bored", "so bored", 3},
		{"hello", "hello", 4},
		{"thanks phrase", "thank you", 5},
		{"positive", "feeling great", 6},
		// 同时命中多条规则时取靠前的一条
		{"earlier rule beats later", "good but lonely", 0},
		{"substring of larger word", "this", 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reply := m.Match(tc.input)
			assert.Contains(t, table.Rules[tc.rule].Responses, reply)

			rule, ok := m.RuleFor(tc.input)
			require.True(t, ok)
			assert.Equal(t, table.Rules[tc.rule].Name, rule.Name)
		})
	}
}

func TestMatchFallsBackToDefaults(t *testing.T) {
	m := NewMatcher(DefaultTable(), WithSeed(7))

	for _, input := range []string{"", "xyz", "the weather today"} {
		reply := m.Match(input)
		assert.Contains(t, DefaultTable().Defaults, reply, "input %q", input)

		_, ok := m.RuleFor(input)
		assert.False(t, ok)
	}
}

func TestMatchIsTotal(t *testing.T) {
	m := NewMatcher(DefaultTable(), WithSeed(11))
	defaults := DefaultTable().Defaults

	cases := map[string]string{
		"invalid utf-8":    "\xff\xfe\xfd",
		"very long":        strings.Repeat("🙂ñ", 1<<19),
		"no letters":       "12345 !!! ???",
		"full-width":       "ＳＡＤ",
		"dotted capital i": "İ",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			var reply string
			require.NotPanics(t, func() { reply = m.Match(input) })
			assert.Contains(t, defaults, reply)

			_, ok := m.RuleFor(input)
			assert.False(t, ok)
		})
	}
}

func TestMatchSingleResponseRuleIsDeterministic(t *testing.T) {
	m := NewMatcher(DefaultTable())

	for i := 0; i < 20; i++ {
		assert.Equal(t, "You're very welcome. I'm always here if you need to talk.", m.Match("thanks"))
	}
}

func TestSeededMatcherIsReproducible(t *testing.T) {
	a := NewMatcher(DefaultTable(), WithSeed(42))
	b := NewMatcher(DefaultTable(), WithSeed(42))

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Match("I am anxious"), b.Match("I am anxious"))
	}
}

func TestCandidatesReturnsCopy(t *testing.T) {
	m := NewMatcher(DefaultTable())

	candidates := m.Candidates("sad")
	require.Len(t, candidates, 3)
	candidates[0] = "mutated"

	assert.NotContains(t, m.Candidates("sad"), "mutated")
}

func TestNormalizationDropsBlankKeywords(t *testing.T) {
	table := Table{
		Rules: []Rule{
			{Keywords: []string{"  ", " Calm "}, Responses: []string{"calm reply"}},
		},
		Defaults:       []string{"default"},
		VoiceNoteReply: "voice",
	}
	m := NewMatcher(table)

	assert.Equal(t, "calm reply", m.Match("I feel CALM"))
	assert.Equal(t, "default", m.Match("anything else"))
	assert.Equal(t, "voice", m.VoiceNoteReply())
}

func TestMatcherConcurrentUse(t *testing.T) {
	m := NewMatcher(DefaultTable(), WithSeed(3))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.NotEmpty(t, m.Match("worried"))
			}
		}()
	}
	wg.Wait()
}
