package rules

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// Matcher picks a canned reply for free text. It is safe for concurrent use.
type Matcher struct {
	table Table

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithSeed makes reply selection deterministic.
func WithSeed(seed uint64) Option {
	return func(m *Matcher) {
		m.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// NewMatcher builds a matcher over table. The table is copied and its keywords
// normalized; callers should Validate untrusted tables first.
func NewMatcher(table Table, opts ...Option) *Matcher {
	seed := uint64(time.Now().UnixNano())
	m := &Matcher{
		table: table.normalized(),
		rng:   rand.New(rand.NewPCG(seed, seed>>1)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match returns a reply for input: a random candidate of the first rule with a
// keyword contained in the lower-cased input, or a random default.
func (m *Matcher) Match(input string) string {
	return m.pick(m.candidates(input))
}

// Candidates returns the pool Match would draw from for input.
func (m *Matcher) Candidates(input string) []string {
	return append([]string(nil), m.candidates(input)...)
}

// RuleFor reports which rule input falls into, if any.
func (m *Matcher) RuleFor(input string) (Rule, bool) {
	idx := m.ruleIndex(input)
	if idx < 0 {
		return Rule{}, false
	}
	return m.table.Rules[idx], true
}

// Defaults returns the default reply pool.
func (m *Matcher) Defaults() []string {
	return append([]string(nil), m.table.Defaults...)
}

// VoiceNoteReply 是收到语音留言时的固定回复。
func (m *Matcher) VoiceNoteReply() string {
	return m.table.VoiceNoteReply
}

func (m *Matcher) candidates(input string) []string {
	if idx := m.ruleIndex(input); idx >= 0 {
		return m.table.Rules[idx].Responses
	}
	return m.table.Defaults
}

func (m *Matcher) ruleIndex(input string) int {
	normalized := strings.ToLower(input)
	for i, rule := range m.table.Rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(normalized, keyword) {
				return i
			}
		}
	}
	return -1
}

func (m *Matcher) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	if len(pool) == 1 {
		return pool[0]
	}

	m.mu.Lock()
	idx := m.rng.IntN(len(pool))
	m.mu.Unlock()

	return pool[idx]
}
