package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableIsValid(t *testing.T) {
	table := DefaultTable()
	require.NoError(t, table.Validate())
	assert.Len(t, table.Rules, 7)
	assert.Len(t, table.Defaults, 4)
}

func TestValidateRejectsEmptyPools(t *testing.T) {
	cases := map[string]Table{
		"no defaults": {
			Rules:          []Rule{{Keywords: []string{"a"}, Responses: []string{"b"}}},
			VoiceNoteReply: "v",
		},
		"rule without responses": {
			Rules:          []Rule{{Keywords: []string{"a"}}},
			Defaults:       []string{"d"},
			VoiceNoteReply: "v",
		},
		"rule without keywords": {
			Rules:          []Rule{{Responses: []string{"b"}}},
			Defaults:       []string{"d"},
			VoiceNoteReply: "v",
		},
		"blank default": {
			Rules:          []Rule{{Keywords: []string{"a"}, Responses: []string{"b"}}},
			Defaults:       []string{""},
			VoiceNoteReply: "v",
		},
		"whitespace keyword": {
			Rules:          []Rule{{Keywords: []string{"  "}, Responses: []string{"b"}}},
			Defaults:       []string{"d"},
			VoiceNoteReply: "v",
		},
		"whitespace response": {
			Rules:          []Rule{{Keywords: []string{"a"}, Responses: []string{"\t"}}},
			Defaults:       []string{"d"},
			VoiceNoteReply: "v",
		},
	}

	for name, table := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, table.Validate())
		})
	}
}

func TestParseTable(t *testing.T) {
	data := []byte(`
rules:
  - name: calm
    keywords: [calm, peaceful]
    responses:
      - "Peace is a good place to rest."
defaults:
  - "Tell me more."
`)

	table, err := ParseTable(data)
	require.NoError(t, err)
	require.Len(t, table.Rules, 1)
	assert.Equal(t, []string{"calm", "peaceful"}, table.Rules[0].Keywords)
	assert.Equal(t, DefaultTable().VoiceNoteReply, table.VoiceNoteReply)

	m := NewMatcher(table)
	assert.Equal(t, "Peace is a good place to rest.", m.Match("so peaceful"))
	assert.Equal(t, "Tell me more.", m.Match("hmm"))
}

func TestParseTableErrors(t *testing.T) {
	_, err := ParseTable([]byte("rules: ["))
	assert.Error(t, err)

	_, err = ParseTable([]byte("rules: []\ndefaults: [x]\n"))
	assert.Error(t, err)

	_, err = ParseTable([]byte("rules:\n  - keywords: [\"  \"]\n    responses: [hi]\ndefaults: [x]\n"))
	assert.Error(t, err)
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - keywords: [tired]
    responses: ["Rest is allowed."]
defaults: ["I'm here."]
voiceNoteReply: "Got your voice note."
`), 0o600))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, "Got your voice note.", table.VoiceNoteReply)

	_, err = LoadTable(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
