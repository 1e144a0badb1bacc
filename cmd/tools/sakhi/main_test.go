package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sakhi/backend/internal/analysis/rules"
	"github.com/zhouzirui/sakhi/backend/internal/service/chat"
	"github.com/zhouzirui/sakhi/backend/internal/service/companion"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRulesCheck(t *testing.T) {
	out, err := execute(t, "rules", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 7 rules, 4 defaults")
	for _, reply := range rules.DefaultTable().Defaults {
		assert.Contains(t, out, "  default: "+reply)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: []\n"), 0o600))
	_, err = execute(t, "rules", "check", "--file", path)
	assert.Error(t, err)
}

func TestRulesMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - name: stress
    keywords: [stressed, anxious]
    responses: ["Let's slow down together."]
defaults:
  - "I'm listening."
`), 0o600))

	out, err := execute(t, "rules", "match", "-f", path, "I", "am", "so", "STRESSED")
	require.NoError(t, err)
	assert.Contains(t, out, "rule: stress (stressed, anxious)")
	assert.Contains(t, out, "reply: Let's slow down together.")

	out, err = execute(t, "rules", "match", "-f", path, "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "rule: <default>")
	assert.Contains(t, out, "reply: I'm listening.")
}

func TestChatLoop(t *testing.T) {
	gen := companion.NewLocal(rules.NewMatcher(rules.DefaultTable(), rules.WithSeed(1)), 0, 0)
	svc := chat.NewService(gen)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetIn(strings.NewReader("hello there\n/quit\n"))
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, chatLoop(cmd, svc, ""))

	assert.Equal(t, 2, strings.Count(out.String(), "sakhi> "))
	assert.Equal(t, 2, strings.Count(out.String(), "you> "))
}
