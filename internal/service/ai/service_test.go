package ai

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sakhi/backend/internal/config"
	"github.com/zhouzirui/sakhi/backend/internal/model/persona"
)

type fakeBackend struct {
	chunks  []string
	err     error
	midErr  error
	prompts []Prompt
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Generate(_ context.Context, p Prompt) (string, error) {
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return "", f.err
	}
	return strings.Join(f.chunks, ""), nil
}

func (f *fakeBackend) Stream(_ context.Context, p Prompt) (*schema.StreamReader[string], error) {
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return nil, f.err
	}

	sr, sw := schema.Pipe[string](len(f.chunks) + 1)
	go func() {
		defer sw.Close()
		for _, c := range f.chunks {
			sw.Send(c, nil)
		}
		if f.midErr != nil {
			sw.Send("", f.midErr)
		}
	}()
	return sr, nil
}

func drain(t *testing.T, sr *schema.StreamReader[string]) (string, error) {
	t.Helper()
	defer sr.Close()

	var b strings.Builder
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteString(chunk)
	}
}

func sakhi(t *testing.T) persona.Persona {
	t.Helper()
	return persona.Seed()[0]
}

func TestReplyStreamsAndRecordsHistory(t *testing.T) {
	backend := &fakeBackend{chunks: []string{"Hel", "lo", " there"}}
	svc := NewServiceWithBackend(backend, config.AIConfig{StreamResponse: true, HistoryLimit: 10})

	token := svc.OpenContext(sakhi(t))

	sr, err := svc.Reply(context.Background(), token, "hi")
	require.NoError(t, err)
	text, err := drain(t, sr)
	require.NoError(t, err)
	assert.Equal(t, "Hello there", text)

	history, err := svc.History(token)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, schema.User, history[0].Role)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, schema.Assistant, history[1].Role)
	assert.Equal(t, "Hello there", history[1].Content)

	// 第二轮应携带前一轮历史与人设指令
	sr, err = svc.Reply(context.Background(), token, "again")
	require.NoError(t, err)
	_, err = drain(t, sr)
	require.NoError(t, err)

	require.Len(t, backend.prompts, 2)
	assert.Len(t, backend.prompts[1].History, 2)
	assert.Contains(t, backend.prompts[1].System, "Sakhi")
	assert.Equal(t, "again", backend.prompts[1].Query)
}

func TestReplyNonStreaming(t *testing.T) {
	backend := &fakeBackend{chunks: []string{"one", " piece"}}
	svc := NewServiceWithBackend(backend, config.AIConfig{StreamResponse: false})

	token := svc.OpenContext(sakhi(t))
	sr, err := svc.Reply(context.Background(), token, "hello")
	require.NoError(t, err)

	text, err := drain(t, sr)
	require.NoError(t, err)
	assert.Equal(t, "one piece", text)
}

func TestReplyUnknownToken(t *testing.T) {
	svc := NewServiceWithBackend(&fakeBackend{}, config.AIConfig{StreamResponse: true})

	_, err := svc.Reply(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, ErrContextNotFound)

	token := svc.OpenContext(sakhi(t))
	svc.CloseContext(token)
	_, err = svc.Reply(context.Background(), token, "hi")
	assert.ErrorIs(t, err, ErrContextNotFound)
}

func TestReplyBackendError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewServiceWithBackend(&fakeBackend{err: boom}, config.AIConfig{StreamResponse: true})

	token := svc.OpenContext(sakhi(t))
	_, err := svc.Reply(context.Background(), token, "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	history, err := svc.History(token)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestReplyMidStreamErrorDoesNotRecord(t *testing.T) {
	backend := &fakeBackend{chunks: []string{"partial"}, midErr: errors.New("reset")}
	svc := NewServiceWithBackend(backend, config.AIConfig{StreamResponse: true})

	token := svc.OpenContext(sakhi(t))
	sr, err := svc.Reply(context.Background(), token, "hi")
	require.NoError(t, err)

	text, err := drain(t, sr)
	assert.Error(t, err)
	assert.Equal(t, "partial", text)

	history, err := svc.History(token)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryLimit(t *testing.T) {
	backend := &fakeBackend{chunks: []string{"ok"}}
	svc := NewServiceWithBackend(backend, config.AIConfig{StreamResponse: false, HistoryLimit: 3})

	token := svc.OpenContext(sakhi(t))
	for i := 0; i < 4; i++ {
		sr, err := svc.Reply(context.Background(), token, "turn")
		require.NoError(t, err)
		_, err = drain(t, sr)
		require.NoError(t, err)
	}

	last := backend.prompts[len(backend.prompts)-1]
	assert.Len(t, last.History, 3)
}

func TestBuildSystemPrompt(t *testing.T) {
	pm := NewPersonaPromptManager()

	prompt := pm.BuildSystemPrompt(sakhi(t))
	assert.Contains(t, prompt, "You are Sakhi")
	assert.Contains(t, prompt, "emergency")

	custom := pm.BuildSystemPrompt(persona.Persona{ID: "other", Name: "Mira", Title: "a listener", Tone: "calm"})
	assert.Contains(t, custom, "You are Mira, a listener.")
}
