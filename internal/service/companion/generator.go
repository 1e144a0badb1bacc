package companion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/sakhi/backend/internal/analysis/rules"
	"github.com/zhouzirui/sakhi/backend/internal/service/audio"
)

// Mode names a turn-generation strategy.
type Mode string

const (
	ModeLocal            Mode = "local"
	ModeRemoteText       Mode = "remote-text"
	ModeRemoteTextSpeech Mode = "remote-text-speech"
)

// FallbackText 远程生成失败时展示给用户的固定回复。
const FallbackText = "I'm having trouble connecting right now. Please try again in a moment."

// ErrNotConfigured means the selected strategy lacks credentials.
var ErrNotConfigured = errors.New("companion strategy is not configured")

// AudioInput is a recorded user turn.
type AudioInput struct {
	Data            []byte
	Format          string
	DurationSeconds float64
}

// Turn is one request for a companion reply.
type Turn struct {
	SessionID string
	Token     string
	// Text 为用户输入；开场白时为话题。
	Text     string
	Audio    *AudioInput
	Greeting bool
}

// EventKind tags generator output.
type EventKind string

const (
	// EventTranscript carries the recognized text of the user's audio turn.
	EventTranscript EventKind = "transcript"
	// EventDelta appends text to the companion reply.
	EventDelta EventKind = "delta"
	// EventFallback replaces the companion reply with FallbackText.
	EventFallback EventKind = "fallback"
	// EventAudio carries the synthesized reply.
	EventAudio EventKind = "audio"
)

// Event is one piece of generator output.
type Event struct {
	Kind EventKind
	Text string
	Clip *audio.Clip
}

// Generator produces companion turns. Generate never fails: every remote error
// is reported as a single EventFallback and the stream then ends.
type Generator interface {
	Mode() Mode
	// Open prepares per-session state and returns an opaque token, empty when
	// the strategy keeps none.
	Open(ctx context.Context, sessionID, topic string) (string, error)
	Close(token string)
	Generate(ctx context.Context, turn Turn) *schema.StreamReader[Event]
}

// GreetingPrompt is the input used for the opening turn.
func GreetingPrompt(topic string) string {
	if strings.TrimSpace(topic) == "" {
		return rules.DefaultPrompt
	}
	return topic
}

// emit runs fn on a goroutine and returns the stream it writes to.
func emit(fn func(send func(Event) bool)) *schema.StreamReader[Event] {
	sr, sw := schema.Pipe[Event](4)
	go func() {
		defer sw.Close()
		fn(func(ev Event) bool {
			return !sw.Send(ev, nil)
		})
	}()
	return sr
}

func fallback() Event {
	return Event{Kind: EventFallback, Text: FallbackText}
}

// sleep waits for d or ctx, reporting whether the wait completed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
