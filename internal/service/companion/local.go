package companion

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/sakhi/backend/internal/analysis/rules"
)

// Local answers from the rule table after a short artificial "thinking" delay.
type Local struct {
	matcher       *rules.Matcher
	greetingDelay time.Duration
	replyDelay    time.Duration
}

func NewLocal(matcher *rules.Matcher, greetingDelay, replyDelay time.Duration) *Local {
	return &Local{matcher: matcher, greetingDelay: greetingDelay, replyDelay: replyDelay}
}

func (l *Local) Mode() Mode { return ModeLocal }

func (l *Local) Open(context.Context, string, string) (string, error) { return "", nil }

func (l *Local) Close(string) {}

func (l *Local) Generate(ctx context.Context, turn Turn) *schema.StreamReader[Event] {
	delay := l.replyDelay
	if turn.Greeting {
		delay = l.greetingDelay
	}

	return emit(func(send func(Event) bool) {
		if !sleep(ctx, delay) {
			return
		}

		var reply string
		switch {
		case turn.Greeting:
			reply = l.matcher.Match(GreetingPrompt(turn.Text))
		case turn.Audio != nil:
			reply = l.matcher.VoiceNoteReply()
		default:
			reply = l.matcher.Match(turn.Text)
		}
		send(Event{Kind: EventDelta, Text: reply})
	})
}
