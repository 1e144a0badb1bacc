package companion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/sakhi/backend/internal/logging"
	"github.com/zhouzirui/sakhi/backend/internal/model/persona"
)

// TextReplier is the remote text model with server-side context.
type TextReplier interface {
	OpenContext(p persona.Persona) string
	CloseContext(token string)
	Reply(ctx context.Context, token, query string) (*schema.StreamReader[string], error)
}

// RemoteText streams replies from a remote model seeded with the persona.
type RemoteText struct {
	ai             TextReplier
	persona        persona.Persona
	voiceNoteReply string
	logger         *slog.Logger
}

func NewRemoteText(ai TextReplier, p persona.Persona, voiceNoteReply string) *RemoteText {
	return &RemoteText{
		ai:             ai,
		persona:        p,
		voiceNoteReply: voiceNoteReply,
		logger:         logging.Component("companion").With("mode", string(ModeRemoteText)),
	}
}

func (r *RemoteText) Mode() Mode { return ModeRemoteText }

func (r *RemoteText) Open(_ context.Context, sessionID, _ string) (string, error) {
	token := r.ai.OpenContext(r.persona)
	r.logger.Debug("context opened", "session", sessionID)
	return token, nil
}

func (r *RemoteText) Close(token string) {
	if token != "" {
		r.ai.CloseContext(token)
	}
}

func (r *RemoteText) Generate(ctx context.Context, turn Turn) *schema.StreamReader[Event] {
	return emit(func(send func(Event) bool) {
		if turn.Audio != nil && !turn.Greeting {
			send(Event{Kind: EventDelta, Text: r.voiceNoteReply})
			return
		}

		query := turn.Text
		if turn.Greeting {
			query = GreetingPrompt(turn.Text)
		}
		streamReply(ctx, r.ai, r.logger, turn, query, send)
	})
}

// streamReply forwards model chunks as deltas and returns the full reply. On
// any failure it sends one fallback event and returns ok=false.
func streamReply(ctx context.Context, ai TextReplier, logger *slog.Logger, turn Turn, query string, send func(Event) bool) (string, bool) {
	sr, err := ai.Reply(ctx, turn.Token, query)
	if err != nil {
		logger.Warn("reply failed", "session", turn.SessionID, "error", err)
		send(fallback())
		return "", false
	}
	defer sr.Close()

	var reply strings.Builder
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("reply stream interrupted", "session", turn.SessionID, "error", err)
			send(fallback())
			return "", false
		}
		if chunk == "" {
			continue
		}
		reply.WriteString(chunk)
		if !send(Event{Kind: EventDelta, Text: chunk}) {
			return "", false
		}
	}

	if strings.TrimSpace(reply.String()) == "" {
		logger.Warn("empty reply", "session", turn.SessionID)
		send(fallback())
		return "", false
	}
	return reply.String(), true
}
