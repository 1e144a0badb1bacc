package companion

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/sakhi/backend/internal/logging"
	"github.com/zhouzirui/sakhi/backend/internal/model/persona"
	"github.com/zhouzirui/sakhi/backend/internal/service/audio"
	speechsvc "github.com/zhouzirui/sakhi/backend/internal/service/speech"
)

// SynthesizedMimeType is the container of synthesized replies.
const SynthesizedMimeType = "audio/mpeg"

// RemoteSpeech is RemoteText plus transcription of user audio and synthesis
// of every finished reply.
type RemoteSpeech struct {
	text     *RemoteText
	speech   speechsvc.Provider
	voice    string
	language string
	logger   *slog.Logger
}

func NewRemoteSpeech(ai TextReplier, provider speechsvc.Provider, p persona.Persona, voiceNoteReply, language string) *RemoteSpeech {
	return &RemoteSpeech{
		text:     NewRemoteText(ai, p, voiceNoteReply),
		speech:   provider,
		voice:    p.VoiceID,
		language: language,
		logger:   logging.Component("companion").With("mode", string(ModeRemoteTextSpeech)),
	}
}

func (r *RemoteSpeech) Mode() Mode { return ModeRemoteTextSpeech }

func (r *RemoteSpeech) Open(ctx context.Context, sessionID, topic string) (string, error) {
	return r.text.Open(ctx, sessionID, topic)
}

func (r *RemoteSpeech) Close(token string) { r.text.Close(token) }

func (r *RemoteSpeech) Generate(ctx context.Context, turn Turn) *schema.StreamReader[Event] {
	return emit(func(send func(Event) bool) {
		query := turn.Text
		switch {
		case turn.Greeting:
			query = GreetingPrompt(turn.Text)
		case turn.Audio != nil:
			transcript, ok := r.transcribe(ctx, turn)
			if !ok {
				send(fallback())
				return
			}
			if !send(Event{Kind: EventTranscript, Text: transcript}) {
				return
			}
			query = transcript
		}

		reply, ok := streamReply(ctx, r.text.ai, r.logger, turn, query, send)
		if !ok {
			return
		}

		// 合成失败不影响已生成的文字回复
		resp, err := r.speech.SynthesizeToBuffer(ctx, turn.SessionID, reply, r.voice, r.language)
		if err != nil {
			r.logger.Warn("synthesis failed, keeping text reply", "session", turn.SessionID, "error", err)
			return
		}

		duration := float64(resp.Duration) / 1000
		if duration <= 0 {
			duration = audio.DurationFromSize(len(resp.AudioData))
		}
		send(Event{Kind: EventAudio, Clip: &audio.Clip{
			Data:            resp.AudioData,
			MimeType:        SynthesizedMimeType,
			DurationSeconds: duration,
		}})
	})
}

func (r *RemoteSpeech) transcribe(ctx context.Context, turn Turn) (string, bool) {
	format := FormatFromMime(turn.Audio.Format)
	resp, err := r.speech.TranscribeBuffer(ctx, turn.SessionID, turn.Audio.Data, format, r.language)
	if err != nil {
		r.logger.Warn("transcription failed", "session", turn.SessionID, "error", err)
		return "", false
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		r.logger.Info("empty transcript", "session", turn.SessionID)
		return "", false
	}
	return text, true
}

// FormatFromMime 把 "audio/webm;codecs=opus" 规范为 "webm"。
func FormatFromMime(mime string) string {
	mime = strings.TrimSpace(mime)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimPrefix(mime, "audio/")
	switch mime {
	case "mpeg":
		return "mp3"
	case "x-wav", "wave":
		return "wav"
	}
	return mime
}
