package companion

import (
	"github.com/zhouzirui/sakhi/backend/internal/analysis/rules"
	"github.com/zhouzirui/sakhi/backend/internal/config"
	"github.com/zhouzirui/sakhi/backend/internal/model/persona"
	speechsvc "github.com/zhouzirui/sakhi/backend/internal/service/speech"
)

// Deps are the collaborators a strategy may need. AI and Speech are nil when
// their providers are not configured.
type Deps struct {
	Config   config.CompanionConfig
	Matcher  *rules.Matcher
	Persona  persona.Persona
	AI       TextReplier
	Speech   speechsvc.Provider
	Language string
}

// New builds the strategy named by Config.Mode.
func New(deps Deps) (Generator, error) {
	switch Mode(deps.Config.Mode) {
	case ModeRemoteText:
		if deps.AI == nil {
			return nil, ErrNotConfigured
		}
		return NewRemoteText(deps.AI, deps.Persona, deps.Matcher.VoiceNoteReply()), nil

	case ModeRemoteTextSpeech:
		if deps.AI == nil || deps.Speech == nil {
			return nil, ErrNotConfigured
		}
		return NewRemoteSpeech(deps.AI, deps.Speech, deps.Persona, deps.Matcher.VoiceNoteReply(), deps.Language), nil

	default:
		return NewLocal(deps.Matcher, deps.Config.GreetingDelay, deps.Config.ReplyDelay), nil
	}
}
