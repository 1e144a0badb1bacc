package speech

import (
	"context"
	"time"

	"github.com/samber/oops"

	"github.com/zhouzirui/sakhi/backend/internal/model/speech"
)

// Provider is the remote transcription/synthesis capability used by the
// companion strategies and the speech handlers.
type Provider interface {
	TranscribeBuffer(ctx context.Context, sessionID string, audio []byte, format, language string) (*speech.ASRResponse, error)
	SynthesizeToBuffer(ctx context.Context, sessionID, text, voice, language string) (*speech.TTSResponse, error)
}

// NewProvider 根据配置选择语音服务实现。
func NewProvider(cfg *speech.SpeechConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIService(cfg)
	case "", "volcengine":
		if _, _, err := resolveCredentials(cfg); err != nil {
			return nil, err
		}
		return NewService(cfg), nil
	default:
		return nil, oops.In("speech").Errorf("unknown speech provider %q", cfg.Provider)
	}
}

// Service 火山引擎语音服务
type Service struct {
	config    *speech.SpeechConfig
	ttsClient *VolcengineTTSClient
	asrClient *VolcengineASRClient
}

// NewService 创建语音服务实例
func NewService(config *speech.SpeechConfig) *Service {
	return &Service{
		config:    config,
		ttsClient: NewVolcengineTTSClient(config),
		asrClient: NewVolcengineASRClient(config),
	}
}

// TranscribeBuffer 语音转文字
func (s *Service) TranscribeBuffer(ctx context.Context, sessionID string, audio []byte, format, language string) (*speech.ASRResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.asrClient.Transcribe(ctx, &speech.ASRRequest{
		SessionID: sessionID,
		AudioData: audio,
		Format:    format,
		Language:  language,
	})
}

// SynthesizeToBuffer 文字转语音
func (s *Service) SynthesizeToBuffer(ctx context.Context, sessionID, text, voice, language string) (*speech.TTSResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.ttsClient.Synthesize(ctx, &speech.TTSRequest{
		SessionID: sessionID,
		Text:      text,
		Voice:     voice,
		Language:  language,
	})
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(s.config.Timeout)*time.Second)
}
