package speech

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/samber/oops"
	openai "github.com/sashabaranov/go-openai"

	"github.com/zhouzirui/sakhi/backend/internal/model/speech"
)

// OpenAIService implements Provider with the OpenAI audio endpoints.
type OpenAIService struct {
	client *openai.Client
	config *speech.SpeechConfig
}

// NewOpenAIService requires an API key.
func NewOpenAIService(cfg *speech.SpeechConfig) (*OpenAIService, error) {
	key := strings.TrimSpace(cfg.OpenAIAPIKey)
	if key == "" {
		key = strings.TrimSpace(cfg.APIKey)
	}
	if key == "" {
		return nil, oops.In("speech").Errorf("openai speech provider requires an API key")
	}

	clientCfg := openai.DefaultConfig(key)
	switch {
	case cfg.OpenAIBaseURL != "":
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	case cfg.BaseURL != "":
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIService{client: openai.NewClientWithConfig(clientCfg), config: cfg}, nil
}

// TranscribeBuffer 语音转文字
func (s *OpenAIService) TranscribeBuffer(ctx context.Context, sessionID string, audio []byte, format, language string) (*speech.ASRResponse, error) {
	if len(audio) == 0 {
		return nil, oops.In("speech").Errorf("no audio data to send")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if format == "" {
		format = "webm"
	}
	if language == "" {
		language = s.config.ASRLanguage
	}

	model := s.config.ASRModel
	if model == "" {
		model = openai.Whisper1
	}

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    model,
		FilePath: "recording." + format,
		Reader:   bytes.NewReader(audio),
		Language: isoLanguage(language),
	})
	if err != nil {
		return nil, oops.In("speech").With("session", sessionID).Wrapf(err, "transcription failed")
	}

	confidence := 0.0
	if strings.TrimSpace(resp.Text) != "" {
		confidence = 0.95
	}

	return &speech.ASRResponse{
		SessionID:  sessionID,
		Text:       resp.Text,
		Confidence: confidence,
		Duration:   int64(resp.Duration * 1000),
		RequestID:  sessionID,
		CreatedAt:  time.Now(),
	}, nil
}

// SynthesizeToBuffer 文字转语音
func (s *OpenAIService) SynthesizeToBuffer(ctx context.Context, sessionID, text, voice, _ string) (*speech.TTSResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, oops.In("speech").Errorf("TTS text is empty")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openAIVoice(voice, s.config.TTSVoice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}
	if s.config.TTSSpeed > 0 {
		req.Speed = float64(s.config.TTSSpeed)
	}

	raw, err := s.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, oops.In("speech").With("session", sessionID).Wrapf(err, "speech synthesis failed")
	}
	defer raw.Close()

	data, err := io.ReadAll(raw)
	if err != nil {
		return nil, oops.In("speech").Wrapf(err, "failed to read synthesized audio")
	}
	if len(data) == 0 {
		return nil, oops.In("speech").Errorf("TTS audio is empty")
	}

	return &speech.TTSResponse{
		SessionID: sessionID,
		AudioData: data,
		Format:    "mp3",
		RequestID: sessionID,
		CreatedAt: time.Now(),
	}, nil
}

func (s *OpenAIService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(s.config.Timeout)*time.Second)
}

var openAIVoices = map[string]openai.SpeechVoice{
	"alloy":   openai.VoiceAlloy,
	"echo":    openai.VoiceEcho,
	"fable":   openai.VoiceFable,
	"onyx":    openai.VoiceOnyx,
	"nova":    openai.VoiceNova,
	"shimmer": openai.VoiceShimmer,
	// 人设音色别名
	"sakhi": openai.VoiceNova,
}

func openAIVoice(requested, fallback string) openai.SpeechVoice {
	for _, candidate := range []string{requested, fallback} {
		if v, ok := openAIVoices[strings.ToLower(strings.TrimSpace(candidate))]; ok {
			return v
		}
	}
	return openai.VoiceNova
}

// isoLanguage 将 "en-US" 之类的标签截成 whisper 需要的 ISO-639-1。
func isoLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
