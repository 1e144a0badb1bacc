package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	AI        AIConfig
	Speech    SpeechConfig
	Companion CompanionConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	companion, err := loadCompanionConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: server,
		Log: LogConfig{
			Level: strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
			File:  strings.TrimSpace(os.Getenv("LOG_FILE")),
		},
		AI:        ai,
		Speech:    speech,
		Companion: companion,
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return cfg, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr            string `validate:"required"`
	AllowedOrigins  []string
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	shutdown, err := parseDurationSecondsEnv("SHUTDOWN_TIMEOUT", 10)
	if err != nil {
		return ServerConfig{}, err
	}

	var origins []string
	for _, o := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	addr := ":" + port
	switch {
	case strings.Contains(port, ":"):
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		addr = port
	case strings.Contains(port, " "):
		return ServerConfig{}, oops.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: addr, AllowedOrigins: origins, ShutdownTimeout: shutdown}, nil
}

// LogConfig controls the slog handlers.
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	// File receives warnings and errors as JSON lines when set.
	File string
}

const (
	ProviderArk        = "ark"
	ProviderOpenAI     = "openai"
	ProviderVolcengine = "volcengine"
)

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider string `validate:"oneof=ark openai"`

	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	Temperature    *float64
	TopP           *float64
	MaxTokens      *int
	StreamResponse bool
	HistoryLimit   int `validate:"gte=1"`
	Timeout        time.Duration
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != "" && c.OpenAIModel != ""
	default:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	}
}

// NewChatModel 使用配置创建一个 Ark 模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.Provider != ProviderArk || !c.Enabled() {
		return nil, oops.Errorf("ark credentials or model missing: provide ARK_API_KEY + Model or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	stream, err := parseBoolEnv("ARK_STREAM", true)
	if err != nil {
		return AIConfig{}, err
	}

	historyLimit := 10
	if override, err := parseOptionalIntEnv("AI_HISTORY_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		historyLimit = max(*override, 1)
	}

	timeout, err := parseDurationSecondsEnv("AI_TIMEOUT", 60)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		Provider:       strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderArk)),
		APIKey:         strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:      strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:      strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:          strings.TrimSpace(os.Getenv("Model")),
		BaseURL:        getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:         getEnvOrDefault("ARK_REGION", "cn-beijing"),
		OpenAIAPIKey:   strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:  getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:    getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		Temperature:    temperature,
		TopP:           topP,
		MaxTokens:      maxTokens,
		StreamResponse: stream,
		HistoryLimit:   historyLimit,
		Timeout:        timeout,
	}, nil
}

// SpeechConfig 描述语音服务相关配置
type SpeechConfig struct {
	Provider    string `validate:"oneof=volcengine openai"`
	AppID       string
	AccessToken string
	APIKey      string
	AccessKey   string
	SecretKey   string
	Region      string
	BaseURL     string
	ASRModel    string
	ASRLanguage string
	TTSVoice    string
	TTSSpeed    float32
	TTSVolume   float32
	TTSLanguage string
	Timeout     int `validate:"gte=1"`
	Enabled     bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	// 解析超时设置
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	speed, err := parseOptionalFloat32Env("SPEECH_TTS_SPEED")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsSpeed := float32(1.0)
	if speed != nil {
		ttsSpeed = *speed
	}

	volume, err := parseOptionalFloat32Env("SPEECH_TTS_VOLUME")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsVolume := float32(1.0)
	if volume != nil {
		ttsVolume = *volume
	}

	provider := strings.ToLower(getEnvOrDefault("SPEECH_PROVIDER", ProviderVolcengine))

	if provider == ProviderOpenAI {
		apiKey := strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
		if apiKey == "" {
			apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		}
		return SpeechConfig{
			Provider:    provider,
			APIKey:      apiKey,
			AccessToken: apiKey,
			BaseURL:     getEnvOrDefault("SPEECH_BASE_URL", getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")),
			ASRModel:    getEnvOrDefault("SPEECH_ASR_MODEL", "whisper-1"),
			ASRLanguage: getEnvOrDefault("SPEECH_ASR_LANGUAGE", "en"),
			TTSVoice:    getEnvOrDefault("SPEECH_TTS_VOICE", "nova"),
			TTSSpeed:    ttsSpeed,
			TTSVolume:   ttsVolume,
			TTSLanguage: getEnvOrDefault("SPEECH_TTS_LANGUAGE", "en"),
			Timeout:     timeoutSeconds,
			Enabled:     apiKey != "",
		}, nil
	}

	appID := strings.TrimSpace(os.Getenv("SPEECH_APP_ID"))

	accessToken := strings.TrimSpace(os.Getenv("SPEECH_ACCESS_TOKEN"))
	apiKey := strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	if accessToken == "" {
		accessToken = apiKey
	}

	accessKey := strings.TrimSpace(os.Getenv("SPEECH_ACCESS_KEY"))
	secretKey := strings.TrimSpace(os.Getenv("SPEECH_SECRET_KEY"))

	// 如果没有专门的语音配置，尝试使用AI配置
	if accessToken == "" && accessKey == "" {
		accessToken = strings.TrimSpace(os.Getenv("ARK_API_KEY"))
		apiKey = accessToken
		accessKey = strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY"))
		secretKey = strings.TrimSpace(os.Getenv("ARK_SECRET_KEY"))
	}

	return SpeechConfig{
		Provider:    provider,
		AppID:       appID,
		AccessToken: accessToken,
		APIKey:      apiKey,
		AccessKey:   accessKey,
		SecretKey:   secretKey,
		Region:      getEnvOrDefault("SPEECH_REGION", "cn-beijing"),
		BaseURL:     getEnvOrDefault("SPEECH_BASE_URL", ""),
		ASRModel:    getEnvOrDefault("SPEECH_ASR_MODEL", ""),
		ASRLanguage: getEnvOrDefault("SPEECH_ASR_LANGUAGE", "en-US"),
		TTSVoice:    getEnvOrDefault("SPEECH_TTS_VOICE", ""),
		TTSSpeed:    ttsSpeed,
		TTSVolume:   ttsVolume,
		TTSLanguage: getEnvOrDefault("SPEECH_TTS_LANGUAGE", "en-US"),
		Timeout:     timeoutSeconds,
		Enabled:     appID != "" && accessToken != "",
	}, nil
}

const (
	ModeLocal            = "local"
	ModeRemoteText       = "remote-text"
	ModeRemoteTextSpeech = "remote-text-speech"
)

// CompanionConfig selects the turn-generation strategy and its pacing.
type CompanionConfig struct {
	Mode              string `validate:"oneof=local remote-text remote-text-speech"`
	PersonaID         string `validate:"required"`
	RulesFile         string
	GreetingDelay     time.Duration `validate:"gte=0"`
	ReplyDelay        time.Duration `validate:"gte=0"`
	CaptureEnabled    bool
	MaxRecordingBytes int `validate:"gte=1"`
}

func loadCompanionConfig() (CompanionConfig, error) {
	greeting, err := parseDurationMillisEnv("COMPANION_GREETING_DELAY_MS", 1000)
	if err != nil {
		return CompanionConfig{}, err
	}

	reply, err := parseDurationMillisEnv("COMPANION_REPLY_DELAY_MS", 1200)
	if err != nil {
		return CompanionConfig{}, err
	}

	capture, err := parseBoolEnv("AUDIO_CAPTURE_ENABLED", true)
	if err != nil {
		return CompanionConfig{}, err
	}

	maxBytes := 10 << 20
	if override, err := parseOptionalIntEnv("AUDIO_MAX_RECORDING_BYTES"); err != nil {
		return CompanionConfig{}, err
	} else if override != nil {
		maxBytes = *override
	}

	return CompanionConfig{
		Mode:              strings.ToLower(getEnvOrDefault("COMPANION_MODE", ModeLocal)),
		PersonaID:         getEnvOrDefault("COMPANION_PERSONA", "sakhi"),
		RulesFile:         strings.TrimSpace(os.Getenv("COMPANION_RULES_FILE")),
		GreetingDelay:     greeting,
		ReplyDelay:        reply,
		CaptureEnabled:    capture,
		MaxRecordingBytes: maxBytes,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, oops.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, oops.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, oops.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, oops.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}

func parseDurationMillisEnv(key string, defaultMillis int) (time.Duration, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return time.Duration(defaultMillis) * time.Millisecond, nil
	}
	return time.Duration(*val) * time.Millisecond, nil
}

func parseDurationSecondsEnv(key string, defaultSeconds int) (time.Duration, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return time.Duration(defaultSeconds) * time.Second, nil
	}
	return time.Duration(*val) * time.Second, nil
}
