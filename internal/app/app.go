// Package app wires configuration, services and HTTP handlers together.
package app

import (
	"context"
	"net/http"

	"github.com/samber/do"
	"github.com/samber/oops"

	"github.com/zhouzirui/sakhi/backend/internal/analysis/rules"
	"github.com/zhouzirui/sakhi/backend/internal/config"
	"github.com/zhouzirui/sakhi/backend/internal/handler"
	speechHandler "github.com/zhouzirui/sakhi/backend/internal/handler/speech"
	"github.com/zhouzirui/sakhi/backend/internal/logging"
	"github.com/zhouzirui/sakhi/backend/internal/model/persona"
	speechModel "github.com/zhouzirui/sakhi/backend/internal/model/speech"
	"github.com/zhouzirui/sakhi/backend/internal/service/ai"
	"github.com/zhouzirui/sakhi/backend/internal/service/audio"
	"github.com/zhouzirui/sakhi/backend/internal/service/catalog"
	"github.com/zhouzirui/sakhi/backend/internal/service/chat"
	"github.com/zhouzirui/sakhi/backend/internal/service/companion"
	speechsvc "github.com/zhouzirui/sakhi/backend/internal/service/speech"
)

// App holds the dependency container and the assembled router.
type App struct {
	injector *do.Injector
	Router   http.Handler
}

// New builds every service from cfg. Optional providers that fail to
// initialise are logged and left out; the chat service then reports the
// failure when a session is started.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.Provide(injector, newMatcher)
	do.Provide(injector, newPersonaStore)
	do.Provide(injector, func(i *do.Injector) (*ai.Service, error) {
		return newAIService(ctx, i)
	})
	do.Provide(injector, newSpeechProvider)
	do.Provide(injector, func(i *do.Injector) (*chat.Service, error) {
		return newChatService(ctx, i)
	})
	do.Provide(injector, func(*do.Injector) (*catalog.Service, error) {
		return catalog.NewService(), nil
	})
	do.Provide(injector, func(i *do.Injector) (*speechHandler.WebSocketHandler, error) {
		return speechHandler.NewWebSocketHandler(do.MustInvoke[*chat.Service](i)), nil
	})
	do.Provide(injector, newRouter)

	router, err := do.Invoke[http.Handler](injector)
	if err != nil {
		_ = injector.Shutdown()
		return nil, oops.In("app").Wrapf(err, "failed to assemble services")
	}

	return &App{injector: injector, Router: router}, nil
}

// Chat returns the conversation service.
func (a *App) Chat() *chat.Service {
	return do.MustInvoke[*chat.Service](a.injector)
}

// Shutdown closes websocket connections and live sessions.
func (a *App) Shutdown() error {
	return a.injector.Shutdown()
}

func newMatcher(i *do.Injector) (*rules.Matcher, error) {
	cfg := do.MustInvoke[*config.Config](i)

	table := rules.DefaultTable()
	if path := cfg.Companion.RulesFile; path != "" {
		loaded, err := rules.LoadTable(path)
		if err != nil {
			return nil, err
		}
		table = loaded
		logging.Component("app").Info("rule table loaded", "path", path, "rules", len(table.Rules))
	}
	return rules.NewMatcher(table), nil
}

func newPersonaStore(*do.Injector) (*persona.MemoryStore, error) {
	return persona.NewMemoryStore(persona.Seed()), nil
}

// newAIService returns nil when no model is configured.
func newAIService(ctx context.Context, i *do.Injector) (*ai.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	logger := logging.Component("app")

	if !cfg.AI.Enabled() {
		logger.Info("AI 凭证未配置，跳过远程模型初始化")
		return nil, nil
	}

	svc, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		logger.Warn("failed to initialize AI service", "error", err)
		return nil, nil
	}
	logger.Info("AI service initialized", "provider", cfg.AI.Provider)
	return svc, nil
}

// newSpeechProvider returns nil when speech credentials are missing.
func newSpeechProvider(i *do.Injector) (speechsvc.Provider, error) {
	cfg := do.MustInvoke[*config.Config](i)
	logger := logging.Component("app")

	if !cfg.Speech.Enabled {
		logger.Info("语音服务凭证未配置，跳过语音功能初始化")
		return nil, nil
	}

	provider, err := speechsvc.NewProvider(SpeechConfig(cfg.Speech))
	if err != nil {
		logger.Warn("failed to initialize speech provider", "error", err)
		return nil, nil
	}
	logger.Info("speech provider initialized", "provider", cfg.Speech.Provider)
	return provider, nil
}

func newChatService(ctx context.Context, i *do.Injector) (*chat.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	matcher := do.MustInvoke[*rules.Matcher](i)
	personas := do.MustInvoke[*persona.MemoryStore](i)
	aiSvc := do.MustInvoke[*ai.Service](i)
	speech := do.MustInvoke[speechsvc.Provider](i)

	p, ok := personas.Resolve(cfg.Companion.PersonaID)
	if !ok {
		return nil, oops.In("app").Errorf("no persona available")
	}

	deps := companion.Deps{
		Config:   cfg.Companion,
		Matcher:  matcher,
		Persona:  p,
		Speech:   speech,
		Language: cfg.Speech.ASRLanguage,
	}
	if aiSvc != nil {
		deps.AI = aiSvc
	}

	opts := []chat.Option{
		chat.WithBaseContext(context.WithoutCancel(ctx)),
		chat.WithClipStore(audio.NewClipStore()),
		chat.WithRecorderConfig(audio.RecorderConfig{
			Enabled:  cfg.Companion.CaptureEnabled,
			MaxBytes: cfg.Companion.MaxRecordingBytes,
		}),
	}

	gen, err := companion.New(deps)
	if err != nil {
		logging.Component("app").Warn("companion unavailable", "mode", cfg.Companion.Mode, "error", err)
		return chat.NewService(nil, append(opts, chat.WithInitError(err))...), nil
	}

	logging.Component("app").Info("companion ready", "mode", gen.Mode(), "persona", p.ID)
	return chat.NewService(gen, opts...), nil
}

func newRouter(i *do.Injector) (http.Handler, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return handler.NewRouter(handler.Dependencies{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Personas:       do.MustInvoke[*persona.MemoryStore](i),
		Chat:           do.MustInvoke[*chat.Service](i),
		Catalog:        do.MustInvoke[*catalog.Service](i),
		WebSocket:      do.MustInvoke[*speechHandler.WebSocketHandler](i),
		Speech:         do.MustInvoke[speechsvc.Provider](i),
		SpeechLanguage: cfg.Speech.ASRLanguage,
	}), nil
}

// SpeechConfig converts the environment settings into the provider config.
func SpeechConfig(cfg config.SpeechConfig) *speechModel.SpeechConfig {
	out := &speechModel.SpeechConfig{
		Provider:    cfg.Provider,
		AppID:       cfg.AppID,
		AccessToken: cfg.AccessToken,
		APIKey:      cfg.APIKey,
		AccessKey:   cfg.AccessKey,
		SecretKey:   cfg.SecretKey,
		Region:      cfg.Region,
		BaseURL:     cfg.BaseURL,
		ASRModel:    cfg.ASRModel,
		ASRLanguage: cfg.ASRLanguage,
		TTSVoice:    cfg.TTSVoice,
		TTSSpeed:    cfg.TTSSpeed,
		TTSVolume:   cfg.TTSVolume,
		TTSLanguage: cfg.TTSLanguage,
		Timeout:     cfg.Timeout,
	}
	if cfg.Provider == config.ProviderOpenAI {
		out.OpenAIAPIKey = cfg.APIKey
		out.OpenAIBaseURL = cfg.BaseURL
	}
	return out
}
