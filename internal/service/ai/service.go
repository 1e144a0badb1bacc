package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/zhouzirui/sakhi/backend/internal/config"
	"github.com/zhouzirui/sakhi/backend/internal/logging"
	"github.com/zhouzirui/sakhi/backend/internal/model/persona"
)

// ErrContextNotFound 表示上下文令牌未注册或已关闭。
var ErrContextNotFound = errors.New("conversation context not found")

// conversation is the remote-side state behind a context token.
type conversation struct {
	mu        sync.Mutex
	personaID string
	system    string
	history   []*schema.Message
}

// Service holds per-session model contexts. Callers only see an opaque
// token; the instruction and history stay here.
type Service struct {
	backend Backend
	cfg     config.AIConfig
	prompts *PersonaPromptManager
	logger  *slog.Logger

	mu       sync.RWMutex
	contexts map[string]*conversation
}

// NewService builds the backend selected by cfg.Provider.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	var (
		backend Backend
		err     error
	)

	switch cfg.Provider {
	case config.ProviderOpenAI:
		backend, err = newOpenAIBackend(cfg)
	default:
		backend, err = newArkBackend(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	return NewServiceWithBackend(backend, cfg), nil
}

// NewServiceWithBackend wires an explicit backend.
func NewServiceWithBackend(backend Backend, cfg config.AIConfig) *Service {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	return &Service{
		backend:  backend,
		cfg:      cfg,
		prompts:  NewPersonaPromptManager(),
		logger:   logging.Component("ai").With("provider", backend.Name()),
		contexts: make(map[string]*conversation),
	}
}

// StreamingEnabled 指示是否逐块返回模型输出。
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// OpenContext registers a context seeded with the persona instruction.
func (s *Service) OpenContext(p persona.Persona) string {
	token := uuid.NewString()
	conv := &conversation{
		personaID: p.ID,
		system:    s.prompts.BuildSystemPrompt(p),
	}

	s.mu.Lock()
	s.contexts[token] = conv
	s.mu.Unlock()

	s.logger.Debug("context opened", "persona", p.ID)
	return token
}

// CloseContext drops a context. Unknown tokens are ignored.
func (s *Service) CloseContext(token string) {
	s.mu.Lock()
	delete(s.contexts, token)
	s.mu.Unlock()
}

// History returns a copy of the turns recorded for token.
func (s *Service) History(token string) ([]*schema.Message, error) {
	conv, ok := s.lookup(token)
	if !ok {
		return nil, ErrContextNotFound
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	return append([]*schema.Message(nil), conv.history...), nil
}

// Reply sends query within the token's context and streams the reply text.
// The turn is recorded in the context only after the reply completes.
func (s *Service) Reply(ctx context.Context, token, query string) (*schema.StreamReader[string], error) {
	conv, ok := s.lookup(token)
	if !ok {
		return nil, ErrContextNotFound
	}

	p := Prompt{System: conv.system, History: s.recentHistory(conv), Query: query}

	cancel := context.CancelFunc(func() {})
	if s.cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
	}

	if !s.StreamingEnabled() {
		defer cancel()

		text, err := s.backend.Generate(ctx, p)
		if err != nil {
			return nil, oops.In("ai").With("persona", conv.personaID).Wrapf(err, "failed to generate reply")
		}
		s.commit(conv, query, text)
		return schema.StreamReaderFromArray([]string{text}), nil
	}

	src, err := s.backend.Stream(ctx, p)
	if err != nil {
		cancel()
		return nil, oops.In("ai").With("persona", conv.personaID).Wrapf(err, "failed to stream reply")
	}

	sr, sw := schema.Pipe[string](8)
	go func() {
		defer cancel()
		defer src.Close()
		defer sw.Close()

		var reply strings.Builder
		for {
			chunk, err := src.Recv()
			if errors.Is(err, io.EOF) {
				s.commit(conv, query, reply.String())
				return
			}
			if err != nil {
				s.logger.Warn("reply stream failed", "persona", conv.personaID, "error", err)
				sw.Send("", err)
				return
			}
			reply.WriteString(chunk)
			if closed := sw.Send(chunk, nil); closed {
				return
			}
		}
	}()

	return sr, nil
}

func (s *Service) lookup(token string) (*conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.contexts[token]
	return conv, ok
}

func (s *Service) recentHistory(conv *conversation) []*schema.Message {
	conv.mu.Lock()
	defer conv.mu.Unlock()

	start := 0
	if len(conv.history) > s.cfg.HistoryLimit {
		start = len(conv.history) - s.cfg.HistoryLimit
	}
	return append([]*schema.Message(nil), conv.history[start:]...)
}

func (s *Service) commit(conv *conversation, query, reply string) {
	if strings.TrimSpace(reply) == "" {
		return
	}

	conv.mu.Lock()
	conv.history = append(conv.history, schema.UserMessage(query), schema.AssistantMessage(reply, nil))
	conv.mu.Unlock()

	s.logger.Debug("reply completed", "persona", conv.personaID, "length", len(reply))
}
