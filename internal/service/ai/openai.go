package ai

import (
	"context"
	"errors"
	"io"

	"github.com/cloudwego/eino/schema"
	"github.com/samber/oops"
	openai "github.com/sashabaranov/go-openai"

	"github.com/zhouzirui/sakhi/backend/internal/config"
)

// openaiBackend talks to any OpenAI-compatible chat completions endpoint.
type openaiBackend struct {
	client *openai.Client
	cfg    config.AIConfig
}

func newOpenAIBackend(cfg config.AIConfig) (*openaiBackend, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, oops.In("ai").Errorf("OPENAI_API_KEY is required for the openai provider")
	}

	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &openaiBackend{client: openai.NewClientWithConfig(clientCfg), cfg: cfg}, nil
}

func (b *openaiBackend) Name() string { return config.ProviderOpenAI }

func (b *openaiBackend) Generate(ctx context.Context, p Prompt) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, b.request(p, false))
	if err != nil {
		return "", oops.In("ai").With("model", b.cfg.OpenAIModel).Wrapf(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", oops.In("ai").Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (b *openaiBackend) Stream(ctx context.Context, p Prompt) (*schema.StreamReader[string], error) {
	stream, err := b.client.CreateChatCompletionStream(ctx, b.request(p, true))
	if err != nil {
		return nil, oops.In("ai").With("model", b.cfg.OpenAIModel).Wrapf(err, "chat completion stream failed")
	}

	sr, sw := schema.Pipe[string](8)
	go func() {
		defer stream.Close()
		defer sw.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				sw.Send("", err)
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			if closed := sw.Send(resp.Choices[0].Delta.Content, nil); closed {
				return
			}
		}
	}()

	return sr, nil
}

func (b *openaiBackend) request(p Prompt, stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(p.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	for _, msg := range p.History {
		role := openai.ChatMessageRoleUser
		if msg.Role == schema.Assistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.Query})

	req := openai.ChatCompletionRequest{
		Model:    b.cfg.OpenAIModel,
		Messages: messages,
		Stream:   stream,
	}
	if b.cfg.Temperature != nil {
		req.Temperature = float32(*b.cfg.Temperature)
	}
	if b.cfg.TopP != nil {
		req.TopP = float32(*b.cfg.TopP)
	}
	if b.cfg.MaxTokens != nil {
		req.MaxTokens = *b.cfg.MaxTokens
	}
	return req
}
