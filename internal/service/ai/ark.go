package ai

import (
	"context"
	"errors"
	"io"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/samber/oops"

	"github.com/zhouzirui/sakhi/backend/internal/config"
)

// arkBackend runs prompt template -> Ark chat model as an eino chain.
type arkBackend struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

func newArkBackend(ctx context.Context, cfg config.AIConfig) (*arkBackend, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, oops.In("ai").Wrapf(err, "failed to create chat model")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, oops.In("ai").Wrapf(err, "failed to compile chat chain")
	}

	return &arkBackend{chain: runnable}, nil
}

func (b *arkBackend) Name() string { return config.ProviderArk }

func (b *arkBackend) Generate(ctx context.Context, p Prompt) (string, error) {
	msg, err := b.chain.Invoke(ctx, p.chainInput())
	if err != nil {
		return "", oops.In("ai").Wrapf(err, "failed to run chat chain")
	}
	return msg.Content, nil
}

func (b *arkBackend) Stream(ctx context.Context, p Prompt) (*schema.StreamReader[string], error) {
	src, err := b.chain.Stream(ctx, p.chainInput())
	if err != nil {
		return nil, oops.In("ai").Wrapf(err, "failed to stream chat chain output")
	}

	sr, sw := schema.Pipe[string](8)
	go func() {
		defer src.Close()
		defer sw.Close()

		for {
			chunk, err := src.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				sw.Send("", err)
				return
			}
			if chunk == nil || chunk.Content == "" {
				continue
			}
			if closed := sw.Send(chunk.Content, nil); closed {
				return
			}
		}
	}()

	return sr, nil
}
