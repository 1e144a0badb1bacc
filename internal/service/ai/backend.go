package ai

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Prompt is one generation request: persona instruction, prior turns and the
// new user query.
type Prompt struct {
	System  string
	History []*schema.Message
	Query   string
}

// Backend abstracts the remote chat model.
type Backend interface {
	Name() string
	Generate(ctx context.Context, p Prompt) (string, error)
	Stream(ctx context.Context, p Prompt) (*schema.StreamReader[string], error)
}

func (p Prompt) chainInput() map[string]any {
	return map[string]any{
		"system":  p.System,
		"history": p.History,
		"query":   p.Query,
	}
}
