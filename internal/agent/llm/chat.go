// Package llm adapts Eino chat models to the single call shape the pipeline
// stages need: messages in, text and cost out.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/skillsage/server/internal/agent/model"
	errx "github.com/skillsage/server/internal/core/error"
	logx "github.com/skillsage/server/pkg/logger"
)

// ErrEmptyReply is returned when the model answers with no text.
var ErrEmptyReply = errors.New("model returned empty reply")

// Completion is one model reply.
type Completion struct {
	Text    string
	CostUSD float64
}

// Generator is the single call shape shared by every LLM stage.
type Generator interface {
	Generate(ctx context.Context, msgs []*schema.Message, opts ...einomodel.Option) (Completion, error)
}

// Chat binds a chat model to the name used for pricing and logs.
type Chat struct {
	Model einomodel.BaseChatModel
	Name  string
}

// New returns a Chat for m.
func New(m einomodel.BaseChatModel, name string) *Chat {
	return &Chat{Model: m, Name: name}
}

// Generate sends msgs and returns the trimmed reply text.
// Transport failures are wrapped as LLM errors; an empty reply is an error.
func (c *Chat) Generate(ctx context.Context, msgs []*schema.Message, opts ...einomodel.Option) (Completion, error) {
	if c == nil || c.Model == nil {
		return Completion{}, errx.WrapLLM(fmt.Errorf("chat model not configured"))
	}
	out, err := c.Model.Generate(ctx, msgs, opts...)
	if err != nil {
		return Completion{}, errx.WrapLLM(err)
	}
	if out == nil {
		return Completion{}, errx.WrapLLM(ErrEmptyReply)
	}

	cost := model.MessageCost(out, c.Name)
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		u := out.ResponseMeta.Usage
		logx.Debug().
			Str("model", c.Name).
			Int("prompt_tokens", u.PromptTokens).
			Int("completion_tokens", u.CompletionTokens).
			Int("total_tokens", u.TotalTokens).
			Float64("total_cost_usd", cost).
			Msg("LLM usage")
	}

	text := strings.TrimSpace(out.Content)
	if text == "" {
		return Completion{CostUSD: cost}, errx.WrapLLM(ErrEmptyReply)
	}
	return Completion{Text: text, CostUSD: cost}, nil
}

var _ Generator = (*Chat)(nil)
