// Package intent classifies a student query into a structured Intent.
package intent

import (
	"context"

	"github.com/skillsage/server/internal/agent/graph/parsers"
	"github.com/skillsage/server/internal/agent/graph/prompts"
	"github.com/skillsage/server/internal/agent/llm"
	"github.com/skillsage/server/internal/agent/model"
	"github.com/skillsage/server/internal/core/degrade"
	"github.com/skillsage/server/internal/metrics"
)

const opClassify = "intent"

// Classification is the classifier result. Outcome is degraded whenever the
// default intent had to stand in for the model's answer.
type Classification struct {
	Intent  model.Intent
	CostUSD float64
	Outcome degrade.Outcome
}

type Classifier struct {
	chat    llm.Generator
	metrics *metrics.Metrics
}

func New(chat llm.Generator, m *metrics.Metrics) *Classifier {
	return &Classifier{chat: chat, metrics: m}
}

// Classify never fails. Any model, render or parse failure yields
// model.DefaultIntent.
func (c *Classifier) Classify(ctx context.Context, query, level, history string) Classification {
	var cost float64
	in, out := degrade.Do(ctx, opClassify, model.DefaultIntent(), func(ctx context.Context) (model.Intent, error) {
		msgs, err := prompts.Render(ctx, prompts.StageIntent, map[string]any{
			"Query":   query,
			"Level":   level,
			"History": history,
		})
		if err != nil {
			return model.Intent{}, err
		}
		reply, err := c.chat.Generate(ctx, msgs)
		cost += reply.CostUSD
		if err != nil {
			return model.Intent{}, err
		}
		return parsers.ParseIntent(reply.Text)
	})
	if out.Degraded() {
		c.metrics.Degraded(opClassify)
	}
	return Classification{Intent: in, CostUSD: cost, Outcome: out}
}
