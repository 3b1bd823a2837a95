// Package composer drives the reason, draft, refine and verify stages that
// turn retrieved candidates into the final answer text.
package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/looplab/fsm"

	"github.com/skillsage/server/internal/agent/graph/prompts"
	"github.com/skillsage/server/internal/agent/llm"
	"github.com/skillsage/server/internal/agent/model"
	"github.com/skillsage/server/internal/core/degrade"
	"github.com/skillsage/server/internal/metrics"
	logx "github.com/skillsage/server/pkg/logger"
)

const (
	StateReason = "reason"
	StateDraft  = "draft"
	StateRefine = "refine"
	StateVerify = "verify"
	StateDone   = "done"
)

const (
	EventDraft  = "draft"
	EventRefine = "refine"
	EventVerify = "verify"
	EventRetry  = "retry"
	EventFinish = "finish"
	EventAbort  = "abort"
)

const (
	DefaultThreshold     = 0.6
	DefaultRefinementCap = 2

	// DraftFailureText is returned when no draft could be produced.
	DraftFailureText       = "I apologize, but I couldn't put together an answer right now. Please try again in a moment."
	DraftFailureConfidence = 0.3

	ReasoningUnavailable = "Reasoning unavailable; answering from retrieved data directly."

	// VerifyFailureConfidence is used when the verifier call itself fails.
	VerifyFailureConfidence = 0.7

	verifyInputRunes = 500
	reasonSkills     = 5
	reasonOthers     = 3
)

type Composer struct {
	chat      llm.Generator
	score     ScoreParser
	threshold float64
	cap       int
	metrics   *metrics.Metrics
}

type Option func(*Composer)

func WithScoreParser(p ScoreParser) Option {
	return func(c *Composer) {
		if p != nil {
			c.score = p
		}
	}
}

// WithThreshold sets the confidence below which a pass is retried.
func WithThreshold(t float64) Option {
	return func(c *Composer) {
		if t > 0 && t <= 1 {
			c.threshold = t
		}
	}
}

// WithRefinementCap bounds the number of retries.
func WithRefinementCap(n int) Option {
	return func(c *Composer) {
		if n >= 0 {
			c.cap = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Composer) { c.metrics = m }
}

func New(chat llm.Generator, opts ...Option) *Composer {
	c := &Composer{
		chat:      chat,
		score:     BandedScore,
		threshold: DefaultThreshold,
		cap:       DefaultRefinementCap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newMachine() *fsm.FSM {
	return fsm.NewFSM(
		StateReason,
		fsm.Events{
			{Name: EventDraft, Src: []string{StateReason}, Dst: StateDraft},
			{Name: EventRefine, Src: []string{StateDraft}, Dst: StateRefine},
			{Name: EventVerify, Src: []string{StateRefine}, Dst: StateVerify},
			{Name: EventRetry, Src: []string{StateVerify}, Dst: StateReason},
			{Name: EventFinish, Src: []string{StateVerify}, Dst: StateDone},
			{Name: EventAbort, Src: []string{StateDraft}, Dst: StateDone},
		},
		fsm.Callbacks{
			"after_event": func(_ context.Context, e *fsm.Event) {
				logx.Debug().Str("event", e.Event).Str("from", e.Src).Str("to", e.Dst).Msg("composer transition")
			},
		},
	)
}

// Compose runs the stage machine over st and returns the terminal state.
// It always sets a non-empty FinalText and a Confidence in [0,1], and makes
// at most cap+1 passes.
func (c *Composer) Compose(ctx context.Context, st model.PipelineState) model.PipelineState {
	st.Confidence = 0
	st.RefinementCount = 0
	st.Passes = 0

	machine := newMachine()
	// transitions are bookkeeping; cancellation is handled by the stage calls
	fsmCtx := context.WithoutCancel(ctx)
	for machine.Current() != StateDone {
		stage := machine.Current()
		started := time.Now()

		var event string
		switch stage {
		case StateReason:
			st = c.reason(ctx, st)
			event = EventDraft
		case StateDraft:
			var ok bool
			if st, ok = c.draft(ctx, st); ok {
				event = EventRefine
			} else {
				event = EventAbort
			}
		case StateRefine:
			st = c.refine(ctx, st)
			event = EventVerify
		case StateVerify:
			st = c.verify(ctx, st)
			if st.Confidence < c.threshold && st.RefinementCount < c.cap {
				st.RefinementCount++
				st = st.Trace(fmt.Sprintf("Confidence %.2f below %.2f, retrying (%d/%d)",
					st.Confidence, c.threshold, st.RefinementCount, c.cap))
				event = EventRetry
			} else {
				event = EventFinish
			}
		}
		c.metrics.StageDuration("compose_"+stage, time.Since(started))

		if err := machine.Event(fsmCtx, event); err != nil {
			// unreachable with the static table above; stop rather than spin
			logx.Error().Err(err).Str("state", stage).Str("event", event).Msg("composer transition rejected")
			break
		}
	}
	return finalize(st)
}

func finalize(st model.PipelineState) model.PipelineState {
	switch {
	case strings.TrimSpace(st.FinalText) != "":
	case strings.TrimSpace(st.DraftText) != "":
		st.FinalText = st.DraftText
	default:
		st.FinalText = DraftFailureText
		if st.Confidence == 0 {
			st.Confidence = DraftFailureConfidence
		}
	}
	st.Confidence = min(max(st.Confidence, 0), 1)
	return st
}

func (c *Composer) reason(ctx context.Context, st model.PipelineState) model.PipelineState {
	st.Passes++
	r := st.Retrieved
	var cost float64
	text, out := degrade.Do(ctx, StateReason, ReasoningUnavailable, func(ctx context.Context) (string, error) {
		msgs, err := prompts.Render(ctx, prompts.StageReason, map[string]any{
			"Query":           st.Query,
			"Level":           st.Level,
			"Intent":          string(st.Intent.Kind),
			"Skills":          namesJSON(r.Skills, reasonSkills),
			"Resources":       namesJSON(r.Resources, reasonOthers),
			"Recommendations": namesJSON(r.Recommendations, reasonOthers),
			"Feedback":        st.RefinementCount > 0,
		})
		if err != nil {
			return "", err
		}
		reply, err := c.chat.Generate(ctx, msgs)
		cost += reply.CostUSD
		return reply.Text, err
	})
	st.CostUSD += cost
	st.Reasoning = text
	if out.Degraded() {
		c.metrics.Degraded(StateReason)
		return st.Trace(out.Note())
	}
	return st.Trace("Reasoning: " + truncateRunes(text, 100) + "...")
}

func (c *Composer) draft(ctx context.Context, st model.PipelineState) (model.PipelineState, bool) {
	r := st.Retrieved
	var cost float64
	text, out := degrade.Do(ctx, StateDraft, "", func(ctx context.Context) (string, error) {
		analysis, err := json.Marshal(st.Intent)
		if err != nil {
			return "", err
		}
		msgs, err := prompts.Render(ctx, prompts.StageDraft, map[string]any{
			"Query":           st.Query,
			"Level":           st.Level,
			"Analysis":        string(analysis),
			"Reasoning":       st.Reasoning,
			"Skills":          recordsJSON(r.Skills, reasonSkills),
			"Resources":       recordsJSON(r.Resources, reasonOthers),
			"Recommendations": recordsJSON(r.Recommendations, reasonOthers),
		})
		if err != nil {
			return "", err
		}
		reply, err := c.chat.Generate(ctx, msgs)
		cost += reply.CostUSD
		return reply.Text, err
	})
	st.CostUSD += cost
	if out.Degraded() {
		c.metrics.Degraded(StateDraft)
		st.DraftText = ""
		st.FinalText = DraftFailureText
		st.Confidence = DraftFailureConfidence
		return st.Trace(out.Note()), false
	}
	st.DraftText = text
	return st.Trace(fmt.Sprintf("Draft: %d chars", len(text))), true
}

func (c *Composer) refine(ctx context.Context, st model.PipelineState) model.PipelineState {
	var cost float64
	text, out := degrade.Do(ctx, StateRefine, st.DraftText, func(ctx context.Context) (string, error) {
		msgs, err := prompts.Render(ctx, prompts.StageRefine, map[string]any{
			"Query": st.Query,
			"Level": st.Level,
			"Draft": st.DraftText,
		})
		if err != nil {
			return "", err
		}
		reply, err := c.chat.Generate(ctx, msgs)
		cost += reply.CostUSD
		return reply.Text, err
	})
	st.CostUSD += cost
	st.FinalText = text
	if out.Degraded() {
		c.metrics.Degraded(StateRefine)
		return st.Trace(out.Note())
	}
	return st
}

func (c *Composer) verify(ctx context.Context, st model.PipelineState) model.PipelineState {
	var cost float64
	score, out := degrade.Do(ctx, StateVerify, VerifyFailureConfidence, func(ctx context.Context) (float64, error) {
		msgs, err := prompts.Render(ctx, prompts.StageVerify, map[string]any{
			"Query":    st.Query,
			"Response": truncateRunes(st.FinalText, verifyInputRunes),
		})
		if err != nil {
			return 0, err
		}
		reply, err := c.chat.Generate(ctx, msgs)
		cost += reply.CostUSD
		if err != nil {
			return 0, err
		}
		return c.score(reply.Text), nil
	})
	st.CostUSD += cost
	st.Confidence = min(max(score, 0), 1)
	if out.Degraded() {
		c.metrics.Degraded(StateVerify)
		st = st.Trace(out.Note())
	}
	return st.Trace(fmt.Sprintf("Quality score: %.2f", st.Confidence))
}

type skillView struct {
	Name        string `json:"skill_name"`
	Category    string `json:"category,omitempty"`
	DemandScore int    `json:"demand_score,omitempty"`
	Difficulty  string `json:"difficulty_level,omitempty"`
	Description string `json:"description,omitempty"`
}

type resourceView struct {
	Title          string  `json:"title"`
	URL            string  `json:"url,omitempty"`
	Source         string  `json:"source,omitempty"`
	Category       string  `json:"category,omitempty"`
	RelevanceScore float64 `json:"relevance_score,omitempty"`
}

// recordsJSON renders the first n candidates in the shape the draft prompt
// expects.
func recordsJSON(cs []model.Candidate, n int) string {
	views := make([]any, 0, min(n, len(cs)))
	for _, c := range cs[:min(n, len(cs))] {
		if c.Kind == model.KindResources {
			views = append(views, resourceView{
				Title: c.Name, URL: c.URL, Source: c.Source,
				Category: c.Category, RelevanceScore: c.Relevance,
			})
			continue
		}
		views = append(views, skillView{
			Name: c.Name, Category: c.Category, DemandScore: c.DemandScore,
			Difficulty: c.Difficulty, Description: c.Description,
		})
	}
	b, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

func namesJSON(cs []model.Candidate, n int) string {
	names := make([]string, 0, min(n, len(cs)))
	for _, c := range cs[:min(n, len(cs))] {
		name := c.Name
		if name == "" {
			name = "Unknown"
		}
		names = append(names, name)
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
