package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/skillsage/server/internal/agent/graph/conversations"
	"github.com/skillsage/server/internal/agent/intent"
	"github.com/skillsage/server/internal/agent/model"
	"github.com/skillsage/server/internal/agent/planner"
	"github.com/skillsage/server/internal/agent/retriever"
	"github.com/skillsage/server/internal/core/degrade"
	logx "github.com/skillsage/server/pkg/logger"
)

// Node keys.
const (
	NodeInputConverter = "InputConverter"
	NodeClassify       = "Classify"
	NodePlan           = "Plan"
	NodeRetrieve       = "Retrieve"
	NodeCompose        = "Compose"
	NodeFinalize       = "Finalize"
)

// DefaultLevel is used when a request carries no student level.
const DefaultLevel = "Junior"

// Classifier produces the intent for a query.
type Classifier interface {
	Classify(ctx context.Context, query, level, history string) intent.Classification
}

// Retriever fetches candidates. Neither call may fail.
type Retriever interface {
	Retrieve(ctx context.Context, query string, kind model.Kind, limit int) retriever.Result
	Recommend(ctx context.Context, level string, limit int) retriever.Result
}

// Composer turns retrieved candidates into the final answer.
type Composer interface {
	Compose(ctx context.Context, st model.PipelineState) model.PipelineState
}

// NewInputConverterNode builds the initial PipelineState, loading prior
// session turns when a session is set.
func NewInputConverterNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.QueryInput) (model.PipelineState, error) {
		var requestID string
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			requestID = s.RequestID
			return nil
		}); err != nil {
			return model.PipelineState{}, fmt.Errorf("failed to access state: %w", err)
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		st := model.PipelineState{
			RequestID: requestID,
			SessionID: strings.TrimSpace(in.SessionID),
			Query:     strings.TrimSpace(in.Query),
			Level:     strings.TrimSpace(in.StudentLevel),
		}
		if st.Level == "" {
			st.Level = DefaultLevel
		}
		if st.SessionID == "" {
			return st, nil
		}

		history, out := degrade.Do(ctx, "load_history", []*schema.Message(nil), func(ctx context.Context) ([]*schema.Message, error) {
			return mm.LoadRecent(ctx, st.SessionID)
		})
		st.History = history
		if out.Degraded() {
			st = st.Trace(out.Note())
		}
		return st, nil
	})
}

func NewClassifyNode(c Classifier) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st model.PipelineState) (model.PipelineState, error) {
		res := c.Classify(ctx, st.Query, st.Level, conversations.BuildContext(st.History))
		st.Intent = res.Intent
		st.CostUSD += res.CostUSD
		if res.Outcome.Degraded() {
			st = st.Trace(res.Outcome.Note())
		}
		logx.Debug().
			Str("request_id", st.RequestID).
			Str("intent", string(st.Intent.Kind)).
			Strs("entities", st.Intent.Entities).
			Msg("Query classified")
		return st.Trace(fmt.Sprintf("Intent: %s, entities: %v", st.Intent.Kind, st.Intent.Entities)), nil
	})
}

func NewPlanNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st model.PipelineState) (model.PipelineState, error) {
		st.SearchQueries = planner.Plan(st.Intent, st.Query, st.Level)
		return st.Trace(fmt.Sprintf("Planned %d search queries", len(st.SearchQueries))), nil
	})
}

// NewRetrieveNode runs the skill queries sequentially in plan order so that
// deduplication keeps a deterministic first occurrence.
func NewRetrieveNode(r Retriever, cfg model.RetrievalConfig) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st model.PipelineState) (model.PipelineState, error) {
		var notes []string

		var skills []model.Candidate
		for _, q := range st.SearchQueries {
			res := r.Retrieve(ctx, q, model.KindSkills, cfg.SkillsPerQuery)
			skills = append(skills, res.Candidates...)
			notes = append(notes, res.Notes...)
		}

		resources := r.Retrieve(ctx, st.Query, model.KindResources, cfg.Resources)
		notes = append(notes, resources.Notes...)

		recs := r.Recommend(ctx, st.Level, cfg.Recommendations)
		notes = append(notes, recs.Notes...)

		st.Retrieved = model.Retrieved{
			Skills:          retriever.Cap(retriever.Dedup(skills), cfg.MaxSkills),
			Resources:       retriever.Dedup(resources.Candidates),
			Recommendations: retriever.Dedup(recs.Candidates),
		}
		for _, n := range notes {
			st = st.Trace(n)
		}
		logx.Debug().
			Str("request_id", st.RequestID).
			Int("skills", len(st.Retrieved.Skills)).
			Int("resources", len(st.Retrieved.Resources)).
			Int("recommendations", len(st.Retrieved.Recommendations)).
			Msg("Candidates retrieved")
		return st.Trace(fmt.Sprintf("Retrieved %d skills, %d resources",
			len(st.Retrieved.Skills), len(st.Retrieved.Resources))), nil
	})
}

func NewComposeNode(c Composer) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st model.PipelineState) (model.PipelineState, error) {
		return c.Compose(ctx, st), nil
	})
}

// NewFinalizeNode projects the terminal state into an Answer and records the
// turn when a session is set. Transcript failures are logged only.
func NewFinalizeNode(mm *conversations.MessagesManager, fallbackText string) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st model.PipelineState) (model.Answer, error) {
		if strings.TrimSpace(st.FinalText) == "" {
			st.FinalText = fallbackText
		}
		st.Confidence = min(max(st.Confidence, 0), 1)

		if st.SessionID != "" {
			out := degrade.Run(ctx, "save_turn", func(ctx context.Context) error {
				return mm.SaveTurn(ctx, st.SessionID, st.Query, st.FinalText)
			})
			if out.Degraded() {
				st = st.Trace(out.Note())
			}
		}

		return st.Answer(), nil
	})
}
