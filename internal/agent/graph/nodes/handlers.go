package nodes

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/skillsage/server/internal/agent/model"
	"github.com/skillsage/server/internal/metrics"
	logx "github.com/skillsage/server/pkg/logger"
)

// NewInputConverterPreHandler stamps a request id on the run and starts the
// first stage clock.
func NewInputConverterPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		if s.RequestID == "" {
			s.RequestID = uuid.NewString()
		}
		s.TotalCostUSD = 0
		s.StageStarted[NodeInputConverter] = time.Now()
		return in, nil
	}
}

// NewStagePreHandler starts the clock for stage.
func NewStagePreHandler[I any](stage string) func(context.Context, I, *model.AppState) (I, error) {
	return func(ctx context.Context, in I, s *model.AppState) (I, error) {
		s.StageStarted[stage] = time.Now()
		return in, nil
	}
}

// NewStagePostHandler stops the clock for stage and reports it.
func NewStagePostHandler[O any](stage string, m *metrics.Metrics) func(context.Context, O, *model.AppState) (O, error) {
	return func(ctx context.Context, out O, s *model.AppState) (O, error) {
		recordStage(s, stage, m)
		return out, nil
	}
}

// NewFinalizePostHandler closes the last stage and logs the run summary.
func NewFinalizePostHandler(m *metrics.Metrics) func(context.Context, model.Answer, *model.AppState) (model.Answer, error) {
	return func(ctx context.Context, out model.Answer, s *model.AppState) (model.Answer, error) {
		recordStage(s, NodeFinalize, m)
		s.TotalCostUSD = out.CostUSD

		var total time.Duration
		for _, d := range s.StageTook {
			total += d
		}
		logx.Info().
			Str("request_id", s.RequestID).
			Str("intent", string(out.Intent.Kind)).
			Float64("confidence", out.Confidence).
			Int("passes", out.Passes).
			Int("refinements", out.Refinements).
			Float64("total_cost_usd", s.TotalCostUSD).
			Dur("took", total).
			Msg("Pipeline finished")
		return out, nil
	}
}

func recordStage(s *model.AppState, stage string, m *metrics.Metrics) {
	started, ok := s.StageStarted[stage]
	if !ok {
		return
	}
	d := time.Since(started)
	s.StageTook[stage] = d
	m.StageDuration(stage, d)
}
