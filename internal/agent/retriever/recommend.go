package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillsage/server/internal/agent/model"
	"github.com/skillsage/server/internal/core/degrade"
)

// Recommender is implemented by stores that can rank skills for a student level.
type Recommender interface {
	RecommendForLevel(ctx context.Context, level string, limit int) ([]model.Candidate, error)
}

// Recommend lists skills suited to level, falling back to the top skills by demand.
func (r *Retriever) Recommend(ctx context.Context, level string, limit int) Result {
	if limit <= 0 {
		return Result{}
	}
	recs, out := degrade.Do(ctx, "recommend_for_level", []model.Candidate(nil), func(ctx context.Context) ([]model.Candidate, error) {
		rec, ok := r.store.(Recommender)
		if !ok {
			return nil, errors.New("store cannot recommend by level")
		}
		found, err := rec.RecommendForLevel(ctx, level, limit)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, errNoHits
		}
		return found, nil
	})
	if !out.Degraded() {
		if recs = Cap(r.policy.Filter(recs), limit); len(recs) > 0 {
			return Result{Candidates: recs}
		}
	}
	r.metrics.RetrievalFallback("recommendations", "fallback")
	res := r.fallback(ctx, model.KindSkills, limit)
	res.Notes = append([]string{fmt.Sprintf("recommend %q: %s", level, out.Note())}, res.Notes...)
	return res
}
