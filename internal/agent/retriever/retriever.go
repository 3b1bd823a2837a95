// Package retriever fetches candidate skills and resources for a query using
// vector similarity, degrading to a deterministic score-ordered listing when
// the embedder or the similarity search is unavailable.
package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillsage/server/internal/agent/model"
	"github.com/skillsage/server/internal/core/degrade"
	"github.com/skillsage/server/internal/metrics"
	logx "github.com/skillsage/server/pkg/logger"
)

// DefaultSimilarityThreshold is the minimum cosine similarity for a hit.
const DefaultSimilarityThreshold = 0.6

// Embedder turns text into a query vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the read side of the knowledge store the retriever depends on.
type Store interface {
	SimilaritySearch(ctx context.Context, vec []float32, kind model.Kind, threshold float64, limit int) ([]model.Candidate, error)
	// TopCandidates lists skills by demand score, resources by recency.
	TopCandidates(ctx context.Context, kind model.Kind, limit int) ([]model.Candidate, error)
}

// Result is a retrieval plus the notes explaining any degradation.
type Result struct {
	Candidates []model.Candidate
	Fallback   bool
	Notes      []string
}

type Retriever struct {
	embedder  Embedder
	store     Store
	policy    Policy
	threshold float64
	metrics   *metrics.Metrics
}

type Option func(*Retriever)

func WithPolicy(p Policy) Option {
	return func(r *Retriever) { r.policy = p }
}

func WithThreshold(t float64) Option {
	return func(r *Retriever) {
		if t > 0 {
			r.threshold = t
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Retriever) { r.metrics = m }
}

func New(embedder Embedder, store Store, opts ...Option) *Retriever {
	r := &Retriever{
		embedder:  embedder,
		store:     store,
		threshold: DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var errNoHits = errors.New("similarity search returned no hits")

// Retrieve returns at most limit candidates of kind for query. It never fails:
// collaborator errors switch to the keyword fallback, and a failing fallback
// yields an empty list.
func (r *Retriever) Retrieve(ctx context.Context, query string, kind model.Kind, limit int) Result {
	if limit <= 0 {
		return Result{}
	}

	hits, out := degrade.Do(ctx, "similarity_search", []model.Candidate(nil), func(ctx context.Context) ([]model.Candidate, error) {
		if r.embedder == nil || r.store == nil {
			return nil, errors.New("retriever collaborators not configured")
		}
		vec, err := r.embedder.EmbedQuery(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		found, err := r.store.SimilaritySearch(ctx, vec, kind, r.threshold, limit)
		if err != nil {
			return nil, fmt.Errorf("similarity search: %w", err)
		}
		if len(found) == 0 {
			return nil, errNoHits
		}
		return found, nil
	})
	if !out.Degraded() {
		hits = Cap(r.policy.Filter(hits), limit)
		if len(hits) > 0 {
			logx.Debug().Str("kind", string(kind)).Int("hits", len(hits)).Msg("similarity retrieval")
			return Result{Candidates: hits}
		}
		out.Err = errors.New("all similarity hits blocked by policy")
	}

	reason := "error"
	if errors.Is(out.Err, errNoHits) {
		reason = "no_hits"
	}
	r.metrics.RetrievalFallback(string(kind), reason)

	res := r.fallback(ctx, kind, limit)
	res.Notes = append([]string{fmt.Sprintf("retrieve %s %q: %s", kind, query, out.Note())}, res.Notes...)
	return res
}

func (r *Retriever) fallback(ctx context.Context, kind model.Kind, limit int) Result {
	top, out := degrade.Do(ctx, "keyword_fallback", []model.Candidate{}, func(ctx context.Context) ([]model.Candidate, error) {
		if r.store == nil {
			return nil, errors.New("store not configured")
		}
		return r.store.TopCandidates(ctx, kind, limit)
	})
	res := Result{Candidates: Cap(r.policy.Filter(top), limit), Fallback: true}
	if out.Degraded() {
		r.metrics.Degraded(out.Op)
		res.Notes = append(res.Notes, out.Note())
	}
	return res
}
