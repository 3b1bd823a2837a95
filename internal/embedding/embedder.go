// Package embedding adapts a langchaingo embedder for query and document
// vectors, memoising query vectors in an LRU cache.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/skillsage/server/internal/agent/model"
	errx "github.com/skillsage/server/internal/core/error"
	"github.com/skillsage/server/internal/metrics"
	logx "github.com/skillsage/server/pkg/logger"
)

type Embedder struct {
	impl    embeddings.Embedder
	cache   *lru.Cache[string, []float32]
	metrics *metrics.Metrics
}

// New builds an OpenAI-backed embedder from config.
func New(cfg model.EmbeddingConfig, m *metrics.Metrics) (*Embedder, error) {
	opts := []openai.Option{openai.WithEmbeddingModel(cfg.Model)}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}
	impl, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return Wrap(impl, cfg.CacheSize, m)
}

// Wrap puts an existing embedder behind the cache. cacheSize <= 0 disables caching.
func Wrap(impl embeddings.Embedder, cacheSize int, m *metrics.Metrics) (*Embedder, error) {
	if impl == nil {
		return nil, errors.New("embedder implementation is nil")
	}
	e := &Embedder{impl: impl, metrics: m}
	if cacheSize > 0 {
		cache, err := lru.New[string, []float32](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create embedding cache: %w", err)
		}
		e.cache = cache
	}
	return e, nil
}

// EmbedQuery returns the vector for text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if key == "" {
		return nil, errx.WrapEmbedding(errors.New("empty text"))
	}
	if e.cache != nil {
		if vec, ok := e.cache.Get(key); ok {
			e.metrics.CacheLookup(true)
			return vec, nil
		}
		e.metrics.CacheLookup(false)
	}
	vec, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, errx.WrapEmbedding(err)
	}
	if len(vec) == 0 {
		return nil, errx.WrapEmbedding(errors.New("provider returned an empty vector"))
	}
	if e.cache != nil {
		e.cache.Add(key, vec)
	}
	return vec, nil
}

// EmbedDocuments returns one vector per text, in order.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, errx.WrapEmbedding(err)
	}
	if len(vecs) != len(texts) {
		return nil, errx.WrapEmbedding(fmt.Errorf("expected %d vectors, got %d", len(texts), len(vecs)))
	}
	logx.Debug().Int("count", len(texts)).Msg("embedded documents")
	return vecs, nil
}

func cacheKey(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
