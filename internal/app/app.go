package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/skillsage/server/internal/agent/composer"
	"github.com/skillsage/server/internal/agent/graph"
	"github.com/skillsage/server/internal/agent/graph/conversations"
	"github.com/skillsage/server/internal/agent/intent"
	"github.com/skillsage/server/internal/agent/llm"
	"github.com/skillsage/server/internal/agent/repo"
	"github.com/skillsage/server/internal/agent/retriever"
	"github.com/skillsage/server/internal/embedding"
	"github.com/skillsage/server/internal/ingest"
	"github.com/skillsage/server/internal/metrics"
	"github.com/skillsage/server/internal/store"
	logx "github.com/skillsage/server/pkg/logger"
)

// App owns the long-lived clients. Close releases them.
type App struct {
	Config   Config
	Metrics  *metrics.Metrics
	Store    *store.Store
	Embedder *embedding.Embedder

	pool *pgxpool.Pool
	rdb  *goredis.Client
}

// Open connects to Postgres and builds the embedder. Redis is connected
// lazily by Runner since only the pipeline needs it.
func Open(ctx context.Context, cfg Config) (*App, error) {
	m := metrics.New()

	pool, err := cfg.Postgres.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	emb, err := embedding.New(cfg.Embedding, m)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &App{
		Config:   cfg,
		Metrics:  m,
		Store:    store.New(pool),
		Embedder: emb,
		pool:     pool,
	}, nil
}

func (a *App) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			logx.Warn().Err(err).Msg("close redis")
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

// Runner builds the full answer pipeline.
func (a *App) Runner(ctx context.Context) (*graph.Runner, error) {
	cfg := a.Config
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required to answer queries")
	}

	models, err := llm.NewGeminiModels(ctx, llm.GeminiConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Intent:  cfg.Intent,
		Answer:  cfg.Answer,
	})
	if err != nil {
		return nil, err
	}

	ret := retriever.New(a.Embedder, a.Store,
		retriever.WithPolicy(retriever.PolicyFromConfig(cfg.Access)),
		retriever.WithThreshold(cfg.Retrieval.SimilarityThreshold),
		retriever.WithMetrics(a.Metrics),
	)

	comp := composer.New(models.Answer,
		composer.WithScoreParser(composer.ParserFor(cfg.Pipeline.VerifyScoreMode)),
		composer.WithThreshold(cfg.Pipeline.ConfidenceThreshold),
		composer.WithRefinementCap(cfg.Pipeline.RefinementCap),
		composer.WithMetrics(a.Metrics),
	)

	convs, err := a.conversations(cfg)
	if err != nil {
		return nil, err
	}

	return graph.BuildGraph(ctx, graph.Config{
		Classifier:    intent.New(models.Intent, a.Metrics),
		Retriever:     ret,
		Composer:      comp,
		Conversations: convs,
		Retrieval:     cfg.Retrieval,
		Metrics:       a.Metrics,
	})
}

// conversations returns nil when no Redis URL is configured; the pipeline
// then answers every query without history.
func (a *App) conversations(cfg Config) (*conversations.MessagesManager, error) {
	if !cfg.Redis.Enabled() {
		logx.Info().Msg("REDIS_URL not set, conversation history disabled")
		return nil, nil
	}
	ttl, err := cfg.ConversationTTL()
	if err != nil {
		return nil, err
	}
	rdb, err := cfg.Redis.New()
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.rdb = rdb
	return conversations.NewMessagesManager(repo.NewRedisConversationRepository(rdb, ttl), cfg.Conversation), nil
}

// Loader builds the ingestion loader over the same store and embedder.
func (a *App) Loader() *ingest.Loader {
	return ingest.New(a.Store,
		ingest.WithEmbedder(a.Embedder),
		ingest.WithMetrics(a.Metrics),
	)
}
