// Package store is the Postgres + pgvector knowledge store holding skills,
// learning resources, trending topics and per-day skill trend signals.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/skillsage/server/internal/agent/model"
	errx "github.com/skillsage/server/internal/core/error"
	"github.com/skillsage/server/internal/scoring"
	logx "github.com/skillsage/server/pkg/logger"
)

// DB is the subset of pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db DB
}

func New(db DB) *Store {
	return &Store{db: db}
}

const (
	skillColumns    = `s.id::text, s.skill_name, s.category, s.description, s.difficulty_level, s.demand_score`
	resourceColumns = `r.id::text, r.title, r.url, r.description, r.category, r.source, r.relevance_score, r.created_at`

	searchSkillsSQL = `SELECT ` + skillColumns + `, 1 - (e.embedding <=> $1) AS similarity
FROM skill_embeddings e
JOIN it_skills s ON s.id = e.skill_id
WHERE 1 - (e.embedding <=> $1) >= $2
ORDER BY e.embedding <=> $1
LIMIT $3`

	searchResourcesSQL = `SELECT ` + resourceColumns + `, 1 - (e.embedding <=> $1) AS similarity
FROM resource_embeddings e
JOIN learning_resources r ON r.id = e.resource_id
WHERE 1 - (e.embedding <=> $1) >= $2
ORDER BY e.embedding <=> $1
LIMIT $3`

	topSkillsSQL = `SELECT ` + skillColumns + `, 0::float8 AS similarity
FROM it_skills s
ORDER BY s.demand_score DESC, s.skill_name ASC
LIMIT $1`

	recentResourcesSQL = `SELECT ` + resourceColumns + `, 0::float8 AS similarity
FROM learning_resources r
ORDER BY r.created_at DESC, r.title ASC
LIMIT $1`

	recommendSQL = `SELECT ` + skillColumns + `, 0::float8 AS similarity
FROM it_skills s
WHERE s.difficulty_level = ANY($1)
ORDER BY CASE WHEN s.difficulty_level = $2 THEN 0 ELSE 1 END, s.demand_score DESC, s.skill_name ASC
LIMIT $3`
)

// SimilaritySearch returns candidates of kind whose cosine similarity to vec is at least threshold.
func (s *Store) SimilaritySearch(ctx context.Context, vec []float32, kind model.Kind, threshold float64, limit int) ([]model.Candidate, error) {
	if len(vec) == 0 {
		return nil, fmt.Errorf("similarity search: empty query vector")
	}
	switch kind {
	case model.KindSkills:
		return s.querySkills(ctx, searchSkillsSQL, pgvector.NewVector(vec), threshold, limit)
	case model.KindResources:
		return s.queryResources(ctx, searchResourcesSQL, pgvector.NewVector(vec), threshold, limit)
	default:
		return nil, fmt.Errorf("similarity search: unknown kind %q", kind)
	}
}

// TopCandidates lists skills by demand score and resources by recency.
func (s *Store) TopCandidates(ctx context.Context, kind model.Kind, limit int) ([]model.Candidate, error) {
	switch kind {
	case model.KindSkills:
		return s.querySkills(ctx, topSkillsSQL, limit)
	case model.KindResources:
		return s.queryResources(ctx, recentResourcesSQL, limit)
	default:
		return nil, fmt.Errorf("top candidates: unknown kind %q", kind)
	}
}

// RecommendForLevel lists skills at the level's immediate difficulty first, then its next step.
func (s *Store) RecommendForLevel(ctx context.Context, level string, limit int) ([]model.Candidate, error) {
	focus := scoring.LevelFocus(level)
	difficulties := []string{focus.Immediate}
	if focus.Next != focus.Immediate {
		difficulties = append(difficulties, focus.Next)
	}
	return s.querySkills(ctx, recommendSQL, difficulties, focus.Immediate, limit)
}

func (s *Store) querySkills(ctx context.Context, sql string, args ...any) ([]model.Candidate, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		logx.Error().Err(err).Msg("skill query failed")
		return nil, errx.WrapStore(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Candidate, error) {
		c := model.Candidate{Kind: model.KindSkills}
		err := row.Scan(&c.ID, &c.Name, &c.Category, &c.Description, &c.Difficulty, &c.DemandScore, &c.Similarity)
		return c, err
	})
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	return out, nil
}

func (s *Store) queryResources(ctx context.Context, sql string, args ...any) ([]model.Candidate, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		logx.Error().Err(err).Msg("resource query failed")
		return nil, errx.WrapStore(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Candidate, error) {
		c := model.Candidate{Kind: model.KindResources}
		err := row.Scan(&c.ID, &c.Name, &c.URL, &c.Description, &c.Category, &c.Source, &c.Relevance, &c.CreatedAt, &c.Similarity)
		return c, err
	})
	if err != nil {
		return nil, errx.WrapStore(err)
	}
	return out, nil
}
