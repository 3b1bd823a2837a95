package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/skillsage/server/internal/agent/model"
	errx "github.com/skillsage/server/internal/core/error"
)

// ResourceRecord is a learning resource as written by ingestion.
type ResourceRecord struct {
	Title       string
	URL         string
	Description string
	Category    string
	Source      string
	Relevance   float64
}

// TopicRecord is a trending topic as written by ingestion.
type TopicRecord struct {
	Title        string
	Description  string
	Source       string
	Type         string
	OverallScore float64
	Metrics      map[string]any
}

// SkillRecord is a catalogue skill as written by ingestion.
type SkillRecord struct {
	Name        string
	Category    string
	Difficulty  string
	Description string
	DemandScore int
}

const (
	upsertResourceSQL = `INSERT INTO learning_resources (title, url, description, category, source, relevance_score)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (url) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    category = EXCLUDED.category,
    source = EXCLUDED.source,
    relevance_score = EXCLUDED.relevance_score
RETURNING id::text`

	insertTopicSQL = `INSERT INTO trending_topics (title, description, source, topic_type, overall_score, metrics)
VALUES ($1, $2, $3, $4, $5, $6)`

	skillByNameSQL = `SELECT s.id::text, s.skill_name, s.category, s.description, s.difficulty_level, s.demand_score, 0::float8
FROM it_skills s
WHERE lower(s.skill_name) = lower($1)`

	insertSkillSQL = `INSERT INTO it_skills (skill_name, category, difficulty_level, description, demand_score)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (skill_name) DO UPDATE SET demand_score = EXCLUDED.demand_score
RETURNING id::text`

	linkResourceSkillSQL = `INSERT INTO resource_skills (resource_id, skill_id, relevance)
VALUES ($1, $2, $3)
ON CONFLICT (resource_id, skill_id) DO NOTHING`

	upsertTrendSQL = `INSERT INTO skill_trends (skill_id, trend_date, mention_count, resource_count, github_stars, linkedin_posts, trend_score)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (skill_id, trend_date) DO UPDATE SET
    mention_count = EXCLUDED.mention_count,
    resource_count = EXCLUDED.resource_count,
    github_stars = EXCLUDED.github_stars,
    linkedin_posts = EXCLUDED.linkedin_posts,
    trend_score = EXCLUDED.trend_score`

	upsertSkillEmbeddingSQL = `INSERT INTO skill_embeddings (skill_id, embedding, content)
VALUES ($1, $2, $3)
ON CONFLICT (skill_id) DO UPDATE SET embedding = EXCLUDED.embedding, content = EXCLUDED.content`

	upsertResourceEmbeddingSQL = `INSERT INTO resource_embeddings (resource_id, embedding, content)
VALUES ($1, $2, $3)
ON CONFLICT (resource_id) DO UPDATE SET embedding = EXCLUDED.embedding, content = EXCLUDED.content`
)

// UpsertResource inserts or refreshes a resource keyed by URL and returns its id.
func (s *Store) UpsertResource(ctx context.Context, r ResourceRecord) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, upsertResourceSQL,
		strings.TrimSpace(r.Title), strings.TrimSpace(r.URL), r.Description, r.Category, r.Source, r.Relevance,
	).Scan(&id)
	if err != nil {
		return "", errx.WrapStore(err)
	}
	return id, nil
}

func (s *Store) InsertTopic(ctx context.Context, t TopicRecord) error {
	metrics := t.Metrics
	if metrics == nil {
		metrics = map[string]any{}
	}
	raw, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, insertTopicSQL, t.Title, t.Description, t.Source, t.Type, t.OverallScore, raw); err != nil {
		return errx.WrapStore(err)
	}
	return nil
}

// SkillByName looks a skill up case-insensitively; ok is false when absent.
func (s *Store) SkillByName(ctx context.Context, name string) (c model.Candidate, ok bool, err error) {
	c.Kind = model.KindSkills
	err = s.db.QueryRow(ctx, skillByNameSQL, name).
		Scan(&c.ID, &c.Name, &c.Category, &c.Description, &c.Difficulty, &c.DemandScore, &c.Similarity)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Candidate{}, false, nil
	}
	if err != nil {
		return model.Candidate{}, false, errx.WrapStore(err)
	}
	return c, true, nil
}

// InsertSkill creates a skill, refreshing the demand score on name conflict.
func (s *Store) InsertSkill(ctx context.Context, r SkillRecord) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, insertSkillSQL, r.Name, r.Category, r.Difficulty, r.Description, r.DemandScore).Scan(&id)
	if err != nil {
		return "", errx.WrapStore(err)
	}
	return id, nil
}

func (s *Store) LinkResourceSkill(ctx context.Context, resourceID, skillID string, relevance int) error {
	if _, err := s.db.Exec(ctx, linkResourceSkillSQL, resourceID, skillID, relevance); err != nil {
		return errx.WrapStore(err)
	}
	return nil
}

// UpsertTrend writes the day's signal for a skill, replacing an earlier run on the same day.
func (s *Store) UpsertTrend(ctx context.Context, t model.TrendSignal) error {
	_, err := s.db.Exec(ctx, upsertTrendSQL,
		t.SkillID, t.Date, t.MentionCount, t.ResourceCount, t.GithubStars, t.LinkedinPosts, t.TrendScore,
	)
	if err != nil {
		return errx.WrapStore(err)
	}
	return nil
}

// UpsertEmbedding stores the vector for a skill or resource row.
func (s *Store) UpsertEmbedding(ctx context.Context, kind model.Kind, id string, vec []float32, content string) error {
	sql := upsertSkillEmbeddingSQL
	if kind == model.KindResources {
		sql = upsertResourceEmbeddingSQL
	}
	if _, err := s.db.Exec(ctx, sql, id, pgvector.NewVector(vec), content); err != nil {
		return errx.WrapStore(err)
	}
	return nil
}
