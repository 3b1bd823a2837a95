// Package ingest writes collection reports into the knowledge store and
// derives skill demand and daily trend signals from them.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/skillsage/server/internal/agent/model"
	"github.com/skillsage/server/internal/core/degrade"
	errx "github.com/skillsage/server/internal/core/error"
	"github.com/skillsage/server/internal/metrics"
	"github.com/skillsage/server/internal/scoring"
	"github.com/skillsage/server/internal/store"
	logx "github.com/skillsage/server/pkg/logger"
)

const embedContentRunes = 500

// Store is the write side of the knowledge store.
type Store interface {
	UpsertResource(ctx context.Context, r store.ResourceRecord) (string, error)
	InsertTopic(ctx context.Context, t store.TopicRecord) error
	SkillByName(ctx context.Context, name string) (model.Candidate, bool, error)
	InsertSkill(ctx context.Context, r store.SkillRecord) (string, error)
	LinkResourceSkill(ctx context.Context, resourceID, skillID string, relevance int) error
	UpsertTrend(ctx context.Context, t model.TrendSignal) error
	UpsertEmbedding(ctx context.Context, kind model.Kind, id string, vec []float32, content string) error
}

// Embedder vectorises documents for similarity search.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Stats counts what one Load wrote.
type Stats struct {
	ResourcesLoaded int `json:"resources_loaded"`
	TopicsLoaded    int `json:"topics_loaded"`
	SkillsCreated   int `json:"skills_extracted"`
	SkillsLinked    int `json:"skills_linked"`
	TrendsWritten   int `json:"trends_created"`
	Embedded        int `json:"embedded"`
	Failed          int `json:"failed"`
}

type Loader struct {
	store    Store
	embedder Embedder
	metrics  *metrics.Metrics
	backoff  func() retry.Backoff
	now      func() time.Time
}

type Option func(*Loader)

// WithEmbedder enables embedding writes for new rows.
func WithEmbedder(e Embedder) Option {
	return func(l *Loader) { l.embedder = e }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// WithBackoff replaces the per-write retry policy. fn must return a fresh
// backoff on every call.
func WithBackoff(fn func() retry.Backoff) Option {
	return func(l *Loader) {
		if fn != nil {
			l.backoff = fn
		}
	}
}

// WithClock fixes the trend date source.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

func New(s Store, opts ...Option) *Loader {
	l := &Loader{
		store: s,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(3, retry.NewExponential(100*time.Millisecond))
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type loadedResource struct {
	id  string
	src Resource
}

type skillEntry struct {
	match   scoring.SkillMatch
	id      string
	created bool
	links   int
}

// Load writes rep. Individual row failures are counted, logged and joined
// into the returned error; the remaining rows are still written.
func (l *Loader) Load(ctx context.Context, rep Report) (Stats, error) {
	var (
		stats Stats
		errs  []error
	)
	fail := func(op string, err error) {
		stats.Failed++
		errs = append(errs, fmt.Errorf("%s: %w", op, err))
		logx.Warn().Str("op", op).Err(err).Msg("ingest write failed")
	}

	corpus := make([]scoring.ResourceText, 0, len(rep.LearningResources))
	for _, r := range rep.LearningResources {
		corpus = append(corpus, scoring.ResourceText{Title: r.Title, Description: r.Description, Source: r.Source})
	}

	// 1. resources
	var loaded []loadedResource
	for _, r := range rep.LearningResources {
		if strings.TrimSpace(r.URL) == "" || strings.TrimSpace(r.Title) == "" {
			fail("resource", fmt.Errorf("missing title or url"))
			continue
		}
		rec := store.ResourceRecord{
			Title: r.Title, URL: r.URL, Description: r.Description,
			Category: r.Category, Source: r.Source,
		}
		if r.RelevanceScore != nil {
			rec.Relevance = min(max(*r.RelevanceScore, 0), 1)
		} else {
			rec.Relevance = scoring.RelevanceScore(scoring.ResourceText{Title: r.Title, Description: r.Description, Source: r.Source})
		}
		var id string
		err := l.write(ctx, func(ctx context.Context) error {
			var err error
			id, err = l.store.UpsertResource(ctx, rec)
			return err
		})
		if err != nil {
			fail("resource "+r.URL, err)
			continue
		}
		loaded = append(loaded, loadedResource{id: id, src: r})
	}
	stats.ResourcesLoaded = len(loaded)

	// 2. topics
	for _, t := range rep.TrendingTopics {
		rec := store.TopicRecord{
			Title: t.Title, Description: t.Description, Source: t.Source,
			Type: t.Type, OverallScore: t.OverallScore, Metrics: t.metricsMap(),
		}
		if err := l.write(ctx, func(ctx context.Context) error { return l.store.InsertTopic(ctx, rec) }); err != nil {
			fail("topic "+t.Title, err)
			continue
		}
		stats.TopicsLoaded++
	}

	// 3. skills, in first-seen order
	var order []string
	skills := map[string]*skillEntry{}
	type link struct {
		resourceID string
		skill      string
		relevance  int
	}
	var links []link
	for _, lr := range loaded {
		for _, m := range scoring.ExtractSkills(lr.src.Title + " " + lr.src.Description) {
			if _, ok := skills[m.Name]; !ok {
				skills[m.Name] = &skillEntry{match: m}
				order = append(order, m.Name)
			}
			skills[m.Name].links++
			links = append(links, link{resourceID: lr.id, skill: m.Name, relevance: int(m.Confidence * 10)})
		}
	}

	for _, name := range order {
		e := skills[name]
		var (
			existing model.Candidate
			found    bool
		)
		err := l.write(ctx, func(ctx context.Context) error {
			var err error
			existing, found, err = l.store.SkillByName(ctx, name)
			return err
		})
		if err != nil {
			fail("skill lookup "+name, err)
			continue
		}
		if found {
			e.id = existing.ID
			continue
		}
		rec := store.SkillRecord{
			Name:        name,
			Category:    e.match.Category,
			Difficulty:  scoring.Difficulty(name),
			Description: "Skill in " + e.match.Category,
			DemandScore: scoring.DemandScore(name, corpus),
		}
		err = l.write(ctx, func(ctx context.Context) error {
			var err error
			e.id, err = l.store.InsertSkill(ctx, rec)
			return err
		})
		if err != nil {
			fail("skill "+name, err)
			continue
		}
		e.created = true
		stats.SkillsCreated++
	}

	// 4. links
	for _, lk := range links {
		e := skills[lk.skill]
		if e.id == "" {
			continue
		}
		if err := l.write(ctx, func(ctx context.Context) error {
			return l.store.LinkResourceSkill(ctx, lk.resourceID, e.id, lk.relevance)
		}); err != nil {
			fail("link "+lk.skill, err)
			continue
		}
		stats.SkillsLinked++
	}

	// 5. one trend row per skill per day
	today := l.now().UTC().Truncate(24 * time.Hour)
	for _, name := range order {
		e := skills[name]
		if e.id == "" {
			continue
		}
		sig := trendFor(name, rep)
		trend := model.TrendSignal{
			SkillID:       e.id,
			Date:          today,
			MentionCount:  sig.MentionCount,
			ResourceCount: e.links,
			GithubStars:   sig.GithubStars,
			LinkedinPosts: sig.LinkedinPosts,
			TrendScore:    scoring.WeightedTrendScore(sig),
		}
		if err := l.write(ctx, func(ctx context.Context) error { return l.store.UpsertTrend(ctx, trend) }); err != nil {
			fail("trend "+name, err)
			continue
		}
		stats.TrendsWritten++
	}

	// 6. embeddings for rows this run created or refreshed
	stats.Embedded = l.embed(ctx, loaded, order, skills)

	l.metrics.Ingested("resources", stats.ResourcesLoaded)
	l.metrics.Ingested("topics", stats.TopicsLoaded)
	l.metrics.Ingested("skills", stats.SkillsCreated)
	l.metrics.Ingested("trends", stats.TrendsWritten)
	l.metrics.Ingested("embeddings", stats.Embedded)

	logx.Info().
		Int("resources", stats.ResourcesLoaded).
		Int("topics", stats.TopicsLoaded).
		Int("skills_created", stats.SkillsCreated).
		Int("links", stats.SkillsLinked).
		Int("trends", stats.TrendsWritten).
		Int("embedded", stats.Embedded).
		Int("failed", stats.Failed).
		Msg("Report loaded")
	return stats, errors.Join(errs...)
}

// trendFor collects the raw signals for skill. Matching is a case-insensitive
// substring test, the same rule DemandScore uses.
func trendFor(skill string, rep Report) scoring.TrendSignals {
	needle := strings.ToLower(skill)
	sig := scoring.TrendSignals{TotalResources: len(rep.LearningResources)}
	for _, r := range rep.LearningResources {
		if strings.Contains(strings.ToLower(r.Title+" "+r.Description), needle) {
			sig.MentionCount++
		}
	}
	for _, t := range rep.TrendingTopics {
		title := strings.ToLower(t.Title)
		if strings.Contains(title, needle) {
			sig.GithubStars += t.Stars()
		}
		if strings.Contains(title, needle) || strings.Contains(strings.ToLower(t.Description), needle) {
			sig.LinkedinPosts += t.Posts()
		}
	}
	return sig
}

func (l *Loader) embed(ctx context.Context, loaded []loadedResource, order []string, skills map[string]*skillEntry) int {
	if l.embedder == nil {
		return 0
	}
	type doc struct {
		kind    model.Kind
		id      string
		content string
	}
	var docs []doc
	for _, lr := range loaded {
		docs = append(docs, doc{model.KindResources, lr.id, clipRunes(lr.src.Title+" "+lr.src.Description, embedContentRunes)})
	}
	for _, name := range order {
		if e := skills[name]; e.created {
			docs = append(docs, doc{model.KindSkills, e.id, name + ": Skill in " + e.match.Category})
		}
	}
	if len(docs) == 0 {
		return 0
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.content
	}
	vecs, out := degrade.Do(ctx, "embed_documents", [][]float32(nil), func(ctx context.Context) ([][]float32, error) {
		v, err := l.embedder.EmbedDocuments(ctx, texts)
		if err == nil && len(v) != len(texts) {
			err = fmt.Errorf("embedder returned %d vectors for %d documents", len(v), len(texts))
		}
		return v, err
	})
	if out.Degraded() {
		l.metrics.Degraded("embed_documents")
		return 0
	}

	n := 0
	for i, d := range docs {
		if err := l.write(ctx, func(ctx context.Context) error {
			return l.store.UpsertEmbedding(ctx, d.kind, d.id, vecs[i], d.content)
		}); err != nil {
			logx.Warn().Err(err).Str("kind", string(d.kind)).Str("id", d.id).Msg("embedding write failed")
			continue
		}
		n++
	}
	return n
}

// write retries fn while it fails with a server-side store error.
func (l *Loader) write(ctx context.Context, fn func(context.Context) error) error {
	return retry.Do(ctx, l.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && errx.StatusOf(err) >= http.StatusInternalServerError && !errors.Is(err, context.Canceled) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func clipRunes(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}
