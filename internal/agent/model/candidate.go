package model

import (
	"strings"
	"time"
)

// Kind selects which knowledge store collection a retrieval targets.
type Kind string

const (
	KindSkills    Kind = "skills"
	KindResources Kind = "resources"
)

// Valid reports whether k is a known collection.
func (k Kind) Valid() bool {
	return k == KindSkills || k == KindResources
}

// Candidate is a skill or learning resource read from the knowledge store.
type Candidate struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty"`
	DemandScore int       `json:"demand_score,omitempty"`    // skills, 0-100
	Relevance   float64   `json:"relevance_score,omitempty"` // resources, 0-1
	Similarity  float64   `json:"similarity,omitempty"`
	CreatedAt   time.Time `json:"-"`
}

// Key is the identity used for deduplication.
func (c Candidate) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return "name:" + strings.ToLower(strings.TrimSpace(c.Name))
}

// Retrieved groups the candidate lists gathered for one request.
type Retrieved struct {
	Skills          []Candidate `json:"skills"`
	Resources       []Candidate `json:"resources"`
	Recommendations []Candidate `json:"recommendations"`
}

// Empty reports whether nothing was retrieved.
func (r Retrieved) Empty() bool {
	return len(r.Skills) == 0 && len(r.Resources) == 0 && len(r.Recommendations) == 0
}

// TrendSignal is one per-skill, per-day engagement snapshot.
type TrendSignal struct {
	SkillID       string    `json:"skill_id"`
	Date          time.Time `json:"trend_date"`
	MentionCount  int       `json:"mention_count"`
	ResourceCount int       `json:"resource_count"`
	GithubStars   int       `json:"github_stars"`
	LinkedinPosts int       `json:"linkedin_posts"`
	TrendScore    int       `json:"trend_score"`
}
