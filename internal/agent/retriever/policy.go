package retriever

import (
	"strings"

	"github.com/skillsage/server/internal/agent/model"
)

// Policy lists sources and keywords that must never reach an answer. It is a
// plain value handed to the Retriever at construction.
type Policy struct {
	BlockedSources  []string
	BlockedKeywords []string
}

// PolicyFromConfig normalises the configured access lists.
func PolicyFromConfig(cfg model.AccessConfig) Policy {
	return Policy{
		BlockedSources:  normalise(cfg.BlockedSources),
		BlockedKeywords: normalise(cfg.BlockedKeywords),
	}
}

// Allows reports whether c passes the policy.
func (p Policy) Allows(c model.Candidate) bool {
	source := strings.ToLower(c.Source + " " + c.URL)
	for _, s := range p.BlockedSources {
		if strings.Contains(source, s) {
			return false
		}
	}
	if len(p.BlockedKeywords) == 0 {
		return true
	}
	text := strings.ToLower(c.Name + " " + c.Description)
	for _, kw := range p.BlockedKeywords {
		if strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

// Filter drops disallowed candidates, keeping order. The input is not modified.
func (p Policy) Filter(in []model.Candidate) []model.Candidate {
	if len(p.BlockedSources) == 0 && len(p.BlockedKeywords) == 0 {
		return in
	}
	out := make([]model.Candidate, 0, len(in))
	for _, c := range in {
		if p.Allows(c) {
			out = append(out, c)
		}
	}
	return out
}

func normalise(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
