// Package planner turns a classified intent into the ordered list of search
// queries the retriever runs.
package planner

import (
	"slices"
	"strings"

	"github.com/skillsage/server/internal/agent/model"
)

// Plan returns the search queries for intent. The result is never empty:
// the raw query stands in when nothing else applies.
func Plan(intent model.Intent, query, level string) []string {
	var out []string
	switch intent.Kind {
	case model.IntentSkillDiscovery:
		out = []string{query, strings.TrimSpace(level + " student skills")}
	case model.IntentResourceFinding:
		for _, e := range intent.Entities {
			if e = strings.TrimSpace(e); e != "" {
				out = append(out, e+" learning resources")
			}
		}
	case model.IntentComparison:
		out = append(out, query)
		for _, e := range intent.Entities {
			if e = strings.TrimSpace(e); e != "" {
				out = append(out, e)
			}
		}
	default:
		out = []string{query}
	}

	plan := make([]string, 0, len(out))
	for _, q := range out {
		if strings.TrimSpace(q) == "" || slices.Contains(plan, q) {
			continue
		}
		plan = append(plan, q)
	}
	if len(plan) == 0 {
		return []string{query}
	}
	return plan
}
