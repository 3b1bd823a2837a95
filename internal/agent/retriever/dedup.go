package retriever

import "github.com/skillsage/server/internal/agent/model"

// Dedup merges lists in order, keeping the first candidate seen per identity key.
func Dedup(lists ...[]model.Candidate) []model.Candidate {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	seen := make(map[string]struct{}, total)
	out := make([]model.Candidate, 0, total)
	for _, l := range lists {
		for _, c := range l {
			key := c.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// Cap truncates list to at most n entries; n <= 0 means no limit.
func Cap(list []model.Candidate, n int) []model.Candidate {
	if n <= 0 || len(list) <= n {
		return list
	}
	return list[:n:n]
}
