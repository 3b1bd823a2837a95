package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillsage/server/internal/agent/model"
)

func TestDedupFirstOccurrenceWins(t *testing.T) {
	first := []model.Candidate{{ID: "a", Name: "first-a"}, {ID: "b"}}
	second := []model.Candidate{{ID: "c"}, {ID: "a", Name: "second-a"}, {ID: "b"}, {ID: "d"}}

	got := Dedup(first, second)

	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
	assert.Equal(t, "first-a", got[0].Name)
}

func TestDedupIdempotent(t *testing.T) {
	in := []model.Candidate{{ID: "x"}, {Name: "Go"}, {ID: "x"}, {Name: "go "}, {ID: "y"}}
	once := Dedup(in)
	assert.Equal(t, once, Dedup(once))
	assert.Len(t, once, 3)
}

func TestDedupEmpty(t *testing.T) {
	assert.Empty(t, Dedup())
	assert.Empty(t, Dedup(nil, []model.Candidate{}))
}

func TestCap(t *testing.T) {
	in := []model.Candidate{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	assert.Len(t, Cap(in, 2), 2)
	assert.Len(t, Cap(in, 5), 3)
	assert.Len(t, Cap(in, 0), 3)

	capped := Cap(in, 2)
	capped = append(capped, model.Candidate{ID: "new"})
	assert.Equal(t, "3", in[2].ID)
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(model.AccessConfig{
		BlockedSources:  []string{" Reddit ", ""},
		BlockedKeywords: []string{"Crypto"},
	})
	assert.Equal(t, []string{"reddit"}, p.BlockedSources)
	assert.False(t, p.Allows(model.Candidate{URL: "https://www.reddit.com/r/golang"}))
	assert.False(t, p.Allows(model.Candidate{Name: "Crypto trading bots"}))
	assert.True(t, p.Allows(model.Candidate{Name: "Go concurrency", Source: "google"}))
}
