package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillsage/server/internal/agent/model"
)

func TestPlan(t *testing.T) {
	const q = "What should I learn?"
	cases := []struct {
		name   string
		intent model.Intent
		level  string
		want   []string
	}{
		{
			name:   "skill discovery adds level query",
			intent: model.Intent{Kind: model.IntentSkillDiscovery},
			level:  "Junior",
			want:   []string{q, "Junior student skills"},
		},
		{
			name:   "resource finding per entity",
			intent: model.Intent{Kind: model.IntentResourceFinding, Entities: []string{"Docker", " ", "Kubernetes"}},
			want:   []string{"Docker learning resources", "Kubernetes learning resources"},
		},
		{
			name:   "resource finding without entities falls back",
			intent: model.Intent{Kind: model.IntentResourceFinding},
			want:   []string{q},
		},
		{
			name:   "comparison appends entities",
			intent: model.Intent{Kind: model.IntentComparison, Entities: []string{"React", "Vue", "React"}},
			want:   []string{q, "React", "Vue"},
		},
		{
			name:   "career advice uses query",
			intent: model.Intent{Kind: model.IntentCareerAdvice, Entities: []string{"Go"}},
			want:   []string{q},
		},
		{
			name:   "trend analysis uses query",
			intent: model.Intent{Kind: model.IntentTrendAnalysis},
			want:   []string{q},
		},
		{
			name:   "general uses query",
			intent: model.Intent{Kind: model.IntentGeneral},
			want:   []string{q},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Plan(tc.intent, q, tc.level))
		})
	}
}

func TestPlanNeverEmpty(t *testing.T) {
	got := Plan(model.Intent{Kind: model.IntentGeneral}, "", "")
	assert.Equal(t, []string{""}, got)
}
