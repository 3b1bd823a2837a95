package prompts

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderIntent(t *testing.T) {
	msgs, err := Render(context.Background(), StageIntent, map[string]any{
		"Query":   "What should I learn for GenAI?",
		"Level":   "Junior",
		"History": "",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "query analyzer")
	assert.Contains(t, msgs[0].Content, `"context_needs"`)
	assert.Contains(t, msgs[1].Content, "Query: What should I learn for GenAI?")
	assert.Contains(t, msgs[1].Content, "Student Level: Junior")
}

func TestRenderAllStages(t *testing.T) {
	vars := map[string]any{
		"Query": "q", "Level": "Senior", "Intent": "general", "Skills": "[]",
		"Resources": "[]", "Recommendations": "[]", "Feedback": false,
		"Analysis": "{}", "Reasoning": "r", "Draft": "d", "Response": "resp", "History": "",
	}
	for _, st := range []Stage{StageIntent, StageReason, StageDraft, StageRefine, StageVerify} {
		t.Run(string(st), func(t *testing.T) {
			msgs, err := Render(context.Background(), st, vars)
			require.NoError(t, err)
			assert.NotEmpty(t, msgs[0].Content)
			assert.Equal(t, schema.User, msgs[1].Role)
		})
	}
}

func TestRenderUnknownStage(t *testing.T) {
	_, err := Render(context.Background(), Stage("summarize"), nil)
	assert.Error(t, err)
}
