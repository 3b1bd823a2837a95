package intent

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"

	"github.com/skillsage/server/internal/agent/llm"
	"github.com/skillsage/server/internal/agent/llm/llmtest"
	"github.com/skillsage/server/internal/agent/model"
)

func newClassifier(fake *llmtest.Model) *Classifier {
	return New(llm.New(fake, "gemini-2.5-flash-lite"), nil)
}

func TestClassifyParsesModelReply(t *testing.T) {
	fake := llmtest.New().On(llmtest.Intent, llmtest.Say(
		"```json\n{\"intent\":\"comparison\",\"entities\":[\"React\",\"Vue\"],\"search_strategy\":\"comparative_search\",\"context_needs\":[\"skills\"]}\n```"))

	got := newClassifier(fake).Classify(context.Background(), "React or Vue?", "Junior", "")

	assert.False(t, got.Outcome.Degraded())
	assert.Equal(t, model.IntentComparison, got.Intent.Kind)
	assert.Equal(t, []string{"React", "Vue"}, got.Intent.Entities)
	assert.Equal(t, 1, fake.Calls(llmtest.Intent))
}

func TestClassifyModelFailureUsesDefault(t *testing.T) {
	fake := llmtest.New().On(llmtest.Intent, llmtest.Fail())

	got := newClassifier(fake).Classify(context.Background(), "anything", "Junior", "")

	assert.True(t, got.Outcome.Degraded())
	assert.Equal(t, model.DefaultIntent(), got.Intent)
}

func TestClassifyGarbageUsesDefault(t *testing.T) {
	fake := llmtest.New().On(llmtest.Intent, llmtest.Say("The user wants to learn things."))

	got := newClassifier(fake).Classify(context.Background(), "anything", "Senior", "")

	assert.True(t, got.Outcome.Degraded())
	assert.Equal(t, model.DefaultIntent(), got.Intent)
}

func TestClassifyRecordsCost(t *testing.T) {
	fake := llmtest.New().On(llmtest.Intent, llmtest.Say(`{"intent":"general"}`))
	fake.Usage = &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 0}

	got := newClassifier(fake).Classify(context.Background(), "hi", "Junior", "")

	assert.Equal(t, model.IntentGeneral, got.Intent.Kind)
	assert.InDelta(t, 0.10, got.CostUSD, 1e-9)
}
