package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsage/server/internal/agent/composer"
	"github.com/skillsage/server/internal/agent/graph/conversations"
	"github.com/skillsage/server/internal/agent/intent"
	"github.com/skillsage/server/internal/agent/llm"
	"github.com/skillsage/server/internal/agent/llm/llmtest"
	"github.com/skillsage/server/internal/agent/model"
	"github.com/skillsage/server/internal/agent/retriever"
	"github.com/skillsage/server/internal/metrics"
)

type fakeRetriever struct {
	mu      sync.Mutex
	queries []string
	skills  map[string][]model.Candidate
	res     []model.Candidate
	recs    []model.Candidate
}

func (f *fakeRetriever) Retrieve(_ context.Context, q string, kind model.Kind, limit int) retriever.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if kind == model.KindResources {
		return retriever.Result{Candidates: f.res}
	}
	f.queries = append(f.queries, q)
	return retriever.Result{Candidates: retriever.Cap(f.skills[q], limit)}
}

func (f *fakeRetriever) Recommend(_ context.Context, _ string, limit int) retriever.Result {
	return retriever.Result{Candidates: retriever.Cap(f.recs, limit), Fallback: true, Notes: []string{"recommend: fallback"}}
}

type fixedClassifier struct {
	mu      sync.Mutex
	intent  model.Intent
	history []string
}

func (c *fixedClassifier) Classify(_ context.Context, _, _, history string) intent.Classification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, history)
	return intent.Classification{Intent: c.intent}
}

type panickingComposer struct{}

func (panickingComposer) Compose(context.Context, model.PipelineState) model.PipelineState {
	panic("boom")
}

type memRepo struct {
	mu   sync.Mutex
	msgs map[string][]*schema.Message
}

func (m *memRepo) AddMessage(_ context.Context, id string, msg *schema.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs[id] = append(m.msgs[id], msg)
	return nil
}

func (m *memRepo) LoadHistory(_ context.Context, id string) (*model.ConversationHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &model.ConversationHistory{SessionID: id, Messages: append([]*schema.Message(nil), m.msgs[id]...)}, nil
}

func (m *memRepo) ClearHistory(_ context.Context, id string) error { return nil }

func (m *memRepo) GetMessageCount(_ context.Context, id string) (int, error) {
	return len(m.msgs[id]), nil
}

func skill(id, name string) model.Candidate {
	return model.Candidate{ID: id, Kind: model.KindSkills, Name: name}
}

func happyModel() *llmtest.Model {
	return llmtest.New().
		On(llmtest.Reason, llmtest.Say("reasoning")).
		On(llmtest.Draft, llmtest.Say("draft")).
		On(llmtest.Refine, llmtest.Say("Learn Go, then PostgreSQL.")).
		On(llmtest.Verify, llmtest.Say("0.9 excellent"))
}

func defaultRetrieval() model.RetrievalConfig {
	return model.RetrievalConfig{SkillsPerQuery: 5, MaxSkills: 10, Resources: 5, Recommendations: 5}
}

func TestRunHappyPath(t *testing.T) {
	ctx := context.Background()
	ret := &fakeRetriever{
		skills: map[string][]model.Candidate{
			"What should I learn?":  {skill("1", "Go"), skill("2", "Docker")},
			"Junior student skills": {skill("2", "Docker"), skill("3", "Git")},
		},
		res:  []model.Candidate{{ID: "r1", Kind: model.KindResources, Name: "Tour of Go"}},
		recs: []model.Candidate{skill("3", "Git")},
	}
	m := metrics.New()
	runner, err := BuildGraph(ctx, Config{
		Classifier: &fixedClassifier{intent: model.DefaultIntent()},
		Retriever:  ret,
		Composer:   composer.New(llm.New(happyModel(), "gemini-2.5-flash")),
		Retrieval:  defaultRetrieval(),
		Metrics:    m,
	})
	require.NoError(t, err)

	ans := runner.Run(ctx, model.QueryInput{Query: " What should I learn? ", StudentLevel: "Junior"})

	assert.Equal(t, "Learn Go, then PostgreSQL.", ans.Text)
	assert.Equal(t, 0.9, ans.Confidence)
	assert.Equal(t, 1, ans.Passes)
	assert.Equal(t, model.IntentSkillDiscovery, ans.Intent.Kind)
	assert.NotEmpty(t, ans.RequestID)
	assert.Equal(t, []string{"What should I learn?", "Junior student skills"}, ret.queries)
	assert.Contains(t, ans.ReasoningLog, "Retrieved 3 skills, 1 resources")
	assert.Contains(t, ans.ReasoningLog, "recommend: fallback")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `skillsage_pipeline_runs_total{outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), `stage="Retrieve"`)
}

func TestRunEveryCollaboratorFails(t *testing.T) {
	ctx := context.Background()
	fake := llmtest.New()
	chat := llm.New(fake, "gemini-2.5-flash")
	runner, err := BuildGraph(ctx, Config{
		Classifier: intent.New(chat, nil),
		Retriever:  &fakeRetriever{},
		Composer:   composer.New(chat),
		Retrieval:  defaultRetrieval(),
	})
	require.NoError(t, err)

	text, conf := runner.RunPipeline(ctx, "anything", "Senior")

	assert.Equal(t, composer.DraftFailureText, text)
	assert.Equal(t, composer.DraftFailureConfidence, conf)
}

func TestRunRecoversFromPanickingStage(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	runner, err := BuildGraph(ctx, Config{
		Classifier: &fixedClassifier{intent: model.DefaultIntent()},
		Retriever:  &fakeRetriever{},
		Composer:   panickingComposer{},
		Retrieval:  defaultRetrieval(),
		Metrics:    m,
	})
	require.NoError(t, err)

	var ans model.Answer
	require.NotPanics(t, func() {
		ans = runner.Run(ctx, model.QueryInput{Query: "q", StudentLevel: "Junior"})
	})
	assert.Equal(t, FailureText, ans.Text)
	assert.Equal(t, FailureConfidence, ans.Confidence)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `skillsage_pipeline_runs_total{outcome="error"} 1`)
}

func TestZeroRunnerAnswers(t *testing.T) {
	var r *Runner
	text, conf := r.RunPipeline(context.Background(), "q", "Junior")
	assert.Equal(t, FailureText, text)
	assert.Equal(t, FailureConfidence, conf)

	text, _ = (&Runner{}).RunPipeline(context.Background(), "q", "Junior")
	assert.Equal(t, FailureText, text)
}

func TestRunRecordsSessionTurns(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{msgs: map[string][]*schema.Message{}}
	cls := &fixedClassifier{intent: model.Intent{
		Kind: model.IntentGeneral, Entities: []string{}, Strategy: model.StrategyBroad,
		ContextNeeds: []string{"skills"},
	}}
	runner, err := BuildGraph(ctx, Config{
		Classifier:    cls,
		Retriever:     &fakeRetriever{},
		Composer:      composer.New(llm.New(happyModel(), "gemini-2.5-flash")),
		Conversations: conversations.NewMessagesManager(repo, model.ConversationConfig{MaxTurns: 6}),
		Retrieval:     defaultRetrieval(),
	})
	require.NoError(t, err)

	runner.Run(ctx, model.QueryInput{SessionID: "s1", Query: "What is Go?"})
	runner.Run(ctx, model.QueryInput{SessionID: "s1", Query: "And Rust?"})

	require.Len(t, repo.msgs["s1"], 4)
	assert.Equal(t, "What is Go?", repo.msgs["s1"][0].Content)
	require.Len(t, cls.history, 2)
	assert.Equal(t, "", cls.history[0])
	assert.Contains(t, cls.history[1], "UserMessage(What is Go?)")
	assert.Contains(t, cls.history[1], "AssistantMessage(Learn Go, then PostgreSQL.)")
}

func TestRunDefaultsLevel(t *testing.T) {
	ctx := context.Background()
	ret := &fakeRetriever{}
	runner, err := BuildGraph(ctx, Config{
		Classifier: &fixedClassifier{intent: model.DefaultIntent()},
		Retriever:  ret,
		Composer:   composer.New(llm.New(happyModel(), "gemini-2.5-flash")),
		Retrieval:  defaultRetrieval(),
	})
	require.NoError(t, err)

	runner.Run(ctx, model.QueryInput{Query: "q"})
	assert.Equal(t, []string{"q", "Junior student skills"}, ret.queries)
}

func TestBuildGraphRequiresCollaborators(t *testing.T) {
	_, err := BuildGraph(context.Background(), Config{})
	assert.Error(t, err)
}
