package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/skillsage/server/internal/agent/model"
)

type stubAsker struct {
	got model.QueryInput
}

func (s *stubAsker) Run(_ context.Context, in model.QueryInput) model.Answer {
	s.got = in
	return model.Answer{RequestID: "req-1", Text: "Learn Python first.", Confidence: 0.9}
}

func makeReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAskTool_Handle(t *testing.T) {
	asker := &stubAsker{}
	tool := NewAskTool(asker)

	res, err := tool.Handle(context.Background(), makeReq(map[string]any{
		"query":      "What should I learn?",
		"session_id": "s-1",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	out := resultText(res)
	assert.Equal(t, "Learn Python first.", gjson.Get(out, "response").String())
	assert.InDelta(t, 0.9, gjson.Get(out, "confidence").Float(), 1e-9)

	assert.Equal(t, "What should I learn?", asker.got.Query)
	assert.Equal(t, "Junior", asker.got.StudentLevel)
	assert.Equal(t, "s-1", asker.got.SessionID)
}

func TestAskTool_RequiresQuery(t *testing.T) {
	asker := &stubAsker{}
	res, err := NewAskTool(asker).Handle(context.Background(), makeReq(map[string]any{"query": "  "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Empty(t, asker.got.Query)
}

func TestTrendTool_Handle(t *testing.T) {
	tool := NewTrendTool()

	res, err := tool.Handle(context.Background(), makeReq(map[string]any{
		"mention_count":   float64(3),
		"total_resources": float64(10),
		"github_stars":    float64(10000),
		"linkedin_posts":  float64(5000),
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(100), gjson.Get(resultText(res), "trend_score").Int())

	res, err = tool.Handle(context.Background(), makeReq(map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, int64(50), gjson.Get(resultText(res), "trend_score").Int())
}

func TestRelevanceTool_Handle(t *testing.T) {
	tool := NewRelevanceTool()

	res, err := tool.Handle(context.Background(), makeReq(map[string]any{
		"title":  "LLM course",
		"source": "OpenAI",
	}))
	require.NoError(t, err)
	assert.InDelta(t, 0.75, gjson.Get(resultText(res), "relevance_score").Float(), 1e-9)

	res, err = tool.Handle(context.Background(), makeReq(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestNew_RegistersTools(t *testing.T) {
	list := func(asker Asker) string {
		s := New(asker)
		msg := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
		raw, err := json.Marshal(msg)
		require.NoError(t, err)
		return string(raw)
	}

	all := list(&stubAsker{})
	assert.Contains(t, all, "ask_skills_advisor")
	assert.Contains(t, all, "score_trend")
	assert.Contains(t, all, "score_relevance")

	scoringOnly := list(nil)
	assert.NotContains(t, scoringOnly, "ask_skills_advisor")
	assert.Contains(t, scoringOnly, "score_trend")
}
