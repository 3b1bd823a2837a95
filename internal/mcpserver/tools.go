package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skillsage/server/internal/agent/model"
	"github.com/skillsage/server/internal/scoring"
)

const defaultLevel = "Junior"

// AskTool handles ask_skills_advisor.
type AskTool struct {
	asker Asker
}

func NewAskTool(asker Asker) *AskTool {
	return &AskTool{asker: asker}
}

func (t *AskTool) Definition() mcp.Tool {
	return mcp.NewTool("ask_skills_advisor",
		mcp.WithDescription("Answer a question about IT skills, learning resources or career paths, "+
			"tailored to the student's level. Returns the answer with a confidence in [0,1]."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The student's question"),
		),
		mcp.WithString("student_level",
			mcp.Description("Junior, Mid or Senior (default: Junior)"),
		),
		mcp.WithString("session_id",
			mcp.Description("Optional session id to carry conversation history between calls"),
		),
	)
}

func (t *AskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	level := strings.TrimSpace(req.GetString("student_level", ""))
	if level == "" {
		level = defaultLevel
	}

	ans := t.asker.Run(ctx, model.QueryInput{
		SessionID:    req.GetString("session_id", ""),
		Query:        query,
		StudentLevel: level,
	})
	return jsonResult(ans)
}

// TrendTool handles score_trend.
type TrendTool struct{}

func NewTrendTool() *TrendTool { return &TrendTool{} }

func (t *TrendTool) Definition() mcp.Tool {
	return mcp.NewTool("score_trend",
		mcp.WithDescription("Blend mention, GitHub and LinkedIn signals into a trend score between 50 and 100."),
		mcp.WithNumber("mention_count", mcp.Description("Resources mentioning the skill")),
		mcp.WithNumber("total_resources", mcp.Description("Resources in the batch")),
		mcp.WithNumber("github_stars", mcp.Description("Stars across matching repositories")),
		mcp.WithNumber("linkedin_posts", mcp.Description("Matching LinkedIn posts")),
	)
}

func (t *TrendTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	signals := scoring.TrendSignals{
		MentionCount:   intArg(req, "mention_count", 0),
		TotalResources: intArg(req, "total_resources", 0),
		GithubStars:    intArg(req, "github_stars", 0),
		LinkedinPosts:  intArg(req, "linkedin_posts", 0),
	}
	return jsonResult(map[string]any{
		"signals":     signals,
		"trend_score": scoring.WeightedTrendScore(signals),
	})
}

// RelevanceTool handles score_relevance.
type RelevanceTool struct{}

func NewRelevanceTool() *RelevanceTool { return &RelevanceTool{} }

func (t *RelevanceTool) Definition() mcp.Tool {
	return mcp.NewTool("score_relevance",
		mcp.WithDescription("Rate how relevant a learning resource is to generative AI, between 0 and 1."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Resource title")),
		mcp.WithString("description", mcp.Description("Resource description")),
		mcp.WithString("source", mcp.Description("Publisher or platform")),
	)
}

func (t *RelevanceTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if strings.TrimSpace(title) == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	score := scoring.RelevanceScore(scoring.ResourceText{
		Title:       title,
		Description: req.GetString("description", ""),
		Source:      req.GetString("source", ""),
	})
	return jsonResult(map[string]any{"relevance_score": score})
}

// intArg reads a numeric argument; JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
