// Package mcpserver exposes the advisor pipeline and the signal scorer as MCP
// tools over stdio.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/skillsage/server/internal/agent/model"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Asker answers one advisor query. *graph.Runner satisfies it.
type Asker interface {
	Run(ctx context.Context, in model.QueryInput) model.Answer
}

// New registers every tool on a fresh MCP server. asker may be nil, in which
// case only the scoring tools are available.
func New(asker Asker) *server.MCPServer {
	s := server.NewMCPServer(
		"skillsage",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	if asker != nil {
		ask := NewAskTool(asker)
		s.AddTool(ask.Definition(), ask.Handle)
	}

	trend := NewTrendTool()
	s.AddTool(trend.Definition(), trend.Handle)

	relevance := NewRelevanceTool()
	s.AddTool(relevance.Definition(), relevance.Handle)

	return s
}

// ServeStdio blocks serving s on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const instructions = "SkillSage answers questions about IT skills, learning resources and " +
	"market trends. Use ask_skills_advisor for free-form questions; use score_trend and " +
	"score_relevance to rate raw signals without calling a model."
