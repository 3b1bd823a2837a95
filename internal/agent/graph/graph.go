// Package graph wires the pipeline stages into an Eino graph and exposes the
// never-failing Runner entry point.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	"github.com/skillsage/server/internal/agent/composer"
	"github.com/skillsage/server/internal/agent/graph/conversations"
	"github.com/skillsage/server/internal/agent/graph/nodes"
	"github.com/skillsage/server/internal/agent/graph/observers"
	"github.com/skillsage/server/internal/agent/model"
	"github.com/skillsage/server/internal/metrics"
	logx "github.com/skillsage/server/pkg/logger"
)

const (
	// FailureText is returned when the pipeline itself breaks.
	FailureText       = "I'm sorry, something went wrong while answering your question. Please try again later."
	FailureConfidence = 0.1
)

// Run outcomes reported to metrics.
const (
	OutcomeOK          = "ok"
	OutcomeDraftFailed = "draft_failed"
	OutcomeError       = "error"
)

// Config holds the collaborators each stage needs.
type Config struct {
	Classifier    nodes.Classifier
	Retriever     nodes.Retriever
	Composer      nodes.Composer
	Conversations *conversations.MessagesManager // optional
	Retrieval     model.RetrievalConfig
	Metrics       *metrics.Metrics
}

// GraphBuilder handles the construction of the pipeline graph
type GraphBuilder struct {
	config *Config
	graph  *compose.Graph[model.QueryInput, model.Answer]
}

// Runner executes the compiled graph. The zero value answers every query
// with FailureText.
type Runner struct {
	runnable compose.Runnable[model.QueryInput, model.Answer]
	metrics  *metrics.Metrics
}

// Run answers in. It never returns an error and never panics: any failure
// that escapes the stages becomes FailureText at FailureConfidence.
func (r *Runner) Run(ctx context.Context, in model.QueryInput) (ans model.Answer) {
	var m *metrics.Metrics
	if r != nil {
		m = r.metrics
	}
	outcome := OutcomeOK
	defer func() {
		if rec := recover(); rec != nil {
			logx.Error().Str("panic", fmt.Sprint(rec)).Msg("pipeline panicked")
			ans, outcome = failureAnswer(fmt.Sprintf("pipeline: recovered panic (%v)", rec)), OutcomeError
		}
		m.RunFinished(outcome, ans.Confidence, ans.Passes)
	}()

	if r == nil || r.runnable == nil {
		outcome = OutcomeError
		return failureAnswer("pipeline: not built")
	}

	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()...))
	if err != nil {
		logx.Error().Err(err).Msg("pipeline failed")
		outcome = OutcomeError
		return failureAnswer(fmt.Sprintf("pipeline: %v", err))
	}
	if out.Text == composer.DraftFailureText {
		outcome = OutcomeDraftFailed
	}
	return out
}

// RunPipeline is the (text, confidence) form of Run.
func (r *Runner) RunPipeline(ctx context.Context, query, level string) (string, float64) {
	ans := r.Run(ctx, model.QueryInput{Query: query, StudentLevel: level})
	return ans.Text, ans.Confidence
}

func failureAnswer(note string) model.Answer {
	return model.Answer{
		RequestID:    uuid.NewString(),
		Text:         FailureText,
		Confidence:   FailureConfidence,
		Intent:       model.DefaultIntent(),
		ReasoningLog: []string{note},
	}
}

// BuildGraph validates cfg, builds the graph and returns a Runner.
func BuildGraph(ctx context.Context, cfg Config) (*Runner, error) {
	if cfg.Classifier == nil || cfg.Retriever == nil || cfg.Composer == nil {
		return nil, fmt.Errorf("classifier, retriever and composer are required")
	}

	builder := &GraphBuilder{
		config: &cfg,
		graph: compose.NewGraph[model.QueryInput, model.Answer](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{
					StageStarted: map[string]time.Time{},
					StageTook:    map[string]time.Duration{},
				}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}

	runnable, err := builder.compile(ctx)
	if err != nil {
		return nil, err
	}
	logx.Debug().Msg("Pipeline graph built successfully")
	return &Runner{runnable: runnable, metrics: cfg.Metrics}, nil
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	cfg := b.config
	m := cfg.Metrics
	type stateNode struct {
		key  string
		node *compose.Lambda
	}

	if err := b.graph.AddLambdaNode(nodes.NodeInputConverter,
		nodes.NewInputConverterNode(cfg.Conversations),
		compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
		compose.WithStatePostHandler(nodes.NewStagePostHandler[model.PipelineState](nodes.NodeInputConverter, m)),
	); err != nil {
		return fmt.Errorf("add %s: %w", nodes.NodeInputConverter, err)
	}

	for _, n := range []stateNode{
		{nodes.NodeClassify, nodes.NewClassifyNode(cfg.Classifier)},
		{nodes.NodePlan, nodes.NewPlanNode()},
		{nodes.NodeRetrieve, nodes.NewRetrieveNode(cfg.Retriever, cfg.Retrieval)},
		{nodes.NodeCompose, nodes.NewComposeNode(cfg.Composer)},
	} {
		if err := b.graph.AddLambdaNode(n.key, n.node,
			compose.WithStatePreHandler(nodes.NewStagePreHandler[model.PipelineState](n.key)),
			compose.WithStatePostHandler(nodes.NewStagePostHandler[model.PipelineState](n.key, m)),
		); err != nil {
			return fmt.Errorf("add %s: %w", n.key, err)
		}
	}

	if err := b.graph.AddLambdaNode(nodes.NodeFinalize,
		nodes.NewFinalizeNode(cfg.Conversations, FailureText),
		compose.WithStatePreHandler(nodes.NewStagePreHandler[model.PipelineState](nodes.NodeFinalize)),
		compose.WithStatePostHandler(nodes.NewFinalizePostHandler(m)),
	); err != nil {
		return fmt.Errorf("add %s: %w", nodes.NodeFinalize, err)
	}
	return nil
}

// addEdges creates the linear flow; the only loop lives inside the composer.
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeInputConverter, nodes.NodeClassify},
		{nodes.NodeClassify, nodes.NodePlan},
		{nodes.NodePlan, nodes.NodeRetrieve},
		{nodes.NodeRetrieve, nodes.NodeCompose},
		{nodes.NodeCompose, nodes.NodeFinalize},
		{nodes.NodeFinalize, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("add edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, model.Answer], error) {
	// one step per node plus slack; the graph is acyclic
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(10))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
