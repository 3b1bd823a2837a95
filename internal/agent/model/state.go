package model

import (
	"slices"
	"time"

	"github.com/cloudwego/eino/schema"
)

// QueryInput represents the input for processing user queries.
type QueryInput struct {
	SessionID    string `json:"session_id,omitempty"`
	Query        string `json:"query"`
	StudentLevel string `json:"student_level"`
}

// Answer is what a pipeline run hands back to its caller.
type Answer struct {
	RequestID    string   `json:"request_id"`
	Text         string   `json:"response"`
	Confidence   float64  `json:"confidence"`
	Intent       Intent   `json:"intent"`
	Passes       int      `json:"passes"`
	Refinements  int      `json:"refinement_count"`
	ReasoningLog []string `json:"reasoning_log,omitempty"`
	CostUSD      float64  `json:"cost_usd"`
}

// PipelineState is the per-request record passed by value between stages.
// Stages return a modified copy; slices are cloned before append so a
// returned state never aliases its input.
type PipelineState struct {
	RequestID string
	SessionID string
	Query     string
	Level     string
	History   []*schema.Message

	Intent        Intent
	SearchQueries []string
	Retrieved     Retrieved

	Reasoning       string
	DraftText       string
	FinalText       string
	Confidence      float64
	RefinementCount int
	Passes          int

	ReasoningLog []string
	CostUSD      float64
}

// Trace returns a copy of s with note appended to the reasoning log.
func (s PipelineState) Trace(note string) PipelineState {
	s.ReasoningLog = append(slices.Clip(s.ReasoningLog), note)
	return s
}

// Answer projects the terminal state into the caller-facing result.
func (s PipelineState) Answer() Answer {
	return Answer{
		RequestID:    s.RequestID,
		Text:         s.FinalText,
		Confidence:   s.Confidence,
		Intent:       s.Intent,
		Passes:       s.Passes,
		Refinements:  s.RefinementCount,
		ReasoningLog: slices.Clone(s.ReasoningLog),
		CostUSD:      s.CostUSD,
	}
}

// AppState stores per-invocation bookkeeping for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//   - Business data lives in PipelineState; AppState only carries accounting.
type AppState struct {
	RequestID    string
	StageStarted map[string]time.Time
	StageTook    map[string]time.Duration

	// Accumulated total LLM cost (USD) across model invocations for this query
	TotalCostUSD float64
}
