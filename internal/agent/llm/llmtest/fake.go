// Package llmtest provides a scripted chat model for pipeline tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// System prompt markers for each pipeline stage.
const (
	Intent = "query analyzer"
	Reason = "expert reasoning agent"
	Draft  = "IT Skills Advisor"
	Refine = "response refinement expert"
	Verify = "quality verifier"
)

// ErrScripted is the default failure returned by Fail.
var ErrScripted = errors.New("scripted failure")

// Reply is one scripted answer; Err wins over Text.
type Reply struct {
	Text string
	Err  error
}

// Model routes each call by the marker found in its system message and pops
// the next scripted reply for that marker. When a script runs dry the last
// reply repeats. Calls with no script fail.
type Model struct {
	mu      sync.Mutex
	scripts map[string][]Reply
	calls   map[string]int
	last    map[string]string
	Usage   *schema.TokenUsage
}

// New returns an empty Model.
func New() *Model {
	return &Model{scripts: map[string][]Reply{}, calls: map[string]int{}, last: map[string]string{}}
}

// On appends replies for the stage identified by marker.
func (m *Model) On(marker string, replies ...Reply) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[marker] = append(m.scripts[marker], replies...)
	return m
}

// Say is shorthand for a successful reply.
func Say(text string) Reply { return Reply{Text: text} }

// Fail is shorthand for a failing reply.
func Fail() Reply { return Reply{Err: ErrScripted} }

// Calls reports how many times marker was hit.
func (m *Model) Calls(marker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[marker]
}

// LastUser returns the user message of the most recent call for marker.
func (m *Model) LastUser(marker string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last[marker]
}

func (m *Model) Generate(ctx context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	marker := route(input)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.calls[marker]
	m.calls[marker] = n + 1
	for _, msg := range input {
		if msg != nil && msg.Role == schema.User {
			m.last[marker] = msg.Content
		}
	}
	script := m.scripts[marker]
	if len(script) == 0 {
		return nil, ErrScripted
	}
	r := script[min(n, len(script)-1)]
	if r.Err != nil {
		return nil, r.Err
	}
	out := schema.AssistantMessage(r.Text, nil)
	if m.Usage != nil {
		out.ResponseMeta = &schema.ResponseMeta{Usage: m.Usage}
	}
	return out, nil
}

func (m *Model) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func route(input []*schema.Message) string {
	for _, msg := range input {
		if msg == nil || msg.Role != schema.System {
			continue
		}
		for _, marker := range []string{Intent, Reason, Draft, Refine, Verify} {
			if strings.Contains(msg.Content, marker) {
				return marker
			}
		}
	}
	return ""
}

var _ einomodel.BaseChatModel = (*Model)(nil)
