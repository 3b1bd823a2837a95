package prompts

import (
	"context"
	"embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/*.txt
var templateFS embed.FS

// Stage names one templated LLM call.
type Stage string

const (
	StageIntent Stage = "intent"
	StageReason Stage = "reason"
	StageDraft  Stage = "draft"
	StageRefine Stage = "refine"
	StageVerify Stage = "verify"
)

type pair struct {
	system string
	user   string
}

var templates = mustLoad(StageIntent, StageReason, StageDraft, StageRefine, StageVerify)

func mustLoad(stages ...Stage) map[Stage]pair {
	out := make(map[Stage]pair, len(stages))
	for _, st := range stages {
		sys, err := templateFS.ReadFile("template/" + string(st) + "_system.txt")
		if err != nil {
			panic(fmt.Sprintf("prompts: missing %s system template: %v", st, err))
		}
		usr, err := templateFS.ReadFile("template/" + string(st) + "_user.txt")
		if err != nil {
			panic(fmt.Sprintf("prompts: missing %s user template: %v", st, err))
		}
		out[st] = pair{system: string(sys), user: string(usr)}
	}
	return out
}

// Render formats the system and user messages for stage through the Eino
// prompt component, which also fires prompt callbacks.
func Render(ctx context.Context, stage Stage, vars map[string]any) ([]*schema.Message, error) {
	p, ok := templates[stage]
	if !ok {
		return nil, fmt.Errorf("unknown prompt stage %q", stage)
	}
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(p.system),
		schema.UserMessage(p.user),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("%s prompt render: %w", stage, err)
	}
	if len(msgs) != 2 || msgs[0] == nil || msgs[1] == nil {
		return nil, fmt.Errorf("%s prompt render: unexpected result", stage)
	}
	return msgs, nil
}
