// Package observers logs Eino component lifecycles with zerolog.
package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// NewAllCallbacks aggregates the prompt, model and node handlers.
func NewAllCallbacks() []einocb.Handler {
	typed := callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler()).
		Prompt(newPromptHandler()).
		Handler()
	return []einocb.Handler{typed, newNodeHandler()}
}
