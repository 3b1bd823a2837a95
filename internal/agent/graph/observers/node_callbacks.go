package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"

	logx "github.com/skillsage/server/pkg/logger"
)

// newNodeHandler logs graph node entry, exit and failure.
func newNodeHandler() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, _ einocb.CallbackInput) context.Context {
			if info != nil && info.Component == "Lambda" {
				logx.Debug().Str("node", runName(info)).Msg("node start")
			}
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, _ einocb.CallbackOutput) context.Context {
			if info != nil && info.Component == "Lambda" {
				logx.Debug().Str("node", runName(info)).Msg("node end")
			}
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Error().Str("node", runName(info)).Err(err).Msg("node failed")
			return ctx
		}).
		Build()
}
