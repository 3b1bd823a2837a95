// Package degrade holds the single stage-boundary failure policy: a collaborator
// call either succeeds or is replaced by a fixed fallback, and the failure is
// logged and reported back to the caller as an Outcome instead of an error.
package degrade

import (
	"context"
	"fmt"
	"net/http"

	errx "github.com/skillsage/server/internal/core/error"
	logx "github.com/skillsage/server/pkg/logger"
)

// Outcome describes what happened at one guarded call site.
type Outcome struct {
	Op  string
	Err error
}

// Degraded reports whether the fallback value was used.
func (o Outcome) Degraded() bool {
	return o.Err != nil
}

// Note renders a short trace line for the reasoning log.
func (o Outcome) Note() string {
	if o.Err == nil {
		return o.Op + ": ok"
	}
	return fmt.Sprintf("%s: degraded to fallback (%v)", o.Op, o.Err)
}

// Do runs fn and converts an error or panic into fallback.
func Do[T any](ctx context.Context, op string, fallback T, fn func(context.Context) (T, error)) (result T, out Outcome) {
	out.Op = op
	defer func() {
		if r := recover(); r != nil {
			err := errx.New(fmt.Errorf("panic: %v", r), http.StatusInternalServerError, errx.SystemErrorMessage)
			logx.Error().Str("op", op).Err(err).Msg("recovered panic at stage boundary")
			result, out.Err = fallback, err
		}
	}()

	v, err := fn(ctx)
	if err != nil {
		logx.Warn().Str("op", op).Err(err).Msg("collaborator failed, using fallback")
		return fallback, Outcome{Op: op, Err: err}
	}
	return v, out
}

// Run is Do for calls that only produce an error.
func Run(ctx context.Context, op string, fn func(context.Context) error) Outcome {
	_, out := Do(ctx, op, struct{}{}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return out
}
