package observers

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"

	logx "github.com/krish-ai/chat-server/pkg/logger"
)

type startedAtKey struct{}

// newTimingHandler logs how long every graph node took.
func newTimingHandler() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, _ einocb.CallbackInput) context.Context {
			return context.WithValue(ctx, startedAtKey{}, time.Now())
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, _ einocb.CallbackOutput) context.Context {
			logNodeDuration(ctx, info, nil)
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logNodeDuration(ctx, info, err)
			return ctx
		}).
		Build()
}

func logNodeDuration(ctx context.Context, info *einocb.RunInfo, err error) {
	started, ok := ctx.Value(startedAtKey{}).(time.Time)
	if !ok || info == nil {
		return
	}
	ev := logx.Debug()
	if err != nil {
		ev = logx.Warn().Err(err)
	}
	ev.Str("node", info.Name).
		Str("component", string(info.Component)).
		Dur("took", time.Since(started)).
		Msg("node finished")
}
