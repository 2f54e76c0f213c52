package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
)

// logc logs a message with the caller position prepended.
func (ev *Evaluator) logc(ctx context.Context, level slog.Level, msg string, args ...any) {
	ev.logcWithCallerDepth(ctx, level, 2, msg, args...)
}

func (ev *Evaluator) logcWithCallerDepth(ctx context.Context, level slog.Level, depth int, msg string, args ...any) {
	if !ev.logger.Enabled(ctx, level) {
		return
	}
	if _, file, line, ok := runtime.Caller(depth); ok {
		args = append([]any{slog.String("exec_pos", fmt.Sprintf("%s:%d", file, line))}, args...)
	}
	ev.logger.Log(ctx, level, msg, args...)
}
