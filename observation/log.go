package observation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
)

// logc logs a message with the caller position prepended.
func (rt *Runtime) logc(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !rt.logger.Enabled(ctx, level) {
		return
	}
	// usually depth is 2, because logc is called from other functions
	if _, file, line, ok := runtime.Caller(2); ok {
		args = append([]any{slog.String("exec_pos", fmt.Sprintf("%s:%d", file, line))}, args...)
	}
	rt.logger.Log(ctx, level, msg, args...)
}

func (rt *Runtime) debug(msg string, args ...any) {
	rt.logc(context.Background(), slog.LevelDebug, msg, args...)
}
