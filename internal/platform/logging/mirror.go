package logging

import (
	"context"
	"sync/atomic"
)

// MirrorFunc receives every emitted log entry in addition to the zap core.
// Observability wiring installs one to forward logs to an external sink.
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

var mirror atomic.Pointer[MirrorFunc]

// SetMirror installs or clears the process-wide log mirror.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirror.Store(nil)
		return
	}
	mirror.Store(&fn)
}

func mirrorLog(ctx context.Context, level Level, msg string, args []any) {
	fn := mirror.Load()
	if fn == nil {
		return
	}
	(*fn)(ctx, level, msg, args...)
}
