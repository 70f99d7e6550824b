package logging

import (
	"context"
	"log/slog"

	"go.uber.org/zap/zapcore"
)

// Slog exposes the logger through the log/slog API for components that take
// a *slog.Logger. Records flow through the same zap core and mirror.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return slog.New(&slogBridge{logger: NewNop()})
	}
	return slog.New(&slogBridge{logger: l})
}

type slogBridge struct {
	logger *Logger
	prefix string
	attrs  []any
}

func (b *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return b.logger.Zap().Core().Enabled(zapLevelFor(level))
}

func (b *slogBridge) Handle(ctx context.Context, record slog.Record) error {
	args := make([]any, 0, len(b.attrs)+record.NumAttrs()*2)
	args = append(args, b.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		args = append(args, b.prefix+attr.Key, attr.Value.Any())
		return true
	})
	b.logger.log(ctx, zapLevelFor(record.Level), record.Message, args)
	return nil
}

func (b *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &slogBridge{
		logger: b.logger,
		prefix: b.prefix,
		attrs:  append([]any(nil), b.attrs...),
	}
	for _, attr := range attrs {
		next.attrs = append(next.attrs, b.prefix+attr.Key, attr.Value.Any())
	}
	return next
}

func (b *slogBridge) WithGroup(name string) slog.Handler {
	if name == "" {
		return b
	}
	return &slogBridge{
		logger: b.logger,
		prefix: b.prefix + name + ".",
		attrs:  append([]any(nil), b.attrs...),
	}
}

func zapLevelFor(level slog.Level) zapcore.Level {
	switch {
	case level < slog.LevelInfo:
		return zapcore.DebugLevel
	case level < slog.LevelWarn:
		return zapcore.InfoLevel
	case level < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
