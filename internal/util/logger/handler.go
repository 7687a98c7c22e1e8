package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	outputMu sync.RWMutex
	output   io.Writer = os.Stderr
)

// switchWriter 每次写入时读取当前输出目标，SetOutput 对已创建的 Logger 同样生效
type switchWriter struct{}

func (switchWriter) Write(p []byte) (int, error) {
	outputMu.RLock()
	w := output
	outputMu.RUnlock()
	return w.Write(p)
}

// levelHandler 在内层 Handler 外加一个可动态调整的级别
type levelHandler struct {
	level *slog.LevelVar
	inner slog.Handler
}

func newLevelHandler(subsystem string, level *slog.LevelVar, cfg *Config) *levelHandler {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				a.Key = "ts"
			case slog.LevelKey:
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(levelName(lvl))
				}
			}
			return a
		},
	}

	var inner slog.Handler
	if cfg.Format == FormatJSON {
		inner = slog.NewJSONHandler(switchWriter{}, opts)
	} else {
		inner = slog.NewTextHandler(switchWriter{}, opts)
	}

	return &levelHandler{
		level: level,
		inner: inner.WithAttrs([]slog.Attr{slog.String("subsystem", subsystem)}),
	}
}

func (h *levelHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	return lvl >= h.level.Level()
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, inner: h.inner.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, inner: h.inner.WithGroup(name)}
}

func levelName(lvl slog.Level) string {
	switch {
	case lvl < slog.LevelInfo:
		return "debug"
	case lvl < slog.LevelWarn:
		return "info"
	case lvl < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}

// discardHandler 丢弃全部记录
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
