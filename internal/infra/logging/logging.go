// File: internal/infra/logging/logging.go
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"invoice-qa-review/internal/config"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger configured from config, writing to stdout.
// Supports "trace" | "debug" | "info" | "warn" | "error" levels
// and "json" | "console" formats. When cfg.File is set, output goes to that
// file so interactive frontends keep the terminal to themselves.
func New(cfg config.LogConfig, dev bool) (*zerolog.Logger, io.Closer, error) {
	return NewTo(os.Stdout, cfg, dev)
}

// NewTo is New with an explicit default writer. The one-shot CLI passes
// stderr so stdout carries only the verdict. cfg.File still takes precedence.
func NewTo(w io.Writer, cfg config.LogConfig, dev bool) (*zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := w
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open log file: %w", err)
		}
		out, closer = f, f
	}

	var base zerolog.Logger
	if cfg.File == "" && (strings.ToLower(cfg.Format) == "console" || dev) {
		cw := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		base = zerolog.New(cw).With().Timestamp().Logger()
	} else {
		base = zerolog.New(out).With().Timestamp().Logger()
	}

	if cfg.Sampling && !dev {
		// one event in every 100 is written
		sampled := base.Sample(&zerolog.BasicSampler{N: 100})
		return &sampled, closer, nil
	}
	return &base, closer, nil
}

// Nop returns a disabled logger, handy for tests and optional dependencies.
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type ctxKey string

const (
	ctxTraceID  ctxKey = "trace_id"
	ctxReviewID ctxKey = "review_id"
	ctxChatID   ctxKey = "chat_id"
)

// With attaches the context fields (trace_id, review_id, chat_id) present on ctx.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	if base == nil {
		base = Nop()
	}
	l := base.With()
	if v, ok := ctx.Value(ctxTraceID).(string); ok {
		l = l.Str("trace_id", v)
	}
	if v, ok := ctx.Value(ctxReviewID).(string); ok {
		l = l.Str("review_id", v)
	}
	if v, ok := ctx.Value(ctxChatID).(int64); ok {
		l = l.Int64("chat_id", v)
	}
	logger := l.Logger()
	return &logger
}

// TraceDuration logs start and end with elapsed duration at TRACE level.
// Usage: defer logging.TraceDuration(logger, "ReviewUC.Review")()
func TraceDuration(logger *zerolog.Logger, name string) func() {
	start := time.Now()
	logger.Trace().Str("method", name).Msg("start")
	return func() {
		logger.Trace().Str("method", name).Dur("duration", time.Since(start)).Msg("finish")
	}
}

// Redact hides secrets when not in dev; keep short/preview.
func Redact(s string, dev bool) string {
	if dev {
		return s
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-2:]
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxTraceID, id)
}

func WithReviewID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxReviewID, id)
}

func WithChatID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxChatID, id)
}

// TraceID returns the trace id stored on ctx, if any.
func TraceID(ctx context.Context) string {
	v, _ := ctx.Value(ctxTraceID).(string)
	return v
}
