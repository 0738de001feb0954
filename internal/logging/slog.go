package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}

// Tee wraps a Logger and additionally sends each record, formatted as a
// single line, to sink. The device manager uses this to keep the
// on-screen diagnostic log in step with the structured log.
type Tee struct {
	inner Logger
	sink  func(line string)
	attrs []any
}

func NewTee(inner Logger, sink func(line string)) *Tee {
	if inner == nil {
		inner = Nop{}
	}
	return &Tee{inner: inner, sink: sink}
}

func (t *Tee) Info(ctx context.Context, msg string, args ...any) {
	t.inner.Info(ctx, msg, args...)
	t.emit(msg, args)
}

func (t *Tee) Warn(ctx context.Context, msg string, args ...any) {
	t.inner.Warn(ctx, msg, args...)
	t.emit("warn: "+msg, args)
}

func (t *Tee) Error(ctx context.Context, msg string, args ...any) {
	t.inner.Error(ctx, msg, args...)
	t.emit("error: "+msg, args)
}

func (t *Tee) With(args ...any) Logger {
	return &Tee{inner: t.inner.With(args...), sink: t.sink, attrs: append(append([]any{}, t.attrs...), args...)}
}

func (t *Tee) emit(msg string, args []any) {
	if t.sink == nil {
		return
	}
	t.sink(formatLine(msg, append(append([]any{}, t.attrs...), args...)))
}

func formatLine(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if len(args)%2 == 1 {
		fmt.Fprintf(&b, " %v", args[len(args)-1])
	}
	return b.String()
}
