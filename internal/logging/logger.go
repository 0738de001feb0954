// Package logging defines the structured logger used by the manager
// types, plus a tee that mirrors records into the diagnostic log shown
// on the logs screen.
package logging

import "context"

// Logger is a context-aware, structured logger. Variadic args are
// key-value pairs, e.g. log.Info(ctx, "connected", "device", name).
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}

// Nop discards everything. Useful default for tests.
type Nop struct{}

func (Nop) Info(context.Context, string, ...any)  {}
func (Nop) Warn(context.Context, string, ...any)  {}
func (Nop) Error(context.Context, string, ...any) {}
func (n Nop) With(...any) Logger                  { return n }
