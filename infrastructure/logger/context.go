package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// Field keys for correlation IDs carried on context loggers.
const (
	RequestIDKey = "request_id"
	RunIDKey     = "run_id"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	runIDKey
)

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// Lookup returns the logger stored in ctx, if any.
func Lookup(ctx context.Context) (Logger, bool) {
	l, ok := ctx.Value(loggerKey).(Logger)
	return l, ok
}

// FromContext returns the logger stored in ctx, or a shared warn-level
// stderr logger when none was attached.
func FromContext(ctx context.Context) Logger {
	if l, ok := Lookup(ctx); ok {
		return l
	}
	return fallbackLogger()
}

// WithRequestID records id on ctx and stores base enriched with request_id
// as the context logger.
func WithRequestID(ctx context.Context, base Logger, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, id)
	return WithContext(ctx, base.With(String(RequestIDKey, id)))
}

// WithRunID records a resolution run ID on ctx. The context logger, or base
// when ctx has none, is enriched with run_id and returned alongside.
func WithRunID(ctx context.Context, base Logger, id string) (context.Context, Logger) {
	l, ok := Lookup(ctx)
	if !ok {
		l = base
	}
	l = l.With(String(RunIDKey, id))

	ctx = context.WithValue(ctx, runIDKey, id)
	return WithContext(ctx, l), l
}

// RequestID returns the request ID recorded on ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RunID returns the resolution run ID recorded on ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

var (
	fallbackOnce sync.Once
	fallbackLog  Logger
)

func fallbackLogger() Logger {
	fallbackOnce.Do(func() {
		l, err := New(Config{Level: "warn", OutputPaths: []string{"stderr"}})
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: fallback unavailable, discarding context-less logs: %v\n", err)
			l = NewNop()
		}
		fallbackLog = l
	})
	return fallbackLog
}
