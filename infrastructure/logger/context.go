package logger

import "context"

type ctxKey struct{}

// WithContext stores l in ctx. The request ID middleware uses it so every
// entry for one request carries the same request_id.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx. When there is none it
// returns fallback, or a no-op logger if fallback is nil.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
			return l
		}
	}
	if fallback == nil {
		return NewNop()
	}
	return fallback
}
