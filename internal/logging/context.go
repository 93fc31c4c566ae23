package logging

import "context"

type fieldsKey struct{}

// WithFields returns a context carrying key–value pairs that every Logger
// appends to entries logged with that context.
func WithFields(ctx context.Context, args ...any) context.Context {
	prev := Fields(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// Fields returns the pairs stored by WithFields.
func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(fieldsKey{}).([]any)
	return f
}

func withContextFields(ctx context.Context, args []any) []any {
	f := Fields(ctx)
	if len(f) == 0 {
		return args
	}
	out := make([]any, 0, len(args)+len(f))
	out = append(out, args...)
	return append(out, f...)
}
