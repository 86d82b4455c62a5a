package core

import "context"

type contextKey string

const ctxKeySource contextKey = "import_source"

// ContextWithSource tags ctx with where an import came from: the client IP
// for HTTP calls, "cli" for local runs. The tag is stored on the import run.
func ContextWithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, ctxKeySource, source)
}

// SourceFromContext returns the tag set by ContextWithSource, or "".
func SourceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySource).(string); ok {
		return v
	}
	return ""
}
