package api

import "context"

type requestIDContextKey struct{}

// WithRequestID pins the X-Request-ID sent for requests made with ctx.
// Without it every request gets a fresh random id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
