package obs

import "context"

type ctxKey int

const routePatternKey ctxKey = iota

// WithRoutePattern stores the matched route pattern on the context.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey, pattern)
}

// RoutePatternFromContext returns the stored route pattern, or "" when no
// route has matched yet.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(routePatternKey).(string)
	return v
}
