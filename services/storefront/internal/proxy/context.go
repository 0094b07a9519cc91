package proxy

import "context"

type routeKey struct{}

func withRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFrom(ctx context.Context) string {
	if r, ok := ctx.Value(routeKey{}).(string); ok {
		return r
	}
	return "unknown"
}
