package tenant

import "context"

type scopeKey struct{}

func withScope(ctx context.Context, tenantId string) context.Context {
	return context.WithValue(ctx, scopeKey{}, tenantId)
}

// FromContext returns the tenant id of the active scope, if any. Lower layers
// use it to assert the expected tenant before a write.
func FromContext(ctx context.Context) (string, bool) {
	tenantId, ok := ctx.Value(scopeKey{}).(string)
	return tenantId, ok
}
