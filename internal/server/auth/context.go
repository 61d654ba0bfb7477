package auth

import "context"

type ctxKey string

const clientIDKey ctxKey = "clientID"

// WithClientID stores the authenticated client in ctx.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

// ClientIDFromContext returns the client set by WithClientID, if any.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(clientIDKey).(string)
	return v, ok
}
