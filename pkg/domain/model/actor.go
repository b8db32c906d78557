package model

import "context"

type ctxActorKey struct{}

// ContextWithActor returns a context carrying the acting user's ID
func ContextWithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ctxActorKey{}, actorID)
}

// ActorFromContext returns the acting user's ID, or "" when none was set
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxActorKey{}).(string); ok {
		return v
	}
	return ""
}
