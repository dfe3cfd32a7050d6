package users

import "context"

type actorContextKey struct{}

// ContextWithActor stores the authenticated actor in context.
func ContextWithActor(ctx context.Context, actor *User) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the authenticated actor, nil when unauthenticated.
func ActorFromContext(ctx context.Context) *User {
	actor, _ := ctx.Value(actorContextKey{}).(*User)
	return actor
}
