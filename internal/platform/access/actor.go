package access

import "context"

// Actor is the authenticated principal attached to a request context by the
// auth middleware. An unauthenticated request carries the zero Actor.
type Actor struct {
	ID            string
	Role          string
	Authenticated bool
}

type actorKey struct{}

// WithActor returns a context carrying the given actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext extracts the actor set by the auth middleware. The second
// return value reports whether an actor was present at all.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// CanWrite reports whether the actor may mutate the given resource.
func (a Actor) CanWrite(resource Resource) bool {
	if !a.Authenticated {
		return false
	}
	return Allow(a.Role, OpWrite, resource)
}
