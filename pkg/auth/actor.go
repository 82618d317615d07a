package auth

import (
	"context"

	"rentals/pkg/model"
)

type ctxKey string

const actorKey ctxKey = "actor"

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    string     `json:"id"`
	Role  model.Role `json:"role"`
	Email string     `json:"email"`
}

func (a *Actor) Is(role model.Role) bool {
	return a != nil && a.Role == role
}

func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the actor stored by the auth middleware, or nil for
// anonymous requests.
func ActorFrom(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorKey).(*Actor)
	return actor
}
