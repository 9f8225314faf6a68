package ctxutil

import (
	"context"

	"github.com/google/uuid"

	"github.com/bibliomemory/bibliomemory-backend/internal/domain"
)

type actorKey struct{}

// Actor is the authenticated identity attached to a request context.
// InstitutionID is nil for platform admins and for student accounts that
// have not been linked to an institution yet.
type Actor struct {
	UserID        uuid.UUID
	Role          domain.Role
	InstitutionID *uuid.UUID
}

func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func GetActor(ctx context.Context) *Actor {
	val := ctx.Value(actorKey{})
	if actor, ok := val.(*Actor); ok {
		return actor
	}
	return nil
}
