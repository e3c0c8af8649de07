package common

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ActorIDKey   contextKey = "actor_id"
	ActorRoleKey contextKey = "actor_role"
)

// RoleAdmin is the elevated administrative role required for cancellation.
const RoleAdmin = "admin"

// Actor is the identity attached to every mutating call. The core trusts it;
// authentication happens upstream.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, ActorIDKey, actor.ID)
	return context.WithValue(ctx, ActorRoleKey, actor.Role)
}

func GetActorIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ActorIDKey).(uuid.UUID)
	return id, ok
}

func GetActorRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(ActorRoleKey).(string)
	return role, ok
}

// GetActorFromContext assembles the full actor, reporting false if either
// claim is missing.
func GetActorFromContext(ctx context.Context) (Actor, bool) {
	id, ok := GetActorIDFromContext(ctx)
	if !ok {
		return Actor{}, false
	}
	role, ok := GetActorRoleFromContext(ctx)
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: id, Role: role}, true
}
