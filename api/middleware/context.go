package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the jti of the access token that authenticated the request.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext rebuilds the authenticated principal. A missing or
// malformed identity yields the zero Actor, which every scope rejects.
func ActorFromContext(ctx context.Context) visibility.Actor {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return visibility.Actor{}
	}
	return visibility.Actor{ID: id, Role: enums.Role(RoleFromContext(ctx))}
}

// WithActor seeds the context with an authenticated principal.
func WithActor(ctx context.Context, actor visibility.Actor, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, actor.ID.String())
	ctx = context.WithValue(ctx, ctxRole, actor.Role.String())
	if accessID != "" {
		ctx = context.WithValue(ctx, ctxAccessID, accessID)
	}
	return ctx
}
