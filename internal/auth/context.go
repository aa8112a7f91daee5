package auth

import (
	"context"

	"repairdesk/internal/workflow"
)

type contextKey struct{}

func WithUser(ctx context.Context, u workflow.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext — пользователь запроса; ok=false для анонимного.
func UserFromContext(ctx context.Context) (workflow.User, bool) {
	if ctx == nil {
		return workflow.User{}, false
	}
	u, ok := ctx.Value(contextKey{}).(workflow.User)
	return u, ok
}
