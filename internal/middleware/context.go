package middleware

import (
	"context"

	"github.com/unishare/backend/internal/session"
	"github.com/unishare/backend/internal/store"
)

type sessionCtxKey struct{}
type principalCtxKey struct{}

// SessionFromContext returns the session restored for this request, if any.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey{}).(session.Session)
	return sess, ok
}

// PrincipalFromContext returns the authenticated principal for this request, if any.
func PrincipalFromContext(ctx context.Context) (*store.User, bool) {
	user, ok := ctx.Value(principalCtxKey{}).(*store.User)
	return user, ok && user != nil
}

func withSession(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sess)
}

func withPrincipal(ctx context.Context, user *store.User) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, user)
}
