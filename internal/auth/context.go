package auth

import (
	"context"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/user"
)

// Principal is the authenticated caller, resolved against the user
// store so downstream checks never re-fetch it.
type Principal struct {
	ID     string
	Email  string
	Name   string
	Role   user.Role
	Status user.Status
}

type ctxKey struct{}

var ctxKeyPrincipal = ctxKey{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	return p, ok
}
