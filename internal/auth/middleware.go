package auth

import (
	"net/http"
	"strings"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/user"
)

const (
	// AccessCookie is accepted as an alternative to the bearer header.
	AccessCookie = "aithena_access"
	// RefreshCookie carries the refresh token, httpOnly.
	RefreshCookie = "aithena_refresh"
)

// TokenFromRequest pulls the access token from the Authorization header
// or, failing that, the access cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(AccessCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate verifies the access token, confirms the subject still
// exists and is active, and puts the Principal in the request context.
// Errors are written by onErr so the HTTP layer owns the wire format.
func Authenticate(tokens *TokenService, users user.Store, onErr func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := TokenFromRequest(r)
			if tok == "" {
				onErr(w, r, apperr.Unauthenticated("missing credentials"))
				return
			}
			claims, err := tokens.VerifyAccess(tok)
			if err != nil {
				onErr(w, r, err)
				return
			}
			u, err := users.Get(r.Context(), claims.Subject)
			if err != nil {
				if apperr.IsKind(err, apperr.KindNotFound) {
					onErr(w, r, apperr.Unauthenticated("unknown subject"))
					return
				}
				onErr(w, r, err)
				return
			}
			if !u.Active() {
				onErr(w, r, apperr.Unauthenticated("account is inactive"))
				return
			}
			p := Principal{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Status: u.Status}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
