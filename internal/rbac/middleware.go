package rbac

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/auth"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/course"
)

// Access is the resolved authorization context for one request: the
// course the route targets plus the derived booleans. It is carried
// explicitly in the request context so handlers never re-fetch the
// course or recompute the checks.
type Access struct {
	Course     course.Course
	IsOwner    bool
	IsEnrolled bool
}

type ctxKey struct{}

var ctxKeyAccess = ctxKey{}

func WithAccess(ctx context.Context, a Access) context.Context {
	return context.WithValue(ctx, ctxKeyAccess, a)
}

func AccessFromContext(ctx context.Context) (Access, bool) {
	a, ok := ctx.Value(ctxKeyAccess).(Access)
	return a, ok
}

// ErrWriter lets the HTTP layer own the error wire format.
type ErrWriter func(http.ResponseWriter, *http.Request, error)

var defaultChecker = NewChecker(nil)

// Require enforces a single permission on the authenticated principal.
func Require(perm string, onErr ErrWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				onErr(w, r, apperr.Unauthenticated("missing credentials"))
				return
			}
			if !defaultChecker.Has(string(p.Role), perm) {
				onErr(w, r, apperr.Forbidden("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny enforces that the principal holds at least one permission.
func RequireAny(onErr ErrWriter, perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				onErr(w, r, apperr.Unauthenticated("missing credentials"))
				return
			}
			if !defaultChecker.Any(string(p.Role), perms...) {
				onErr(w, r, apperr.Forbidden("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ResolveCourse loads the {courseID} route param once, computes the
// ownership/enrollment booleans and stores the Access value.
func ResolveCourse(store course.Store, onErr ErrWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				onErr(w, r, apperr.Unauthenticated("missing credentials"))
				return
			}
			id := chi.URLParam(r, "courseID")
			if id == "" {
				onErr(w, r, apperr.Validation("course id required"))
				return
			}
			c, err := store.GetCourse(r.Context(), id)
			if err != nil {
				onErr(w, r, err)
				return
			}
			a := Access{
				Course:     c,
				IsOwner:    IsOwner(&c, p),
				IsEnrolled: IsEnrolled(&c, p),
			}
			next.ServeHTTP(w, r.WithContext(WithAccess(r.Context(), a)))
		})
	}
}

// RequireOwner gates a route on course ownership. Must run after
// ResolveCourse.
func RequireOwner(onErr ErrWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := AccessFromContext(r.Context())
			if !ok || !a.IsOwner {
				onErr(w, r, apperr.Forbidden("not the course owner"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireEnrolled gates a route on course participation. Must run after
// ResolveCourse.
func RequireEnrolled(onErr ErrWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := AccessFromContext(r.Context())
			if !ok || !a.IsEnrolled {
				onErr(w, r, apperr.Forbidden("not enrolled in this course"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
