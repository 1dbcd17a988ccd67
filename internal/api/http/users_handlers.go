package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/auth"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/course"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/user"
)

func ListUsersHandler(users user.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := pageParams(r)
		out, err := users.List(r.Context(), user.Role(r.URL.Query().Get("role")), limit, offset)
		if err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// CreateUserHandler lets an admin create accounts of any role.
func CreateUserHandler(users user.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string    `json:"name" validate:"required,min=2,max=100"`
			Email    string    `json:"email" validate:"required,email"`
			Password string    `json:"password" validate:"required,min=8"`
			Role     user.Role `json:"role" validate:"required,oneof=student teacher admin"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			onErr(w, r, err)
			return
		}
		u, err := users.Create(r.Context(), user.User{
			ID:           uuid.NewString(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			Role:         req.Role,
			Status:       user.StatusActive,
		})
		if err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

// UpdateProfileHandler lets the caller edit their own name and bio.
func UpdateProfileHandler(users user.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			onErr(w, r, apperr.Unauthenticated("missing credentials"))
			return
		}
		var req struct {
			Name *string `json:"name" validate:"omitempty,min=2,max=100"`
			Bio  *string `json:"bio" validate:"omitempty,max=2000"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		u, err := users.Get(r.Context(), p.ID)
		if err != nil {
			onErr(w, r, err)
			return
		}
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Bio != nil {
			u.Bio = *req.Bio
		}
		u, err = users.Update(r.Context(), u)
		if err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// UpdateUserStatusHandler flips a user active/inactive. Admin may
// change anyone; a user may deactivate themselves.
func UpdateUserStatusHandler(users user.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			onErr(w, r, apperr.Unauthenticated("missing credentials"))
			return
		}
		id := chi.URLParam(r, "userID")
		if p.Role != user.RoleAdmin && p.ID != id {
			onErr(w, r, apperr.Forbidden("cannot change another user's status"))
			return
		}
		var req struct {
			Status user.Status `json:"status" validate:"required,oneof=active inactive"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		u, err := users.Get(r.Context(), id)
		if err != nil {
			onErr(w, r, err)
			return
		}
		u.Status = req.Status
		u, err = users.Update(r.Context(), u)
		if err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// DeleteUserHandler removes a user and then scrubs their enrollment
// references. The cleanup is best-effort sequential: a failure midway
// leaves earlier steps in place.
func DeleteUserHandler(users user.Store, courses course.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "userID")
		enrolled, err := courses.ListCourses(r.Context(), course.CourseFilter{Student: id, Limit: 200})
		if err != nil {
			onErr(w, r, err)
			return
		}
		for i := range enrolled {
			c := enrolled[i]
			if err := course.Unenroll(&c, id); err != nil {
				continue
			}
			if err := courses.PutCourse(r.Context(), c); err != nil {
				onErr(w, r, err)
				return
			}
		}
		if err := users.Delete(r.Context(), id); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
