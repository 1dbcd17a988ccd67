package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/audit"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/auth"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/course"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/rbac"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/user"
)

// redactCourse trims the roster for non-owners: a student only sees
// their own enrollment record.
func redactCourse(c course.Course, p auth.Principal) course.Course {
	if c.Teacher == p.ID || p.Role == user.RoleAdmin {
		return c
	}
	var own []course.Enrollment
	if i := c.EnrollmentIndex(p.ID); i >= 0 {
		own = []course.Enrollment{c.Enrollments[i]}
	}
	c.Enrollments = own
	return c
}

func CreateCourseHandler(courses course.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		var req struct {
			Title       string `json:"title" validate:"required,min=3,max=200"`
			Description string `json:"description" validate:"max=5000"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		c := course.Course{
			ID:          uuid.NewString(),
			Title:       req.Title,
			Description: req.Description,
			Teacher:     p.ID,
			Status:      course.StatusDraft,
		}
		if err := courses.PutCourse(r.Context(), c); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func ListCoursesHandler(courses course.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		limit, offset := pageParams(r)
		f := course.CourseFilter{
			Query:  strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:  limit,
			Offset: offset,
		}
		switch r.URL.Query().Get("scope") {
		case "teaching":
			f.Teacher = p.ID
		case "enrolled":
			f.Student = p.ID
		default:
			// catalogue: only published courses are visible to everyone
			f.Status = course.StatusPublished
		}
		out, err := courses.ListCourses(r.Context(), f)
		if err != nil {
			onErr(w, r, err)
			return
		}
		for i := range out {
			out[i] = redactCourse(out[i], p)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetCourseHandler(onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		a, ok := rbac.AccessFromContext(r.Context())
		if !ok {
			onErr(w, r, apperr.NotFound("course not found"))
			return
		}
		c := a.Course
		if c.Status != course.StatusPublished && !a.IsOwner {
			onErr(w, r, apperr.NotFound("course not found"))
			return
		}
		writeJSON(w, http.StatusOK, redactCourse(c, p))
	}
}

func UpdateCourseHandler(courses course.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, _ := rbac.AccessFromContext(r.Context())
		var req struct {
			Title       *string        `json:"title" validate:"omitempty,min=3,max=200"`
			Description *string        `json:"description" validate:"omitempty,max=5000"`
			Status      *course.Status `json:"status" validate:"omitempty,oneof=draft published archived"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		c := a.Course
		if req.Title != nil {
			c.Title = *req.Title
		}
		if req.Description != nil {
			c.Description = *req.Description
		}
		if req.Status != nil {
			c.Status = *req.Status
		}
		if err := courses.PutCourse(r.Context(), c); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func DeleteCourseHandler(courses course.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, _ := rbac.AccessFromContext(r.Context())
		if err := courses.DeleteCourse(r.Context(), a.Course.ID); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func EnrollHandler(courses course.Store, events *audit.EventRepo, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		a, _ := rbac.AccessFromContext(r.Context())
		c := a.Course
		if err := course.Enroll(&c, p.ID, time.Now()); err != nil {
			onErr(w, r, err)
			return
		}
		if err := courses.PutCourse(r.Context(), c); err != nil {
			onErr(w, r, err)
			return
		}
		_ = events.Append(r.Context(), audit.EventStudentEnrolled, c.ID, p.ID,
			map[string]string{"course": c.ID, "student": p.ID})
		writeJSON(w, http.StatusOK, redactCourse(c, p))
	}
}

func UnenrollHandler(courses course.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		a, _ := rbac.AccessFromContext(r.Context())
		c := a.Course
		if err := course.Unenroll(&c, p.ID); err != nil {
			onErr(w, r, err)
			return
		}
		if err := courses.PutCourse(r.Context(), c); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "unenrolled"})
	}
}

// ProgressHandler lets an enrolled student report their own progress.
func ProgressHandler(courses course.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		a, _ := rbac.AccessFromContext(r.Context())
		var req struct {
			Progress float64 `json:"progress" validate:"min=0,max=100"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		c := a.Course
		if err := course.SetProgress(&c, p.ID, req.Progress); err != nil {
			onErr(w, r, err)
			return
		}
		if err := courses.PutCourse(r.Context(), c); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, redactCourse(c, p))
	}
}
