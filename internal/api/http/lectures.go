package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/auth"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/course"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/rbac"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/user"
)

func CreateLectureHandler(courses course.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, _ := rbac.AccessFromContext(r.Context())
		var req struct {
			Title   string `json:"title" validate:"required,min=3,max=200"`
			Content string `json:"content"`
			Order   int    `json:"order" validate:"min=0"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		l := course.Lecture{
			ID:      uuid.NewString(),
			Course:  a.Course.ID,
			Title:   req.Title,
			Content: req.Content,
			Order:   req.Order,
			Status:  course.LectureDraft,
		}
		if err := courses.PutLecture(r.Context(), l); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, l)
	}
}

func ListLecturesHandler(courses course.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, _ := rbac.AccessFromContext(r.Context())
		out, err := courses.ListLectures(r.Context(), a.Course.ID)
		if err != nil {
			onErr(w, r, err)
			return
		}
		if !a.IsOwner {
			// students only see published lectures, without view records
			filtered := out[:0]
			for _, l := range out {
				if l.Status != course.LecturePublished {
					continue
				}
				l.Views = nil
				filtered = append(filtered, l)
			}
			out = filtered
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetLectureHandler serves one lecture and, for students, records the
// view (the counter only moves on a first view).
func GetLectureHandler(courses course.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		a, _ := rbac.AccessFromContext(r.Context())
		l, err := courses.GetLecture(r.Context(), chi.URLParam(r, "lectureID"))
		if err != nil {
			onErr(w, r, err)
			return
		}
		if l.Course != a.Course.ID {
			onErr(w, r, apperr.NotFound("lecture not found"))
			return
		}
		if !a.IsOwner {
			if l.Status != course.LecturePublished {
				onErr(w, r, apperr.NotFound("lecture not found"))
				return
			}
			if p.Role == user.RoleStudent {
				course.RecordView(&l, p.ID, time.Now())
				if err := courses.PutLecture(r.Context(), l); err != nil {
					onErr(w, r, err)
					return
				}
			}
			l.Views = nil
		}
		writeJSON(w, http.StatusOK, l)
	}
}

func UpdateLectureHandler(courses course.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, _ := rbac.AccessFromContext(r.Context())
		l, err := courses.GetLecture(r.Context(), chi.URLParam(r, "lectureID"))
		if err != nil {
			onErr(w, r, err)
			return
		}
		if l.Course != a.Course.ID {
			onErr(w, r, apperr.NotFound("lecture not found"))
			return
		}
		var req struct {
			Title   *string               `json:"title" validate:"omitempty,min=3,max=200"`
			Content *string               `json:"content"`
			Order   *int                  `json:"order" validate:"omitempty,min=0"`
			Status  *course.LectureStatus `json:"status" validate:"omitempty,oneof=draft published"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		if req.Title != nil {
			l.Title = *req.Title
		}
		if req.Content != nil {
			l.Content = *req.Content
		}
		if req.Order != nil {
			l.Order = *req.Order
		}
		if req.Status != nil {
			l.Status = *req.Status
		}
		if err := courses.PutLecture(r.Context(), l); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

func DeleteLectureHandler(courses course.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, _ := rbac.AccessFromContext(r.Context())
		l, err := courses.GetLecture(r.Context(), chi.URLParam(r, "lectureID"))
		if err != nil {
			onErr(w, r, err)
			return
		}
		if l.Course != a.Course.ID {
			onErr(w, r, apperr.NotFound("lecture not found"))
			return
		}
		if err := courses.DeleteLecture(r.Context(), l.ID); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
