package http

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/assignment"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/audit"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/auth"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/rbac"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/storage"
)

const maxSubmissionBytes = 32 << 20

// redactAssignment trims foreign submissions for non-owners.
func redactAssignment(a assignment.Assignment, studentID string, isOwner bool) assignment.Assignment {
	if isOwner {
		return a
	}
	var own []assignment.Submission
	if sub, ok := a.SubmissionOf(studentID); ok {
		own = []assignment.Submission{sub}
	}
	a.Submissions = own
	return a
}

func CreateAssignmentHandler(assignments assignment.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac, _ := rbac.AccessFromContext(r.Context())
		var req struct {
			Title               string  `json:"title" validate:"required,min=3,max=200"`
			Description         string  `json:"description" validate:"max=5000"`
			Deadline            int64   `json:"deadline" validate:"required,gt=0"`
			MaxPoints           float64 `json:"max_points" validate:"required,gt=0"`
			AllowLateSubmission bool    `json:"allow_late_submission"`
			LatePenaltyPercent  float64 `json:"late_penalty" validate:"min=0,max=100"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		a := assignment.Assignment{
			ID:                  uuid.NewString(),
			Course:              ac.Course.ID,
			Title:               req.Title,
			Description:         req.Description,
			Deadline:            req.Deadline,
			MaxPoints:           req.MaxPoints,
			Status:              assignment.StatusActive,
			AllowLateSubmission: req.AllowLateSubmission,
			LatePenaltyPercent:  req.LatePenaltyPercent,
		}
		if err := assignments.Put(r.Context(), a); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

func ListAssignmentsHandler(assignments assignment.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		ac, _ := rbac.AccessFromContext(r.Context())
		out, err := assignments.ListByCourse(r.Context(), ac.Course.ID)
		if err != nil {
			onErr(w, r, err)
			return
		}
		for i := range out {
			out[i] = redactAssignment(out[i], p.ID, ac.IsOwner)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getCourseAssignment(r *http.Request, assignments assignment.Store) (assignment.Assignment, error) {
	ac, ok := rbac.AccessFromContext(r.Context())
	if !ok {
		return assignment.Assignment{}, apperr.NotFound("assignment not found")
	}
	a, err := assignments.Get(r.Context(), chi.URLParam(r, "assignmentID"))
	if err != nil {
		return assignment.Assignment{}, err
	}
	if a.Course != ac.Course.ID {
		return assignment.Assignment{}, apperr.NotFound("assignment not found")
	}
	return a, nil
}

func GetAssignmentHandler(assignments assignment.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		ac, _ := rbac.AccessFromContext(r.Context())
		a, err := getCourseAssignment(r, assignments)
		if err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, redactAssignment(a, p.ID, ac.IsOwner))
	}
}

func UpdateAssignmentHandler(assignments assignment.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := getCourseAssignment(r, assignments)
		if err != nil {
			onErr(w, r, err)
			return
		}
		var req struct {
			Title               *string            `json:"title" validate:"omitempty,min=3,max=200"`
			Description         *string            `json:"description" validate:"omitempty,max=5000"`
			Deadline            *int64             `json:"deadline" validate:"omitempty,gt=0"`
			MaxPoints           *float64           `json:"max_points" validate:"omitempty,gt=0"`
			Status              *assignment.Status `json:"status" validate:"omitempty,oneof=active closed"`
			AllowLateSubmission *bool              `json:"allow_late_submission"`
			LatePenaltyPercent  *float64           `json:"late_penalty" validate:"omitempty,min=0,max=100"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		if req.Title != nil {
			a.Title = *req.Title
		}
		if req.Description != nil {
			a.Description = *req.Description
		}
		if req.Deadline != nil {
			a.Deadline = *req.Deadline
		}
		if req.MaxPoints != nil {
			a.MaxPoints = *req.MaxPoints
		}
		if req.Status != nil {
			a.Status = *req.Status
		}
		if req.AllowLateSubmission != nil {
			a.AllowLateSubmission = *req.AllowLateSubmission
		}
		if req.LatePenaltyPercent != nil {
			a.LatePenaltyPercent = *req.LatePenaltyPercent
		}
		if err := assignments.Put(r.Context(), a); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func DeleteAssignmentHandler(assignments assignment.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := getCourseAssignment(r, assignments)
		if err != nil {
			onErr(w, r, err)
			return
		}
		if err := assignments.Delete(r.Context(), a.ID); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// SubmitAssignmentHandler accepts a multipart form with one or more
// "files" parts, stores them in the blob store and upserts the
// student's submission.
func SubmitAssignmentHandler(assignments assignment.Store, blobs storage.BlobStore, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		a, err := getCourseAssignment(r, assignments)
		if err != nil {
			onErr(w, r, err)
			return
		}
		if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
			onErr(w, r, apperr.Validation("multipart form with files required"))
			return
		}
		var keys []string
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			if err != nil {
				onErr(w, r, err)
				return
			}
			key, err := blobs.Put(storage.SubmissionKey(a.ID, p.ID, fh.Filename), f)
			f.Close()
			if err != nil {
				onErr(w, r, err)
				return
			}
			keys = append(keys, key)
		}
		if len(keys) == 0 {
			onErr(w, r, apperr.Validation("at least one file required"))
			return
		}
		prev, resubmit := a.SubmissionOf(p.ID)
		sub, err := a.Submit(p.ID, keys, time.Now())
		if err != nil {
			onErr(w, r, err)
			return
		}
		if err := assignments.Put(r.Context(), a); err != nil {
			onErr(w, r, err)
			return
		}
		if resubmit {
			// drop blobs the replacement no longer references
			for _, old := range prev.Files {
				if !containsKey(keys, old) {
					_ = blobs.Delete(old)
				}
			}
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

func containsKey(keys []string, k string) bool {
	for _, v := range keys {
		if v == k {
			return true
		}
	}
	return false
}

// DownloadSubmissionFileHandler streams one stored submission file.
// The owner may fetch any student's files; a student only their own.
func DownloadSubmissionFileHandler(assignments assignment.Store, blobs storage.BlobStore, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		ac, _ := rbac.AccessFromContext(r.Context())
		a, err := getCourseAssignment(r, assignments)
		if err != nil {
			onErr(w, r, err)
			return
		}
		studentID := chi.URLParam(r, "studentID")
		filename := chi.URLParam(r, "filename")
		if !ac.IsOwner && studentID != p.ID {
			onErr(w, r, apperr.Forbidden("not your submission"))
			return
		}
		sub, ok := a.SubmissionOf(studentID)
		if !ok {
			onErr(w, r, apperr.NotFound("submission not found"))
			return
		}
		key := storage.SubmissionKey(a.ID, studentID, filename)
		if !containsKey(sub.Files, key) {
			onErr(w, r, apperr.NotFound("file not found"))
			return
		}
		rc, err := blobs.Get(key)
		if err != nil {
			onErr(w, r, apperr.NotFound("file not found"))
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	}
}

// MySubmissionHandler returns the caller's submission plus the
// advisory late penalty for its hand-in time.
func MySubmissionHandler(assignments assignment.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		a, err := getCourseAssignment(r, assignments)
		if err != nil {
			onErr(w, r, err)
			return
		}
		sub, ok := a.SubmissionOf(p.ID)
		if !ok {
			onErr(w, r, apperr.NotFound("submission not found"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"submission":   sub,
			"late_penalty": a.LatePenalty(time.Unix(sub.SubmittedAt, 0)),
		})
	}
}

func GradeSubmissionHandler(assignments assignment.Store, events *audit.EventRepo, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		a, err := getCourseAssignment(r, assignments)
		if err != nil {
			onErr(w, r, err)
			return
		}
		var req struct {
			Student  string  `json:"student" validate:"required"`
			Grade    float64 `json:"grade" validate:"min=0,max=100"`
			Feedback string  `json:"feedback" validate:"max=5000"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		sub, err := a.Grade(req.Student, req.Grade, req.Feedback, p.ID, time.Now())
		if err != nil {
			onErr(w, r, err)
			return
		}
		if err := assignments.Put(r.Context(), a); err != nil {
			onErr(w, r, err)
			return
		}
		_ = events.Append(r.Context(), audit.EventSubmissionGraded, a.ID, p.ID,
			map[string]any{"assignment": a.ID, "student": req.Student, "grade": req.Grade})
		writeJSON(w, http.StatusOK, sub)
	}
}
