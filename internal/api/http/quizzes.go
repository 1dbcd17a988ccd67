package http

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/audit"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/auth"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/quiz"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/rbac"
)

type questionPayload struct {
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,max=6,dive,required"`
	CorrectAnswer int      `json:"correct_answer" validate:"min=0"`
	Points        float64  `json:"points" validate:"min=1,max=10"`
	Explanation   string   `json:"explanation"`
}

func toQuestions(in []questionPayload) []quiz.Question {
	out := make([]quiz.Question, len(in))
	for i, q := range in {
		out[i] = quiz.Question{
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
			Explanation:   q.Explanation,
		}
	}
	return out
}

func CreateQuizHandler(quizzes quiz.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac, _ := rbac.AccessFromContext(r.Context())
		var req struct {
			Title            string            `json:"title" validate:"required,min=3,max=200"`
			Description      string            `json:"description" validate:"max=5000"`
			TimeLimit        int               `json:"time_limit" validate:"min=0"`
			PassingScore     float64           `json:"passing_score" validate:"min=0,max=100"`
			MaxAttempts      int               `json:"max_attempts" validate:"min=0"`
			ShuffleQuestions bool              `json:"shuffle_questions"`
			ShuffleOptions   bool              `json:"shuffle_options"`
			ShowResults      *bool             `json:"show_results"`
			Questions        []questionPayload `json:"questions" validate:"required,min=1,dive"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		q := quiz.Quiz{
			ID:               uuid.NewString(),
			Course:           ac.Course.ID,
			Title:            req.Title,
			Description:      req.Description,
			Status:           quiz.StatusDraft,
			TimeLimit:        req.TimeLimit,
			PassingScore:     req.PassingScore,
			MaxAttempts:      req.MaxAttempts,
			ShuffleQuestions: req.ShuffleQuestions,
			ShuffleOptions:   req.ShuffleOptions,
			ShowResults:      true,
		}
		if req.ShowResults != nil {
			q.ShowResults = *req.ShowResults
		}
		if err := q.SetQuestions(toQuestions(req.Questions)); err != nil {
			onErr(w, r, err)
			return
		}
		if err := quizzes.Put(r.Context(), q); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

func getCourseQuiz(r *http.Request, quizzes quiz.Store) (quiz.Quiz, rbac.Access, error) {
	ac, ok := rbac.AccessFromContext(r.Context())
	if !ok {
		return quiz.Quiz{}, rbac.Access{}, apperr.NotFound("quiz not found")
	}
	q, err := quizzes.Get(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		return quiz.Quiz{}, ac, err
	}
	if q.Course != ac.Course.ID {
		return quiz.Quiz{}, ac, apperr.NotFound("quiz not found")
	}
	return q, ac, nil
}

func ListQuizzesHandler(quizzes quiz.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		ac, _ := rbac.AccessFromContext(r.Context())
		out, err := quizzes.ListByCourse(r.Context(), ac.Course.ID)
		if err != nil {
			onErr(w, r, err)
			return
		}
		if ac.IsOwner {
			writeJSON(w, http.StatusOK, out)
			return
		}
		views := make([]quiz.StudentView, 0, len(out))
		for i := range out {
			if out[i].Status != quiz.StatusPublished {
				continue
			}
			views = append(views, out[i].ViewFor(p.ID))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// GetQuizHandler serves the full record to the owner and the redacted
// view (no question bank, own attempts only) to students.
func GetQuizHandler(quizzes quiz.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		q, ac, err := getCourseQuiz(r, quizzes)
		if err != nil {
			onErr(w, r, err)
			return
		}
		if ac.IsOwner {
			writeJSON(w, http.StatusOK, q)
			return
		}
		if q.Status != quiz.StatusPublished {
			onErr(w, r, apperr.NotFound("quiz not found"))
			return
		}
		writeJSON(w, http.StatusOK, q.ViewFor(p.ID))
	}
}

func UpdateQuizHandler(quizzes quiz.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, _, err := getCourseQuiz(r, quizzes)
		if err != nil {
			onErr(w, r, err)
			return
		}
		var req struct {
			Title            *string           `json:"title" validate:"omitempty,min=3,max=200"`
			Description      *string           `json:"description" validate:"omitempty,max=5000"`
			Status           *quiz.Status      `json:"status" validate:"omitempty,oneof=draft published archived"`
			TimeLimit        *int              `json:"time_limit" validate:"omitempty,min=0"`
			PassingScore     *float64          `json:"passing_score" validate:"omitempty,min=0,max=100"`
			MaxAttempts      *int              `json:"max_attempts" validate:"omitempty,min=0"`
			ShuffleQuestions *bool             `json:"shuffle_questions"`
			ShuffleOptions   *bool             `json:"shuffle_options"`
			ShowResults      *bool             `json:"show_results"`
			Questions        []questionPayload `json:"questions" validate:"omitempty,min=1,dive"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		if req.Title != nil {
			q.Title = *req.Title
		}
		if req.Description != nil {
			q.Description = *req.Description
		}
		if req.Status != nil {
			q.Status = *req.Status
		}
		if req.TimeLimit != nil {
			q.TimeLimit = *req.TimeLimit
		}
		if req.PassingScore != nil {
			q.PassingScore = *req.PassingScore
		}
		if req.MaxAttempts != nil {
			q.MaxAttempts = *req.MaxAttempts
		}
		if req.ShuffleQuestions != nil {
			q.ShuffleQuestions = *req.ShuffleQuestions
		}
		if req.ShuffleOptions != nil {
			q.ShuffleOptions = *req.ShuffleOptions
		}
		if req.ShowResults != nil {
			q.ShowResults = *req.ShowResults
		}
		if req.Questions != nil {
			// full replacement revalidates and recomputes total points
			if err := q.SetQuestions(toQuestions(req.Questions)); err != nil {
				onErr(w, r, err)
				return
			}
		}
		if err := quizzes.Put(r.Context(), q); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func DeleteQuizHandler(quizzes quiz.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, _, err := getCourseQuiz(r, quizzes)
		if err != nil {
			onErr(w, r, err)
			return
		}
		if err := quizzes.Delete(r.Context(), q.ID); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// StartAttemptHandler opens an attempt and returns it with the
// (possibly shuffled) answer-free question view.
func StartAttemptHandler(quizzes quiz.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		q, _, err := getCourseQuiz(r, quizzes)
		if err != nil {
			onErr(w, r, err)
			return
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		attempt, view, err := q.StartAttempt(p.ID, time.Now(), rng)
		if err != nil {
			onErr(w, r, err)
			return
		}
		if err := quizzes.Put(r.Context(), q); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"attempt":    attempt,
			"questions":  view,
			"time_limit": q.TimeLimit,
		})
	}
}

func SubmitAttemptHandler(quizzes quiz.Store, events *audit.EventRepo, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		q, _, err := getCourseQuiz(r, quizzes)
		if err != nil {
			onErr(w, r, err)
			return
		}
		var req struct {
			Answers   []int `json:"answers" validate:"required"`
			TimeSpent int   `json:"time_spent" validate:"min=0"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		attempt, err := q.SubmitAttempt(p.ID, req.Answers, req.TimeSpent, time.Now())
		if err != nil {
			onErr(w, r, err)
			return
		}
		if err := quizzes.Put(r.Context(), q); err != nil {
			onErr(w, r, err)
			return
		}
		_ = events.Append(r.Context(), audit.EventAttemptSubmitted, q.ID, p.ID, map[string]any{
			"quiz": q.ID, "attempt": attempt.ID, "score": attempt.Score, "passed": attempt.Passed,
		})
		if !q.ShowResults {
			attempt.Answers = nil
		}
		writeJSON(w, http.StatusOK, attempt)
	}
}

// ListAttemptsHandler: owners see every attempt, students their own.
func ListAttemptsHandler(quizzes quiz.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.PrincipalFromContext(r.Context())
		q, ac, err := getCourseQuiz(r, quizzes)
		if err != nil {
			onErr(w, r, err)
			return
		}
		if ac.IsOwner {
			writeJSON(w, http.StatusOK, map[string]any{
				"attempts":      q.Attempts,
				"attempt_count": q.AttemptCount(),
				"average_score": q.AverageScore(),
				"pass_rate":     q.PassRate(),
			})
			return
		}
		writeJSON(w, http.StatusOK, q.ViewFor(p.ID).Attempts)
	}
}
