package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	api "github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/api/http"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/assignment"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/audit"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/auth"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/course"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/db"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/quiz"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/rbac"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/storage"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/user"
)

type env struct {
	router http.Handler
	users  *user.SQLStore
	tokens *auth.TokenService
}

// newEnv wires the gateway route tree against a throwaway sqlite DB.
func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	users := user.NewSQLStore(dbh)
	courses := course.NewSQLStore(dbh)
	assignments := assignment.NewSQLStore(dbh)
	quizzes := quiz.NewSQLStore(dbh)
	events := audit.NewEventRepo(dbh)
	blobs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}

	tokens := auth.NewTokenService("test-secret-0123456789abcdef", "aithena-lms", time.Hour, 24*time.Hour)
	authSvc := auth.NewService(users, tokens)
	onErr := api.NewErrWriter(zerolog.Nop())
	cookies := api.CookieConfig{}

	r := chi.NewRouter()
	r.Post("/auth/register", api.RegisterHandler(authSvc, cookies, onErr))
	r.Post("/auth/login", api.LoginHandler(authSvc, cookies, onErr))
	r.Post("/auth/refresh", api.RefreshHandler(authSvc, cookies, onErr))
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Authenticate(tokens, users, onErr))
		pr.Get("/auth/me", api.MeHandler(users, onErr))
		pr.Patch("/auth/profile", api.UpdateProfileHandler(users, onErr))
		pr.With(rbac.Require("course:create", onErr)).Post("/courses", api.CreateCourseHandler(courses, onErr))
		pr.With(rbac.Require("course:view", onErr)).Get("/courses", api.ListCoursesHandler(courses, onErr))
		pr.Route("/courses/{courseID}", func(cr chi.Router) {
			cr.Use(rbac.ResolveCourse(courses, onErr))
			cr.With(rbac.Require("course:view", onErr)).Get("/", api.GetCourseHandler(onErr))
			cr.With(rbac.Require("course:update-own", onErr), rbac.RequireOwner(onErr)).
				Put("/", api.UpdateCourseHandler(courses, onErr))
			cr.With(rbac.Require("course:enroll", onErr)).Post("/enroll", api.EnrollHandler(courses, events, onErr))
			cr.With(rbac.Require("assignment:manage-own", onErr), rbac.RequireOwner(onErr)).
				Post("/assignments", api.CreateAssignmentHandler(assignments, onErr))
			cr.With(rbac.Require("assignment:submit", onErr), rbac.RequireEnrolled(onErr)).
				Post("/assignments/{assignmentID}/submit", api.SubmitAssignmentHandler(assignments, blobs, onErr))
			cr.With(rbac.Require("assignment:submit", onErr), rbac.RequireEnrolled(onErr)).
				Get("/assignments/{assignmentID}/my-submission", api.MySubmissionHandler(assignments, onErr))
			cr.With(rbac.Require("assignment:view", onErr), rbac.RequireEnrolled(onErr)).
				Get("/assignments/{assignmentID}/files/{studentID}/{filename}", api.DownloadSubmissionFileHandler(assignments, blobs, onErr))
			cr.With(rbac.Require("assignment:grade-own", onErr), rbac.RequireOwner(onErr)).
				Post("/assignments/{assignmentID}/grade", api.GradeSubmissionHandler(assignments, events, onErr))
			cr.With(rbac.Require("quiz:manage-own", onErr), rbac.RequireOwner(onErr)).
				Post("/quizzes", api.CreateQuizHandler(quizzes, onErr))
			cr.With(rbac.Require("quiz:view", onErr), rbac.RequireEnrolled(onErr)).
				Get("/quizzes/{quizID}", api.GetQuizHandler(quizzes, onErr))
			cr.With(rbac.Require("quiz:manage-own", onErr), rbac.RequireOwner(onErr)).
				Put("/quizzes/{quizID}", api.UpdateQuizHandler(quizzes, onErr))
			cr.With(rbac.Require("attempt:create", onErr), rbac.RequireEnrolled(onErr)).
				Post("/quizzes/{quizID}/attempts", api.StartAttemptHandler(quizzes, onErr))
			cr.With(rbac.Require("attempt:submit", onErr), rbac.RequireEnrolled(onErr)).
				Post("/quizzes/{quizID}/attempts/submit", api.SubmitAttemptHandler(quizzes, events, onErr))
			cr.With(rbac.RequireAny(onErr, "attempt:view-own", "attempt:view-all"), rbac.RequireEnrolled(onErr)).
				Get("/quizzes/{quizID}/attempts", api.ListAttemptsHandler(quizzes, onErr))
		})
	})

	return &env{router: r, users: users, tokens: tokens}
}

// seed creates an active user directly and returns a bearer token.
func (e *env) seed(t *testing.T, id, email string, role user.Role) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u := user.User{ID: id, Name: id, Email: email, PasswordHash: string(hash), Role: role, Status: user.StatusActive}
	if _, err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
	pair, err := e.tokens.IssuePair(auth.Identity{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	return pair.AccessToken
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestAuthEndpoints(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, "POST", "/auth/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d, body %s", rec.Code, rec.Body.String())
	}
	reg := decode[struct {
		User   user.User      `json:"user"`
		Tokens auth.TokenPair `json:"tokens"`
	}](t, rec)
	if reg.User.Role != user.RoleStudent {
		t.Fatalf("self-registration role = %s, want student", reg.User.Role)
	}
	if reg.Tokens.AccessToken == "" || reg.Tokens.RefreshToken == "" {
		t.Fatal("register returned empty token pair")
	}

	// duplicate email
	if rec := e.do(t, "POST", "/auth/register", "", map[string]string{
		"name": "Ada2", "email": "ada@example.com", "password": "password123",
	}); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register = %d, want 409", rec.Code)
	}

	if rec := e.do(t, "POST", "/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d, want 401", rec.Code)
	}

	rec = e.do(t, "POST", "/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d, body %s", rec.Code, rec.Body.String())
	}
	login := decode[struct {
		Tokens auth.TokenPair `json:"tokens"`
	}](t, rec)

	rec = e.do(t, "GET", "/auth/me", login.Tokens.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me = %d, body %s", rec.Code, rec.Body.String())
	}
	if me := decode[user.User](t, rec); me.Email != "ada@example.com" {
		t.Fatalf("me email = %s", me.Email)
	}

	if rec := e.do(t, "GET", "/auth/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without token = %d, want 401", rec.Code)
	}

	rec = e.do(t, "PATCH", "/auth/profile", login.Tokens.AccessToken, map[string]string{"bio": "teaches herself Go"})
	if rec.Code != http.StatusOK {
		t.Fatalf("profile update = %d, body %s", rec.Code, rec.Body.String())
	}
	if u := decode[user.User](t, rec); u.Bio != "teaches herself Go" || u.Name != "Ada" {
		t.Fatalf("profile = %+v", u)
	}

	// refresh rotates the pair; an access token is not a refresh token
	rec = e.do(t, "POST", "/auth/refresh", "", map[string]string{"refresh_token": login.Tokens.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := e.do(t, "POST", "/auth/refresh", "", map[string]string{"refresh_token": login.Tokens.AccessToken}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh with access token = %d, want 401", rec.Code)
	}
}

func TestQuizLifecycleHTTP(t *testing.T) {
	e := newEnv(t)
	teacher := e.seed(t, "teach-1", "teach@example.com", user.RoleTeacher)
	student := e.seed(t, "stu-1", "stu@example.com", user.RoleStudent)

	// students cannot create courses
	if rec := e.do(t, "POST", "/courses", student, map[string]string{"title": "Nope 101"}); rec.Code != http.StatusForbidden {
		t.Fatalf("student course create = %d, want 403", rec.Code)
	}

	rec := e.do(t, "POST", "/courses", teacher, map[string]string{"title": "Algorithms 101"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create course = %d, body %s", rec.Code, rec.Body.String())
	}
	c := decode[course.Course](t, rec)
	base := "/courses/" + c.ID

	// draft is invisible to non-owners
	if rec := e.do(t, "GET", base, student, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("student get draft = %d, want 404", rec.Code)
	}
	if rec := e.do(t, "PUT", base, teacher, map[string]string{"status": "published"}); rec.Code != http.StatusOK {
		t.Fatalf("publish course = %d, body %s", rec.Code, rec.Body.String())
	}

	if rec := e.do(t, "POST", base+"/enroll", student, nil); rec.Code != http.StatusOK {
		t.Fatalf("enroll = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := e.do(t, "POST", base+"/enroll", student, nil); rec.Code != http.StatusConflict {
		t.Fatalf("double enroll = %d, want 409", rec.Code)
	}

	rec = e.do(t, "POST", base+"/quizzes", teacher, map[string]any{
		"title":         "Midterm",
		"passing_score": 50,
		"questions": []map[string]any{
			{"text": "pick b", "options": []string{"a", "b", "c", "d"}, "correct_answer": 1, "points": 2},
			{"text": "pick a", "options": []string{"a", "b"}, "correct_answer": 0, "points": 3},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create quiz = %d, body %s", rec.Code, rec.Body.String())
	}
	q := decode[quiz.Quiz](t, rec)
	if q.TotalPoints != 5 || q.Status != quiz.StatusDraft {
		t.Fatalf("quiz = total %v status %s", q.TotalPoints, q.Status)
	}
	quizPath := base + "/quizzes/" + q.ID

	// attempts need a published quiz
	if rec := e.do(t, "POST", quizPath+"/attempts", student, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("attempt on draft = %d, want 400", rec.Code)
	}
	if rec := e.do(t, "PUT", quizPath, teacher, map[string]string{"status": "published"}); rec.Code != http.StatusOK {
		t.Fatalf("publish quiz = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, "POST", quizPath+"/attempts", student, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start attempt = %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "correct_answer") {
		t.Fatal("attempt view leaked correct answers")
	}
	started := decode[struct {
		Questions []quiz.ViewQuestion `json:"questions"`
	}](t, rec)
	if len(started.Questions) != 2 {
		t.Fatalf("attempt questions = %d, want 2", len(started.Questions))
	}

	rec = e.do(t, "POST", quizPath+"/attempts/submit", student, map[string]any{"answers": []int{1, 1}, "time_spent": 120})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit attempt = %d, body %s", rec.Code, rec.Body.String())
	}
	att := decode[quiz.Attempt](t, rec)
	if att.Score != 2 || att.Percentage != 40.0 || att.Passed {
		t.Fatalf("attempt 1 = score %v pct %v passed %v", att.Score, att.Percentage, att.Passed)
	}
	if rec := e.do(t, "POST", quizPath+"/attempts/submit", student, map[string]any{"answers": []int{1, 1}}); rec.Code != http.StatusConflict {
		t.Fatalf("double submit = %d, want 409", rec.Code)
	}

	// second try, full marks
	if rec := e.do(t, "POST", quizPath+"/attempts", student, nil); rec.Code != http.StatusCreated {
		t.Fatalf("start attempt 2 = %d", rec.Code)
	}
	rec = e.do(t, "POST", quizPath+"/attempts/submit", student, map[string]any{"answers": []int{1, 0}, "time_spent": 90})
	att = decode[quiz.Attempt](t, rec)
	if att.Score != 5 || att.Percentage != 100.0 || !att.Passed {
		t.Fatalf("attempt 2 = score %v pct %v passed %v", att.Score, att.Percentage, att.Passed)
	}

	// owner stats across both attempts
	rec = e.do(t, "GET", quizPath+"/attempts", teacher, nil)
	stats := decode[struct {
		AttemptCount int     `json:"attempt_count"`
		AverageScore float64 `json:"average_score"`
		PassRate     float64 `json:"pass_rate"`
	}](t, rec)
	if stats.AttemptCount != 2 || stats.AverageScore != 70.0 || stats.PassRate != 50.0 {
		t.Fatalf("stats = %+v", stats)
	}

	// student view hides the question bank
	rec = e.do(t, "GET", quizPath, student, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("student get quiz = %d", rec.Code)
	}
	sv := decode[quiz.StudentView](t, rec)
	if sv.QuestionCount != 2 || len(sv.Attempts) != 2 {
		t.Fatalf("student view = %+v", sv)
	}
	if strings.Contains(rec.Body.String(), "correct_answer") {
		t.Fatal("student view leaked correct answers")
	}
}

func TestAssignmentSubmissionHTTP(t *testing.T) {
	e := newEnv(t)
	teacher := e.seed(t, "teach-2", "teach2@example.com", user.RoleTeacher)
	student := e.seed(t, "stu-2", "stu2@example.com", user.RoleStudent)
	outsider := e.seed(t, "stu-3", "stu3@example.com", user.RoleStudent)

	rec := e.do(t, "POST", "/courses", teacher, map[string]string{"title": "Essays"})
	c := decode[course.Course](t, rec)
	base := "/courses/" + c.ID
	e.do(t, "PUT", base, teacher, map[string]string{"status": "published"})
	e.do(t, "POST", base+"/enroll", student, nil)

	// deadline 25h in the past, late allowed at 10%/day
	rec = e.do(t, "POST", base+"/assignments", teacher, map[string]any{
		"title":                 "Essay 1",
		"deadline":              time.Now().Add(-25 * time.Hour).Unix(),
		"max_points":            100,
		"allow_late_submission": true,
		"late_penalty":          10,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create assignment = %d, body %s", rec.Code, rec.Body.String())
	}
	a := decode[assignment.Assignment](t, rec)
	submitPath := base + "/assignments/" + a.ID + "/submit"

	submitFile := func(token, name, content string) *httptest.ResponseRecorder {
		t.Helper()
		var form bytes.Buffer
		mw := multipart.NewWriter(&form)
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		fw.Write([]byte(content))
		mw.Close()
		req := httptest.NewRequest("POST", submitPath, &form)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		e.router.ServeHTTP(rr, req)
		return rr
	}

	rr := submitFile(student, "essay.pdf", "the essay body")
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit = %d, body %s", rr.Code, rr.Body.String())
	}
	sub := decode[assignment.Submission](t, rr)
	if sub.Status != assignment.SubmissionLate || len(sub.Files) != 1 {
		t.Fatalf("submission = %+v", sub)
	}

	// only enrolled students may submit
	req2 := httptest.NewRequest("POST", submitPath, strings.NewReader(""))
	req2.Header.Set("Authorization", "Bearer "+outsider)
	rr2 := httptest.NewRecorder()
	e.router.ServeHTTP(rr2, req2)
	if rr2.Code != http.StatusForbidden {
		t.Fatalf("outsider submit = %d, want 403", rr2.Code)
	}

	// stored files are retrievable by the submitter and the owner
	filePath := base + "/assignments/" + a.ID + "/files/stu-2/essay.pdf"
	rec = e.do(t, "GET", filePath, student, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "the essay body" {
		t.Fatalf("download = %d %q", rec.Code, rec.Body.String())
	}
	if rec := e.do(t, "GET", filePath, teacher, nil); rec.Code != http.StatusOK {
		t.Fatalf("owner download = %d", rec.Code)
	}
	// an enrolled classmate may not read someone else's hand-in
	e.do(t, "POST", base+"/enroll", outsider, nil)
	if rec := e.do(t, "GET", filePath, outsider, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("classmate download = %d, want 403", rec.Code)
	}

	// resubmission replaces the hand-in and drops the stale blob
	if rr := submitFile(student, "essay-v2.pdf", "the better essay"); rr.Code != http.StatusCreated {
		t.Fatalf("resubmit = %d, body %s", rr.Code, rr.Body.String())
	}
	if rec := e.do(t, "GET", filePath, student, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("stale file = %d, want 404", rec.Code)
	}
	rec = e.do(t, "GET", base+"/assignments/"+a.ID+"/files/stu-2/essay-v2.pdf", student, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "the better essay" {
		t.Fatalf("replacement download = %d %q", rec.Code, rec.Body.String())
	}

	// two days late at 10%/day
	rec = e.do(t, "GET", base+"/assignments/"+a.ID+"/my-submission", student, nil)
	mine := decode[struct {
		Submission  assignment.Submission `json:"submission"`
		LatePenalty float64               `json:"late_penalty"`
	}](t, rec)
	if mine.LatePenalty != 20.0 {
		t.Fatalf("late penalty = %v, want 20", mine.LatePenalty)
	}

	rec = e.do(t, "POST", base+"/assignments/"+a.ID+"/grade", teacher, map[string]any{
		"student": "stu-2", "grade": 88.5, "feedback": "solid",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("grade = %d, body %s", rec.Code, rec.Body.String())
	}
	graded := decode[assignment.Submission](t, rec)
	if graded.Status != assignment.SubmissionGraded || graded.Grade == nil || *graded.Grade != 88.5 {
		t.Fatalf("graded submission = %+v", graded)
	}
}
