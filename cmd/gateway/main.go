package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/api/http"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/assignment"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/audit"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/auth"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/config"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/course"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/db"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/logger"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/quiz"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/rbac"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/storage"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Pretty)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DB.Driver), cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}

	users := user.NewSQLStore(dbh)
	courses := course.NewSQLStore(dbh)
	assignments := assignment.NewSQLStore(dbh)
	quizzes := quiz.NewSQLStore(dbh)
	events := audit.NewEventRepo(dbh)

	blobs, err := storage.NewFSStore(cfg.Blob.BasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("blob store")
	}

	tokens := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	authSvc := auth.NewService(users, tokens)

	onErr := api.NewErrWriter(log)
	cookies := api.CookieConfig{Secure: cfg.Auth.SecureCookies}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public auth surface
	r.Post("/auth/register", api.RegisterHandler(authSvc, cookies, onErr))
	r.Post("/auth/login", api.LoginHandler(authSvc, cookies, onErr))
	r.Post("/auth/refresh", api.RefreshHandler(authSvc, cookies, onErr))
	r.Post("/auth/logout", api.LogoutHandler(cookies))

	// Protected API (JWT → principal in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Authenticate(tokens, users, onErr))

		pr.Get("/auth/me", api.MeHandler(users, onErr))
		pr.Patch("/auth/profile", api.UpdateProfileHandler(users, onErr))
		pr.With(rbac.Require("user:change_password", onErr)).
			Post("/auth/change-password", api.ChangePasswordHandler(authSvc, onErr))

		// Users (admin)
		pr.With(rbac.Require("users:list", onErr)).Get("/users", api.ListUsersHandler(users, onErr))
		pr.With(rbac.Require("users:create", onErr)).Post("/users", api.CreateUserHandler(users, onErr))
		pr.Patch("/users/{userID}/status", api.UpdateUserStatusHandler(users, onErr))
		pr.With(rbac.Require("users:delete", onErr)).Delete("/users/{userID}", api.DeleteUserHandler(users, courses, onErr))

		// Audit log (admin)
		pr.With(rbac.Require("audit:view", onErr)).Get("/events", api.ListEventsHandler(events, onErr))

		// Courses
		pr.With(rbac.Require("course:create", onErr)).Post("/courses", api.CreateCourseHandler(courses, onErr))
		pr.With(rbac.Require("course:view", onErr)).Get("/courses", api.ListCoursesHandler(courses, onErr))

		pr.Route("/courses/{courseID}", func(cr chi.Router) {
			cr.Use(rbac.ResolveCourse(courses, onErr))

			cr.With(rbac.Require("course:view", onErr)).Get("/", api.GetCourseHandler(onErr))
			cr.With(rbac.Require("course:update-own", onErr), rbac.RequireOwner(onErr)).
				Put("/", api.UpdateCourseHandler(courses, onErr))
			cr.With(rbac.Require("course:delete-own", onErr), rbac.RequireOwner(onErr)).
				Delete("/", api.DeleteCourseHandler(courses, onErr))

			cr.With(rbac.Require("course:enroll", onErr)).Post("/enroll", api.EnrollHandler(courses, events, onErr))
			cr.With(rbac.Require("course:enroll", onErr)).Post("/unenroll", api.UnenrollHandler(courses, onErr))
			cr.With(rbac.Require("course:progress", onErr), rbac.RequireEnrolled(onErr)).
				Put("/progress", api.ProgressHandler(courses, onErr))

			// Lectures
			cr.With(rbac.Require("lecture:manage-own", onErr), rbac.RequireOwner(onErr)).
				Post("/lectures", api.CreateLectureHandler(courses, onErr))
			cr.With(rbac.Require("lecture:view", onErr), rbac.RequireEnrolled(onErr)).
				Get("/lectures", api.ListLecturesHandler(courses, onErr))
			cr.With(rbac.Require("lecture:view", onErr), rbac.RequireEnrolled(onErr)).
				Get("/lectures/{lectureID}", api.GetLectureHandler(courses, onErr))
			cr.With(rbac.Require("lecture:manage-own", onErr), rbac.RequireOwner(onErr)).
				Put("/lectures/{lectureID}", api.UpdateLectureHandler(courses, onErr))
			cr.With(rbac.Require("lecture:manage-own", onErr), rbac.RequireOwner(onErr)).
				Delete("/lectures/{lectureID}", api.DeleteLectureHandler(courses, onErr))

			// Assignments
			cr.With(rbac.Require("assignment:manage-own", onErr), rbac.RequireOwner(onErr)).
				Post("/assignments", api.CreateAssignmentHandler(assignments, onErr))
			cr.With(rbac.Require("assignment:view", onErr), rbac.RequireEnrolled(onErr)).
				Get("/assignments", api.ListAssignmentsHandler(assignments, onErr))
			cr.With(rbac.Require("assignment:view", onErr), rbac.RequireEnrolled(onErr)).
				Get("/assignments/{assignmentID}", api.GetAssignmentHandler(assignments, onErr))
			cr.With(rbac.Require("assignment:manage-own", onErr), rbac.RequireOwner(onErr)).
				Put("/assignments/{assignmentID}", api.UpdateAssignmentHandler(assignments, onErr))
			cr.With(rbac.Require("assignment:manage-own", onErr), rbac.RequireOwner(onErr)).
				Delete("/assignments/{assignmentID}", api.DeleteAssignmentHandler(assignments, onErr))
			cr.With(rbac.Require("assignment:submit", onErr), rbac.RequireEnrolled(onErr)).
				Post("/assignments/{assignmentID}/submit", api.SubmitAssignmentHandler(assignments, blobs, onErr))
			cr.With(rbac.Require("assignment:submit", onErr), rbac.RequireEnrolled(onErr)).
				Get("/assignments/{assignmentID}/my-submission", api.MySubmissionHandler(assignments, onErr))
			cr.With(rbac.Require("assignment:view", onErr), rbac.RequireEnrolled(onErr)).
				Get("/assignments/{assignmentID}/files/{studentID}/{filename}", api.DownloadSubmissionFileHandler(assignments, blobs, onErr))
			cr.With(rbac.Require("assignment:grade-own", onErr), rbac.RequireOwner(onErr)).
				Post("/assignments/{assignmentID}/grade", api.GradeSubmissionHandler(assignments, events, onErr))

			// Quizzes
			cr.With(rbac.Require("quiz:manage-own", onErr), rbac.RequireOwner(onErr)).
				Post("/quizzes", api.CreateQuizHandler(quizzes, onErr))
			cr.With(rbac.Require("quiz:view", onErr), rbac.RequireEnrolled(onErr)).
				Get("/quizzes", api.ListQuizzesHandler(quizzes, onErr))
			cr.With(rbac.Require("quiz:view", onErr), rbac.RequireEnrolled(onErr)).
				Get("/quizzes/{quizID}", api.GetQuizHandler(quizzes, onErr))
			cr.With(rbac.Require("quiz:manage-own", onErr), rbac.RequireOwner(onErr)).
				Put("/quizzes/{quizID}", api.UpdateQuizHandler(quizzes, onErr))
			cr.With(rbac.Require("quiz:manage-own", onErr), rbac.RequireOwner(onErr)).
				Delete("/quizzes/{quizID}", api.DeleteQuizHandler(quizzes, onErr))
			cr.With(rbac.Require("attempt:create", onErr), rbac.RequireEnrolled(onErr)).
				Post("/quizzes/{quizID}/attempts", api.StartAttemptHandler(quizzes, onErr))
			cr.With(rbac.Require("attempt:submit", onErr), rbac.RequireEnrolled(onErr)).
				Post("/quizzes/{quizID}/attempts/submit", api.SubmitAttemptHandler(quizzes, events, onErr))
			cr.With(rbac.RequireAny(onErr, "attempt:view-own", "attempt:view-all"), rbac.RequireEnrolled(onErr)).
				Get("/quizzes/{quizID}/attempts", api.ListAttemptsHandler(quizzes, onErr))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	srv := &http.Server{Addr: cfg.Server.Address, Handler: r}

	go func() {
		log.Info().Str("addr", cfg.Server.Address).Msg("gateway listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutCtx, shutCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
