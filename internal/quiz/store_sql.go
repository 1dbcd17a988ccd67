package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
)

type Store interface {
	Put(ctx context.Context, q Quiz) error
	Get(ctx context.Context, id string) (Quiz, error)
	ListByCourse(ctx context.Context, courseID string) ([]Quiz, error)
	Delete(ctx context.Context, id string) error
}

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Put(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	aj, err := json.Marshal(q.Attempts)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	if q.CreatedAt == 0 {
		q.CreatedAt = now
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id,course_id,title,description,status,time_limit,passing_score,max_attempts,
		   shuffle_questions,shuffle_options,show_results,questions_json,total_points,attempts_json,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
		   status=EXCLUDED.status, time_limit=EXCLUDED.time_limit, passing_score=EXCLUDED.passing_score,
		   max_attempts=EXCLUDED.max_attempts, shuffle_questions=EXCLUDED.shuffle_questions,
		   shuffle_options=EXCLUDED.shuffle_options, show_results=EXCLUDED.show_results,
		   questions_json=EXCLUDED.questions_json, total_points=EXCLUDED.total_points,
		   attempts_json=EXCLUDED.attempts_json, updated_at=EXCLUDED.updated_at`,
		q.ID, q.Course, q.Title, q.Description, q.Status, q.TimeLimit, q.PassingScore, q.MaxAttempts,
		q.ShuffleQuestions, q.ShuffleOptions, q.ShowResults, string(qj), q.TotalPoints, string(aj),
		q.CreatedAt, now)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,course_id,title,description,status,time_limit,passing_score,max_attempts,
		   shuffle_questions,shuffle_options,show_results,questions_json,total_points,attempts_json,created_at,updated_at
		 FROM quizzes WHERE id=$1`, id)
	q, err := scanQuiz(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, apperr.NotFound("quiz not found")
		}
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) ListByCourse(ctx context.Context, courseID string) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,course_id,title,description,status,time_limit,passing_score,max_attempts,
		   shuffle_questions,shuffle_options,show_results,questions_json,total_points,attempts_json,created_at,updated_at
		 FROM quizzes WHERE course_id=$1 ORDER BY created_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("quiz not found")
	}
	return nil
}

func scanQuiz(scan func(...any) error) (Quiz, error) {
	var q Quiz
	var qjson, ajson string
	if err := scan(&q.ID, &q.Course, &q.Title, &q.Description, &q.Status, &q.TimeLimit, &q.PassingScore,
		&q.MaxAttempts, &q.ShuffleQuestions, &q.ShuffleOptions, &q.ShowResults, &qjson, &q.TotalPoints,
		&ajson, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &q.Attempts); err != nil {
		return Quiz{}, err
	}
	return q, nil
}
