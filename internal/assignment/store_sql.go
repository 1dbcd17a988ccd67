package assignment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
)

type Store interface {
	Put(ctx context.Context, a Assignment) error
	Get(ctx context.Context, id string) (Assignment, error)
	ListByCourse(ctx context.Context, courseID string) ([]Assignment, error)
	Delete(ctx context.Context, id string) error
}

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Put(ctx context.Context, a Assignment) error {
	sj, err := json.Marshal(a.Submissions)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	if a.CreatedAt == 0 {
		a.CreatedAt = now
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assignments (id,course_id,title,description,deadline,max_points,status,allow_late,late_penalty,submissions_json,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
		   deadline=EXCLUDED.deadline, max_points=EXCLUDED.max_points, status=EXCLUDED.status,
		   allow_late=EXCLUDED.allow_late, late_penalty=EXCLUDED.late_penalty,
		   submissions_json=EXCLUDED.submissions_json, updated_at=EXCLUDED.updated_at`,
		a.ID, a.Course, a.Title, a.Description, a.Deadline, a.MaxPoints, a.Status,
		a.AllowLateSubmission, a.LatePenaltyPercent, string(sj), a.CreatedAt, now)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,course_id,title,description,deadline,max_points,status,allow_late,late_penalty,submissions_json,created_at,updated_at
		 FROM assignments WHERE id=$1`, id)
	a, err := scanAssignment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assignment{}, apperr.NotFound("assignment not found")
		}
		return Assignment{}, err
	}
	return a, nil
}

func (s *SQLStore) ListByCourse(ctx context.Context, courseID string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,course_id,title,description,deadline,max_points,status,allow_late,late_penalty,submissions_json,created_at,updated_at
		 FROM assignments WHERE course_id=$1 ORDER BY deadline`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assignments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("assignment not found")
	}
	return nil
}

func scanAssignment(scan func(...any) error) (Assignment, error) {
	var a Assignment
	var sjson string
	if err := scan(&a.ID, &a.Course, &a.Title, &a.Description, &a.Deadline, &a.MaxPoints, &a.Status,
		&a.AllowLateSubmission, &a.LatePenaltyPercent, &sjson, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Assignment{}, err
	}
	if err := json.Unmarshal([]byte(sjson), &a.Submissions); err != nil {
		return Assignment{}, err
	}
	return a, nil
}
