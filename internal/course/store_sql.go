package course

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
)

type Store interface {
	PutCourse(ctx context.Context, c Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context, f CourseFilter) ([]Course, error)
	DeleteCourse(ctx context.Context, id string) error

	PutLecture(ctx context.Context, l Lecture) error
	GetLecture(ctx context.Context, id string) (Lecture, error)
	ListLectures(ctx context.Context, courseID string) ([]Lecture, error)
	DeleteLecture(ctx context.Context, id string) error
}

type CourseFilter struct {
	Teacher string
	Student string // enrolled member
	Status  Status
	Query   string // title substring
	Limit   int
	Offset  int
}

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutCourse(ctx context.Context, c Course) error {
	ej, err := json.Marshal(c.Enrollments)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	if c.CreatedAt == 0 {
		c.CreatedAt = now
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO courses (id,title,description,teacher_id,status,enrollments_json,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
		   status=EXCLUDED.status, enrollments_json=EXCLUDED.enrollments_json, updated_at=EXCLUDED.updated_at`,
		c.ID, c.Title, c.Description, c.Teacher, c.Status, string(ej), c.CreatedAt, now)
	return err
}

func (s *SQLStore) GetCourse(ctx context.Context, id string) (Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,description,teacher_id,status,enrollments_json,created_at,updated_at FROM courses WHERE id=$1`, id)
	var c Course
	var ejson string
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Teacher, &c.Status, &ejson, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, apperr.NotFound("course not found")
		}
		return Course{}, err
	}
	if err := json.Unmarshal([]byte(ejson), &c.Enrollments); err != nil {
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) ListCourses(ctx context.Context, f CourseFilter) ([]Course, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	where := []string{}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}
	if f.Teacher != "" {
		where = append(where, "teacher_id="+arg(f.Teacher))
	}
	if f.Status != "" {
		where = append(where, "status="+arg(f.Status))
	}
	if f.Query != "" {
		where = append(where, "title LIKE "+arg("%"+f.Query+"%"))
	}
	if f.Student != "" {
		// membership lives in the JSON column; match on the student key
		where = append(where, "enrollments_json LIKE "+arg(`%"student":"`+f.Student+`"%`))
	}
	q := `SELECT id,title,description,teacher_id,status,enrollments_json,created_at,updated_at FROM courses`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC LIMIT " + arg(limit) + " OFFSET " + arg(f.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Course{}
	for rows.Next() {
		var c Course
		var ejson string
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Teacher, &c.Status, &ejson, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ejson), &c.Enrollments); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCourse removes the course row; dependent lectures, assignments
// and quizzes go with it via FK cascade. Enrollment references live
// inside the row itself, so no user cleanup is needed.
func (s *SQLStore) DeleteCourse(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("course not found")
	}
	return nil
}

func (s *SQLStore) PutLecture(ctx context.Context, l Lecture) error {
	vj, err := json.Marshal(l.Views)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	if l.CreatedAt == 0 {
		l.CreatedAt = now
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lectures (id,course_id,title,content,ord,status,views_json,view_count,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, content=EXCLUDED.content, ord=EXCLUDED.ord,
		   status=EXCLUDED.status, views_json=EXCLUDED.views_json, view_count=EXCLUDED.view_count, updated_at=EXCLUDED.updated_at`,
		l.ID, l.Course, l.Title, l.Content, l.Order, l.Status, string(vj), l.ViewCount, l.CreatedAt, now)
	if err != nil && isUniqueViolation(err) {
		return apperr.Conflict("a lecture with this order already exists in the course")
	}
	return err
}

func (s *SQLStore) GetLecture(ctx context.Context, id string) (Lecture, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,course_id,title,content,ord,status,views_json,view_count,created_at,updated_at FROM lectures WHERE id=$1`, id)
	l, err := scanLecture(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lecture{}, apperr.NotFound("lecture not found")
		}
		return Lecture{}, err
	}
	return l, nil
}

func (s *SQLStore) ListLectures(ctx context.Context, courseID string) ([]Lecture, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,course_id,title,content,ord,status,views_json,view_count,created_at,updated_at
		 FROM lectures WHERE course_id=$1 ORDER BY ord`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Lecture{}
	for rows.Next() {
		l, err := scanLecture(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteLecture(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lectures WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("lecture not found")
	}
	return nil
}

func scanLecture(scan func(...any) error) (Lecture, error) {
	var l Lecture
	var vjson string
	if err := scan(&l.ID, &l.Course, &l.Title, &l.Content, &l.Order, &l.Status, &vjson, &l.ViewCount, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return Lecture{}, err
	}
	if err := json.Unmarshal([]byte(vjson), &l.Views); err != nil {
		return Lecture{}, err
	}
	return l, nil
}

func placeholder(n int) string {
	// $n works for pgx and is accepted by modernc sqlite
	return "$" + strconv.Itoa(n)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
