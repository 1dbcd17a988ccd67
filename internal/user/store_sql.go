package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
)

type Store interface {
	Create(ctx context.Context, u User) (User, error)
	Get(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, u User) (User, error)
	List(ctx context.Context, role Role, limit, offset int) ([]User, error)
	Delete(ctx context.Context, id string) error
}

type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, u User) (User, error) {
	now := time.Now().Unix()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id,name,email,password_hash,role,status,bio,created_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Status, u.Bio, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, apperr.Conflict("email already registered")
		}
		return User{}, err
	}
	return u, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (User, error) {
	return s.getWhere(ctx, `id=$1`, id)
}

func (s *SQLStore) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.getWhere(ctx, `email=$1`, email)
}

func (s *SQLStore) getWhere(ctx context.Context, where string, arg any) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,email,password_hash,role,status,bio,created_at,updated_at FROM users WHERE `+where, arg)
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.Bio, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, apperr.NotFound("user not found")
		}
		return User{}, err
	}
	return u, nil
}

func (s *SQLStore) Update(ctx context.Context, u User) (User, error) {
	u.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name=$1, email=$2, password_hash=$3, role=$4, status=$5, bio=$6, updated_at=$7 WHERE id=$8`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Status, u.Bio, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, apperr.Conflict("email already registered")
		}
		return User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return User{}, apperr.NotFound("user not found")
	}
	return u, nil
}

func (s *SQLStore) List(ctx context.Context, role Role, limit, offset int) ([]User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var (
		rows *sql.Rows
		err  error
	)
	if role == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id,name,email,password_hash,role,status,bio,created_at,updated_at FROM users ORDER BY name LIMIT $1 OFFSET $2`,
			limit, offset)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id,name,email,password_hash,role,status,bio,created_at,updated_at FROM users WHERE role=$1 ORDER BY name LIMIT $2 OFFSET $3`,
			role, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.Bio, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
