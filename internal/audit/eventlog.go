// Package audit appends domain events to an append-only log:
// enrollments, attempt submissions, grading actions. Admin-only read.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	EventStudentEnrolled  = "StudentEnrolled"
	EventAttemptSubmitted = "AttemptSubmitted"
	EventSubmissionGraded = "SubmissionGraded"
)

type Event struct {
	Offset    int64  `json:"offset"`
	Type      string `json:"type"`
	Key       string `json:"key"`   // natural key: course/quiz/assignment id
	Actor     string `json:"actor"` // principal id
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, typ, key, actor string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, actor, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		typ, key, actor, string(payload), time.Now().Unix())
	return err
}

func (r *EventRepo) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT "offset", typ, key, actor, data, created_at FROM event_log ORDER BY "offset" DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.Actor, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
