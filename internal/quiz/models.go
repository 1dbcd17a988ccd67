package quiz

import (
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/grading"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`        // 2..6
	CorrectAnswer int      `json:"correct_answer"` // index into Options
	Points        float64  `json:"points"`         // 1..10
	Explanation   string   `json:"explanation,omitempty"`
}

// Attempt is one timed instance of a student taking the quiz. It is
// open while CompletedAt is nil.
type Attempt struct {
	ID            string           `json:"id"`
	Student       string           `json:"student"`
	AttemptNumber int              `json:"attempt_number"`
	StartedAt     int64            `json:"started_at"`
	CompletedAt   *int64           `json:"completed_at,omitempty"`
	Answers       []grading.Answer `json:"answers,omitempty"`
	Score         float64          `json:"score"`
	Percentage    float64          `json:"percentage"`
	Passed        bool             `json:"passed"`
	TimeSpent     int              `json:"time_spent"` // seconds
}

func (a *Attempt) Completed() bool { return a.CompletedAt != nil }

type Quiz struct {
	ID          string `json:"id"`
	Course      string `json:"course"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`

	TimeLimit        int     `json:"time_limit"` // minutes, 0 = unlimited
	PassingScore     float64 `json:"passing_score"`
	MaxAttempts      int     `json:"max_attempts"`
	ShuffleQuestions bool    `json:"shuffle_questions"`
	ShuffleOptions   bool    `json:"shuffle_options"`
	ShowResults      bool    `json:"show_results"`

	Questions   []Question `json:"questions,omitempty"`
	TotalPoints float64    `json:"total_points"` // derived from Questions
	Attempts    []Attempt  `json:"attempts,omitempty"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// AttemptsOf counts the student's attempts, open or completed.
func (q *Quiz) AttemptsOf(student string) int {
	n := 0
	for i := range q.Attempts {
		if q.Attempts[i].Student == student {
			n++
		}
	}
	return n
}

// latestAttemptIndex finds the student's most recently created attempt.
// Attempts append in creation order, so scan from the back.
func (q *Quiz) latestAttemptIndex(student string) int {
	for i := len(q.Attempts) - 1; i >= 0; i-- {
		if q.Attempts[i].Student == student {
			return i
		}
	}
	return -1
}
