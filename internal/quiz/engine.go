package quiz

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/grading"
)

// ValidateQuestions enforces the question invariants: 2..6 options,
// correct index inside the option range, points in [1,10].
func ValidateQuestions(qs []Question) error {
	if len(qs) == 0 {
		return apperr.Validation("at least one question required")
	}
	for i, q := range qs {
		field := fmt.Sprintf("questions[%d]", i)
		if q.Text == "" {
			return apperr.Validation("question text required",
				apperr.FieldError{Field: field + ".text", Detail: "required"})
		}
		if len(q.Options) < 2 || len(q.Options) > 6 {
			return apperr.Validation("question must have 2 to 6 options",
				apperr.FieldError{Field: field + ".options", Detail: "must have 2 to 6 entries"})
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return apperr.Validation("correct answer must index an option",
				apperr.FieldError{Field: field + ".correct_answer", Detail: "out of range"})
		}
		if q.Points < 1 || q.Points > 10 {
			return apperr.Validation("question points must be between 1 and 10",
				apperr.FieldError{Field: field + ".points", Detail: "must be in [1,10]"})
		}
	}
	return nil
}

// SetQuestions replaces the question bank. TotalPoints is derived and
// recomputed here and only here.
func (q *Quiz) SetQuestions(qs []Question) error {
	if err := ValidateQuestions(qs); err != nil {
		return err
	}
	q.Questions = qs
	total := 0.0
	for i := range qs {
		total += qs[i].Points
	}
	q.TotalPoints = total
	return nil
}

// ViewOption carries the canonical option index alongside the text so a
// shuffled presentation still submits canonical positions.
type ViewOption struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ViewQuestion is the answer-free projection of a question handed to a
// student when an attempt starts.
type ViewQuestion struct {
	Index   int          `json:"index"` // canonical position, used when answering
	Text    string       `json:"text"`
	Options []ViewOption `json:"options"`
	Points  float64      `json:"points"`
}

// StartAttempt opens a new attempt for the student and returns the
// question view, shuffled per quiz config. Shuffling touches the view
// only: stored question and option order, and the stored correct
// indices, are never mutated.
func (q *Quiz) StartAttempt(student string, now time.Time, rng *rand.Rand) (Attempt, []ViewQuestion, error) {
	if q.Status != StatusPublished {
		return Attempt{}, nil, apperr.Validation("quiz is not published")
	}
	prior := q.AttemptsOf(student)
	if q.MaxAttempts > 0 && prior >= q.MaxAttempts {
		return Attempt{}, nil, apperr.Conflict("attempt limit exceeded")
	}
	a := Attempt{
		ID:            uuid.NewString(),
		Student:       student,
		AttemptNumber: prior + 1,
		StartedAt:     now.Unix(),
	}
	q.Attempts = append(q.Attempts, a)
	return a, q.questionView(rng), nil
}

func (q *Quiz) questionView(rng *rand.Rand) []ViewQuestion {
	view := make([]ViewQuestion, len(q.Questions))
	for i, qq := range q.Questions {
		opts := make([]ViewOption, len(qq.Options))
		for j, o := range qq.Options {
			opts[j] = ViewOption{Index: j, Text: o}
		}
		if q.ShuffleOptions && rng != nil {
			rng.Shuffle(len(opts), func(a, b int) { opts[a], opts[b] = opts[b], opts[a] })
		}
		view[i] = ViewQuestion{Index: i, Text: qq.Text, Options: opts, Points: qq.Points}
	}
	if q.ShuffleQuestions && rng != nil {
		rng.Shuffle(len(view), func(a, b int) { view[a], view[b] = view[b], view[a] })
	}
	return view
}

// SubmitAttempt grades the student's answers against the canonical
// question sequence and completes their most recent attempt.
func (q *Quiz) SubmitAttempt(student string, answers []int, timeSpent int, now time.Time) (Attempt, error) {
	i := q.latestAttemptIndex(student)
	if i < 0 {
		return Attempt{}, apperr.NotFound("no active attempt")
	}
	if q.Attempts[i].Completed() {
		return Attempt{}, apperr.Conflict("attempt already completed")
	}

	gqs := make([]grading.Q, len(q.Questions))
	for j, qq := range q.Questions {
		gqs[j] = grading.Q{CorrectAnswer: qq.CorrectAnswer, Points: qq.Points}
	}
	res := grading.Grade(gqs, answers, q.TotalPoints, q.PassingScore)

	done := now.Unix()
	a := &q.Attempts[i]
	a.Answers = res.Answers
	a.Score = res.Score
	a.Percentage = res.Percentage
	a.Passed = res.Passed
	a.TimeSpent = timeSpent
	a.CompletedAt = &done
	return *a, nil
}

// Derived stats over completed attempts.

func (q *Quiz) AttemptCount() int { return len(q.Attempts) }

func (q *Quiz) AverageScore() float64 {
	sum, n := 0.0, 0
	for i := range q.Attempts {
		if q.Attempts[i].Completed() {
			sum += q.Attempts[i].Percentage
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return grading.Round2(sum / float64(n))
}

func (q *Quiz) PassRate() float64 {
	passed, n := 0, 0
	for i := range q.Attempts {
		if q.Attempts[i].Completed() {
			n++
			if q.Attempts[i].Passed {
				passed++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return grading.Round2(float64(passed) / float64(n) * 100)
}
