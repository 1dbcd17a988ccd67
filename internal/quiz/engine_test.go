package quiz_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/quiz"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newQuiz(t *testing.T) quiz.Quiz {
	t.Helper()
	q := quiz.Quiz{
		ID:           "quiz-1",
		Course:       "course-1",
		Title:        "Midterm",
		Status:       quiz.StatusPublished,
		PassingScore: 50,
		MaxAttempts:  3,
		ShowResults:  true,
	}
	err := q.SetQuestions([]quiz.Question{
		{Text: "q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 1, Points: 2},
		{Text: "q2", Options: []string{"a", "b"}, CorrectAnswer: 0, Points: 3},
	})
	if err != nil {
		t.Fatalf("SetQuestions: %v", err)
	}
	return q
}

func TestSetQuestionsRecomputesTotalPoints(t *testing.T) {
	q := newQuiz(t)
	if q.TotalPoints != 5 {
		t.Fatalf("total points = %v, want 5", q.TotalPoints)
	}
	err := q.SetQuestions([]quiz.Question{
		{Text: "q1", Options: []string{"a", "b"}, CorrectAnswer: 0, Points: 10},
	})
	if err != nil {
		t.Fatalf("SetQuestions: %v", err)
	}
	if q.TotalPoints != 10 {
		t.Fatalf("total points after replacement = %v, want 10", q.TotalPoints)
	}
}

func TestValidateQuestions(t *testing.T) {
	cases := []struct {
		name string
		q    quiz.Question
	}{
		{"too few options", quiz.Question{Text: "x", Options: []string{"a"}, CorrectAnswer: 0, Points: 1}},
		{"too many options", quiz.Question{Text: "x", Options: []string{"a", "b", "c", "d", "e", "f", "g"}, CorrectAnswer: 0, Points: 1}},
		{"correct answer out of range", quiz.Question{Text: "x", Options: []string{"a", "b"}, CorrectAnswer: 2, Points: 1}},
		{"negative correct answer", quiz.Question{Text: "x", Options: []string{"a", "b"}, CorrectAnswer: -1, Points: 1}},
		{"points too low", quiz.Question{Text: "x", Options: []string{"a", "b"}, CorrectAnswer: 0, Points: 0}},
		{"points too high", quiz.Question{Text: "x", Options: []string{"a", "b"}, CorrectAnswer: 0, Points: 11}},
		{"missing text", quiz.Question{Options: []string{"a", "b"}, CorrectAnswer: 0, Points: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := quiz.ValidateQuestions([]quiz.Question{tc.q})
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
	if err := quiz.ValidateQuestions(nil); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("empty question list must fail validation")
	}
}

func TestStartAttemptNumbering(t *testing.T) {
	q := newQuiz(t)
	for want := 1; want <= 3; want++ {
		a, _, err := q.StartAttempt("s1", t0, nil)
		if err != nil {
			t.Fatalf("attempt %d: %v", want, err)
		}
		if a.AttemptNumber != want {
			t.Fatalf("attempt number = %d, want %d", a.AttemptNumber, want)
		}
		if _, err := q.SubmitAttempt("s1", []int{1, 0}, 30, t0); err != nil {
			t.Fatalf("submit %d: %v", want, err)
		}
	}
	// 4th start exceeds max_attempts=3
	_, _, err := q.StartAttempt("s1", t0, nil)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict (attempt limit)", err)
	}
	// another student is unaffected
	if _, _, err := q.StartAttempt("s2", t0, nil); err != nil {
		t.Fatalf("other student blocked: %v", err)
	}
}

func TestStartAttemptUnpublished(t *testing.T) {
	q := newQuiz(t)
	q.Status = quiz.StatusDraft
	if _, _, err := q.StartAttempt("s1", t0, nil); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSubmitAttemptLifecycle(t *testing.T) {
	q := newQuiz(t)

	// no attempt started yet
	if _, err := q.SubmitAttempt("s1", []int{1, 0}, 10, t0); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found (no active attempt)", err)
	}

	if _, _, err := q.StartAttempt("s1", t0, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	a, err := q.SubmitAttempt("s1", []int{1, 1}, 42, t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a.Score != 2 || a.Percentage != 40.0 || a.Passed {
		t.Fatalf("graded attempt = %+v", a)
	}
	if a.TimeSpent != 42 || !a.Completed() {
		t.Fatalf("completion fields = %+v", a)
	}

	// double submit
	if _, err := q.SubmitAttempt("s1", []int{1, 0}, 10, t0); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict (already completed)", err)
	}
}

func TestSubmitTargetsLatestAttempt(t *testing.T) {
	q := newQuiz(t)
	if _, _, err := q.StartAttempt("s1", t0, nil); err != nil {
		t.Fatalf("start 1: %v", err)
	}
	if _, err := q.SubmitAttempt("s1", []int{0, 0}, 5, t0); err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	second, _, err := q.StartAttempt("s1", t0.Add(time.Hour), nil)
	if err != nil {
		t.Fatalf("start 2: %v", err)
	}
	got, err := q.SubmitAttempt("s1", []int{1, 0}, 5, t0.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	if got.ID != second.ID || got.AttemptNumber != 2 {
		t.Fatalf("submitted attempt = %+v, want the second attempt", got)
	}
	if !got.Passed || got.Percentage != 100.0 {
		t.Fatalf("second attempt grade = %+v", got)
	}
}

func TestShuffleNeverMutatesCanonicalOrder(t *testing.T) {
	q := newQuiz(t)
	q.ShuffleQuestions = true
	q.ShuffleOptions = true
	wantTexts := []string{q.Questions[0].Text, q.Questions[1].Text}
	wantOpts := append([]string(nil), q.Questions[0].Options...)
	wantCorrect := []int{q.Questions[0].CorrectAnswer, q.Questions[1].CorrectAnswer}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		student := string(rune('a' + i))
		if _, _, err := q.StartAttempt(student, t0, rng); err != nil {
			t.Fatalf("start: %v", err)
		}
	}

	for i, want := range wantTexts {
		if q.Questions[i].Text != want {
			t.Fatalf("stored question order changed: %v", q.Questions)
		}
	}
	for i, want := range wantOpts {
		if q.Questions[0].Options[i] != want {
			t.Fatalf("stored option order changed: %v", q.Questions[0].Options)
		}
	}
	for i, want := range wantCorrect {
		if q.Questions[i].CorrectAnswer != want {
			t.Fatalf("stored correct index changed: %v", q.Questions[i])
		}
	}

	// grading stays canonical even with shuffling enabled
	a, err := q.SubmitAttempt("a", []int{1, 0}, 1, t0)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a.Percentage != 100.0 {
		t.Fatalf("canonical answers graded %v, want 100", a.Percentage)
	}
}

func TestShuffledViewCarriesCanonicalIndices(t *testing.T) {
	q := newQuiz(t)
	q.ShuffleQuestions = true
	q.ShuffleOptions = true
	rng := rand.New(rand.NewSource(7))
	_, view, err := q.StartAttempt("s1", t0, rng)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	seen := map[int]bool{}
	for _, vq := range view {
		seen[vq.Index] = true
		canonical := q.Questions[vq.Index]
		if vq.Text != canonical.Text {
			t.Fatalf("view question %d text mismatch", vq.Index)
		}
		for _, opt := range vq.Options {
			if canonical.Options[opt.Index] != opt.Text {
				t.Fatalf("view option does not map back to canonical index")
			}
		}
	}
	if len(seen) != len(q.Questions) {
		t.Fatalf("view covers %d questions, want %d", len(seen), len(q.Questions))
	}
}

func TestViewForRedactsQuestionsAndForeignAttempts(t *testing.T) {
	q := newQuiz(t)
	for _, s := range []string{"s1", "s2"} {
		if _, _, err := q.StartAttempt(s, t0, nil); err != nil {
			t.Fatalf("start %s: %v", s, err)
		}
		if _, err := q.SubmitAttempt(s, []int{1, 1}, 5, t0); err != nil {
			t.Fatalf("submit %s: %v", s, err)
		}
	}

	v := q.ViewFor("s1")
	if v.QuestionCount != 2 || v.TotalPoints != 5 {
		t.Fatalf("view summary = %+v", v)
	}
	if len(v.Attempts) != 1 || v.Attempts[0].Student != "s1" {
		t.Fatalf("view attempts = %+v, want only s1's", v.Attempts)
	}
	if v.Attempts[0].Answers == nil {
		t.Fatalf("show_results on: answers should be present")
	}

	q.ShowResults = false
	v = q.ViewFor("s1")
	if v.Attempts[0].Answers != nil {
		t.Fatalf("show_results off: answers must be hidden")
	}
	if v.Attempts[0].Score != 2 {
		t.Fatalf("score should survive redaction, got %v", v.Attempts[0].Score)
	}
}

func TestStats(t *testing.T) {
	q := newQuiz(t)
	for i, answers := range [][]int{{1, 0}, {1, 1}, {0, 0}} {
		s := string(rune('a' + i))
		if _, _, err := q.StartAttempt(s, t0, nil); err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := q.SubmitAttempt(s, answers, 1, t0); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	// percentages: 100, 40, 60 -> avg 66.67; passed: 2 of 3
	if got := q.AverageScore(); got != 66.67 {
		t.Fatalf("average score = %v, want 66.67", got)
	}
	if got := q.PassRate(); got != 66.67 {
		t.Fatalf("pass rate = %v, want 66.67", got)
	}
	if q.AttemptCount() != 3 {
		t.Fatalf("attempt count = %d, want 3", q.AttemptCount())
	}
}
