package assignment

import (
	"math"
	"time"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
)

// IsLate reports whether a hand-in at t misses the deadline.
func (a *Assignment) IsLate(t time.Time) bool {
	return t.After(time.Unix(a.Deadline, 0))
}

// LatePenalty computes the advisory percentage reduction for a hand-in
// at t: penalty-per-day times days late (partial days round up),
// capped at 100. It is never applied to the grade automatically; the
// grader sees it and decides.
func (a *Assignment) LatePenalty(t time.Time) float64 {
	if !a.AllowLateSubmission || !a.IsLate(t) {
		return 0
	}
	daysLate := math.Ceil(t.Sub(time.Unix(a.Deadline, 0)).Hours() / 24)
	return math.Min(a.LatePenaltyPercent*daysLate, 100)
}

// Submit upserts the student's submission. At most one submission per
// student is authoritative: a resubmission replaces files, timestamp
// and status, and clears any stale grade fields (grading after the
// fact targets the replacement).
func (a *Assignment) Submit(student string, files []string, now time.Time) (Submission, error) {
	if a.Status != StatusActive {
		return Submission{}, apperr.Validation("assignment is not accepting submissions")
	}
	if a.IsLate(now) && !a.AllowLateSubmission {
		return Submission{}, apperr.Validation("deadline has passed")
	}
	sub := Submission{
		Student:     student,
		Files:       files,
		SubmittedAt: now.Unix(),
		Status:      SubmissionSubmitted,
	}
	if a.IsLate(now) {
		sub.Status = SubmissionLate
	}
	if i := a.SubmissionIndex(student); i >= 0 {
		a.Submissions[i] = sub
	} else {
		a.Submissions = append(a.Submissions, sub)
	}
	return sub, nil
}

// Grade records the grader's verdict on the student's submission and
// forces its status to graded.
func (a *Assignment) Grade(student string, grade float64, feedback, grader string, now time.Time) (Submission, error) {
	if grade < 0 || grade > 100 {
		return Submission{}, apperr.Validation("grade must be between 0 and 100",
			apperr.FieldError{Field: "grade", Detail: "must be in [0,100]"})
	}
	i := a.SubmissionIndex(student)
	if i < 0 {
		return Submission{}, apperr.NotFound("submission not found")
	}
	a.Submissions[i].Grade = &grade
	a.Submissions[i].Feedback = feedback
	a.Submissions[i].GradedBy = grader
	a.Submissions[i].GradedAt = now.Unix()
	a.Submissions[i].Status = SubmissionGraded
	return a.Submissions[i], nil
}

// Derived stats, computed on read and never stored.

func (a *Assignment) SubmissionCount() int { return len(a.Submissions) }

func (a *Assignment) GradedCount() int {
	n := 0
	for i := range a.Submissions {
		if a.Submissions[i].Status == SubmissionGraded {
			n++
		}
	}
	return n
}

// AverageGrade over graded submissions; 0 when nothing is graded yet.
func (a *Assignment) AverageGrade() float64 {
	sum, n := 0.0, 0
	for i := range a.Submissions {
		if a.Submissions[i].Status == SubmissionGraded && a.Submissions[i].Grade != nil {
			sum += *a.Submissions[i].Grade
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
