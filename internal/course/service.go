package course

import (
	"time"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
)

// Membership rules are pure functions over a loaded course; the caller
// loads, mutates, saves.

// Enroll adds student to the course's enrollment set.
func Enroll(c *Course, student string, now time.Time) error {
	if c.Status != StatusPublished {
		return apperr.Validation("course is not open for enrollment")
	}
	if c.IsEnrolled(student) {
		return apperr.Conflict("student already enrolled")
	}
	c.Enrollments = append(c.Enrollments, Enrollment{
		Student:    student,
		EnrolledAt: now.Unix(),
		Progress:   0,
	})
	return nil
}

// Unenroll removes the student's membership record.
func Unenroll(c *Course, student string) error {
	i := c.EnrollmentIndex(student)
	if i < 0 {
		return apperr.NotFound("enrollment not found")
	}
	c.Enrollments = append(c.Enrollments[:i], c.Enrollments[i+1:]...)
	return nil
}

// SetProgress updates the student's progress percentage.
func SetProgress(c *Course, student string, progress float64) error {
	if progress < 0 || progress > 100 {
		return apperr.Validation("progress must be between 0 and 100",
			apperr.FieldError{Field: "progress", Detail: "must be in [0,100]"})
	}
	i := c.EnrollmentIndex(student)
	if i < 0 {
		return apperr.NotFound("enrollment not found")
	}
	c.Enrollments[i].Progress = progress
	return nil
}

// RecordView stamps the student's last-viewed time on a lecture. The
// view counter only moves on the student's first view.
func RecordView(l *Lecture, student string, now time.Time) {
	for i := range l.Views {
		if l.Views[i].Student == student {
			l.Views[i].LastViewedAt = now.Unix()
			return
		}
	}
	l.Views = append(l.Views, View{Student: student, LastViewedAt: now.Unix()})
	l.ViewCount++
}
