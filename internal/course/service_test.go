package course_test

import (
	"testing"
	"time"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/course"
)

var now = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

func published() course.Course {
	return course.Course{ID: "c1", Teacher: "t1", Status: course.StatusPublished}
}

func TestEnroll(t *testing.T) {
	c := published()
	if err := course.Enroll(&c, "s1", now); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if c.EnrolledCount() != 1 || !c.IsEnrolled("s1") {
		t.Fatalf("enrollments = %+v", c.Enrollments)
	}
	if c.Enrollments[0].Progress != 0 {
		t.Fatalf("fresh enrollment progress = %v, want 0", c.Enrollments[0].Progress)
	}

	// a student appears at most once
	if err := course.Enroll(&c, "s1", now); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if c.EnrolledCount() != 1 {
		t.Fatalf("duplicate enroll changed the set: %+v", c.Enrollments)
	}
}

func TestEnrollStatusGate(t *testing.T) {
	for _, st := range []course.Status{course.StatusDraft, course.StatusArchived} {
		c := published()
		c.Status = st
		if err := course.Enroll(&c, "s1", now); !apperr.IsKind(err, apperr.KindValidation) {
			t.Fatalf("status %s: err = %v, want validation", st, err)
		}
	}
}

func TestUnenroll(t *testing.T) {
	c := published()
	_ = course.Enroll(&c, "s1", now)
	_ = course.Enroll(&c, "s2", now)

	if err := course.Unenroll(&c, "s1"); err != nil {
		t.Fatalf("unenroll: %v", err)
	}
	if c.IsEnrolled("s1") || !c.IsEnrolled("s2") {
		t.Fatalf("enrollments after unenroll = %+v", c.Enrollments)
	}
	if err := course.Unenroll(&c, "s1"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestSetProgress(t *testing.T) {
	c := published()
	_ = course.Enroll(&c, "s1", now)

	if err := course.SetProgress(&c, "s1", 42.5); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	if c.Enrollments[0].Progress != 42.5 {
		t.Fatalf("progress = %v, want 42.5", c.Enrollments[0].Progress)
	}
	if err := course.SetProgress(&c, "s1", 101); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if err := course.SetProgress(&c, "s1", -1); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if err := course.SetProgress(&c, "ghost", 10); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestRecordView(t *testing.T) {
	l := course.Lecture{ID: "l1", Course: "c1", Status: course.LecturePublished}

	course.RecordView(&l, "s1", now)
	if l.ViewCount != 1 || len(l.Views) != 1 {
		t.Fatalf("after first view: count=%d views=%d", l.ViewCount, len(l.Views))
	}

	// repeat view refreshes the timestamp only
	later := now.Add(time.Hour)
	course.RecordView(&l, "s1", later)
	if l.ViewCount != 1 {
		t.Fatalf("repeat view moved the counter: %d", l.ViewCount)
	}
	if l.Views[0].LastViewedAt != later.Unix() {
		t.Fatalf("timestamp not refreshed: %d", l.Views[0].LastViewedAt)
	}

	course.RecordView(&l, "s2", later)
	if l.ViewCount != 2 {
		t.Fatalf("second student's first view should count: %d", l.ViewCount)
	}
}
