package course

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Enrollment is one (student, course) membership record.
type Enrollment struct {
	Student    string  `json:"student"`
	EnrolledAt int64   `json:"enrolled_at"`
	Progress   float64 `json:"progress"` // 0..100
}

type Course struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Teacher     string       `json:"teacher"`
	Status      Status       `json:"status"`
	Enrollments []Enrollment `json:"enrollments,omitempty"`
	CreatedAt   int64        `json:"created_at"`
	UpdatedAt   int64        `json:"updated_at"`
}

// EnrollmentIndex returns the position of the student's enrollment, or
// -1. A student appears at most once in the set.
func (c *Course) EnrollmentIndex(student string) int {
	for i := range c.Enrollments {
		if c.Enrollments[i].Student == student {
			return i
		}
	}
	return -1
}

func (c *Course) IsEnrolled(student string) bool { return c.EnrollmentIndex(student) >= 0 }

func (c *Course) EnrolledCount() int { return len(c.Enrollments) }

type LectureStatus string

const (
	LectureDraft     LectureStatus = "draft"
	LecturePublished LectureStatus = "published"
)

// View tracks one student's last visit to a lecture.
type View struct {
	Student      string `json:"student"`
	LastViewedAt int64  `json:"last_viewed_at"`
}

type Lecture struct {
	ID        string        `json:"id"`
	Course    string        `json:"course"`
	Title     string        `json:"title"`
	Content   string        `json:"content,omitempty"`
	Order     int           `json:"order"`
	Status    LectureStatus `json:"status"`
	Views     []View        `json:"views,omitempty"`
	ViewCount int           `json:"view_count"`
	CreatedAt int64         `json:"created_at"`
	UpdatedAt int64         `json:"updated_at"`
}
