package assignment

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionLate      SubmissionStatus = "late"
	SubmissionGraded    SubmissionStatus = "graded"
)

// Submission is one student's authoritative hand-in. Resubmission
// before grading replaces it in place.
type Submission struct {
	Student     string           `json:"student"`
	Files       []string         `json:"files,omitempty"` // blob store keys
	SubmittedAt int64            `json:"submitted_at"`
	Status      SubmissionStatus `json:"status"`
	Grade       *float64         `json:"grade,omitempty"` // 0..100, set by grading only
	Feedback    string           `json:"feedback,omitempty"`
	GradedBy    string           `json:"graded_by,omitempty"`
	GradedAt    int64            `json:"graded_at,omitempty"`
}

type Assignment struct {
	ID                  string       `json:"id"`
	Course              string       `json:"course"`
	Title               string       `json:"title"`
	Description         string       `json:"description,omitempty"`
	Deadline            int64        `json:"deadline"`
	MaxPoints           float64      `json:"max_points"`
	Status              Status       `json:"status"`
	AllowLateSubmission bool         `json:"allow_late_submission"`
	LatePenaltyPercent  float64      `json:"late_penalty"` // per day late
	Submissions         []Submission `json:"submissions,omitempty"`
	CreatedAt           int64        `json:"created_at"`
	UpdatedAt           int64        `json:"updated_at"`
}

func (a *Assignment) SubmissionIndex(student string) int {
	for i := range a.Submissions {
		if a.Submissions[i].Student == student {
			return i
		}
	}
	return -1
}

// SubmissionOf returns the student's submission, if any.
func (a *Assignment) SubmissionOf(student string) (Submission, bool) {
	if i := a.SubmissionIndex(student); i >= 0 {
		return a.Submissions[i], true
	}
	return Submission{}, false
}
