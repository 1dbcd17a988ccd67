package quiz

// Visibility policy: a non-owner student must never see the question
// bank (it embeds correct answers) and only their own attempts.
// Owners and admins get the full record.

// StudentView is the redacted projection served to enrolled students.
type StudentView struct {
	ID          string `json:"id"`
	Course      string `json:"course"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`

	TimeLimit     int     `json:"time_limit"`
	PassingScore  float64 `json:"passing_score"`
	MaxAttempts   int     `json:"max_attempts"`
	ShowResults   bool    `json:"show_results"`
	QuestionCount int     `json:"question_count"`
	TotalPoints   float64 `json:"total_points"`

	Attempts []Attempt `json:"attempts"`
}

// ViewFor redacts the quiz for the given student. When ShowResults is
// off, completed attempts keep their score but drop the per-answer
// correctness detail.
func (q *Quiz) ViewFor(student string) StudentView {
	v := StudentView{
		ID:            q.ID,
		Course:        q.Course,
		Title:         q.Title,
		Description:   q.Description,
		Status:        q.Status,
		TimeLimit:     q.TimeLimit,
		PassingScore:  q.PassingScore,
		MaxAttempts:   q.MaxAttempts,
		ShowResults:   q.ShowResults,
		QuestionCount: len(q.Questions),
		TotalPoints:   q.TotalPoints,
		Attempts:      []Attempt{},
	}
	for i := range q.Attempts {
		if q.Attempts[i].Student != student {
			continue
		}
		a := q.Attempts[i]
		if !q.ShowResults {
			a.Answers = nil
		}
		v.Attempts = append(v.Attempts, a)
	}
	return v
}
