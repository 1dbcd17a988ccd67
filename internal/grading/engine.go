// Package grading holds the pure scoring arithmetic for quiz attempts.
// It knows nothing about storage or attempt lifecycle; the quiz engine
// feeds it the canonical question sequence and the submitted answers.
package grading

import "math"

// Q is the minimal view of a question needed for grading.
type Q struct {
	CorrectAnswer int
	Points        float64
}

// Answer is one graded response, positional against the canonical
// question order.
type Answer struct {
	QuestionIndex  int     `json:"question_index"`
	SelectedOption int     `json:"selected_option"`
	IsCorrect      bool    `json:"is_correct"`
	Points         float64 `json:"points"`
}

// Result is the outcome of grading one attempt.
type Result struct {
	Answers    []Answer `json:"answers"`
	Score      float64  `json:"score"`
	Percentage float64  `json:"percentage"`
	Passed     bool     `json:"passed"`
}

// Grade walks answers in parallel with the canonical question sequence
// by position. Correctness is selected == CorrectAnswer; a correct
// answer earns the question's points, anything else earns zero.
// Indices outside the question range are ignored.
func Grade(questions []Q, selected []int, totalPoints, passingScore float64) Result {
	res := Result{Answers: make([]Answer, 0, len(selected))}
	for i, sel := range selected {
		if i >= len(questions) {
			break
		}
		q := questions[i]
		ans := Answer{QuestionIndex: i, SelectedOption: sel}
		if sel == q.CorrectAnswer {
			ans.IsCorrect = true
			ans.Points = q.Points
			res.Score += q.Points
		}
		res.Answers = append(res.Answers, ans)
	}
	if totalPoints > 0 {
		res.Percentage = Round2(res.Score / totalPoints * 100)
	}
	res.Passed = res.Percentage >= passingScore
	return res
}

// Round2 rounds to 2 decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
