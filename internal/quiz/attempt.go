package quiz

import (
	"time"

	"quizbuddy/internal/translate"
)

// DefaultExplanation is shown when the model gave none.
const DefaultExplanation = "No explanation provided."

// Presented is a question as shown to the student, already translated.
type Presented struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Correct      string   `json:"correct"`
	Explanation  string   `json:"explanation"`
}

// Attempt is an in-progress quiz held in the student's session.
type Attempt struct {
	ID        string             `json:"id"`
	QuizID    string             `json:"quiz_id,omitempty"`
	Subject   string             `json:"subject"`
	Skill     string             `json:"skill"`
	Level     Level              `json:"level"`
	Language  translate.Language `json:"language"`
	Questions []Presented        `json:"questions"`
	StartedAt time.Time          `json:"started_at"`
}

// Review explains one graded question.
type Review struct {
	Question      string `json:"question"`
	YourAnswer    string `json:"your_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	Correct       bool   `json:"correct"`
}

// Result is a graded attempt.
type Result struct {
	Subject string   `json:"subject"`
	Score   int      `json:"score"`
	Total   int      `json:"total"`
	Review  []Review `json:"review"`
}

// Grade scores answers given as option indexes. Missing entries and
// out-of-range indexes (for example -1) count as unanswered.
func (a *Attempt) Grade(answers []int) Result {
	res := Result{Subject: a.Subject, Total: len(a.Questions), Review: make([]Review, len(a.Questions))}
	for i, q := range a.Questions {
		r := Review{Question: q.Text, CorrectAnswer: q.Correct, Explanation: q.Explanation}
		if i < len(answers) && answers[i] >= 0 && answers[i] < len(q.Options) {
			r.YourAnswer = q.Options[answers[i]]
			r.Correct = answers[i] == q.CorrectIndex
		}
		if r.Correct {
			res.Score++
		}
		res.Review[i] = r
	}
	return res
}
