package quiz

import (
	"fmt"
	"time"
)

// AnswerRecord is one ledger entry: a participant's answer (or lack of one)
// to the question at QuestionIndex. Records are append-only, at most one per
// participant per question.
type AnswerRecord struct {
	QuestionIndex int
	// Choice is the submitted option label. Nil means the question closed
	// before the participant answered.
	Choice    *string
	IsCorrect bool
	// Elapsed is time from question open to submission. Nil when Choice is nil.
	Elapsed *time.Duration
}

// TimedOut reports whether this record was filled in by question closure
// rather than an actual submission.
func (r AnswerRecord) TimedOut() bool {
	return r.Choice == nil
}

// Participant is one user's running tally inside a session. It is owned by
// the session and only mutated under the session's lock.
type Participant struct {
	UserID    int64
	Username  string
	FirstName string

	CorrectCount  int
	TotalAnswered int
	Answers       []AnswerRecord
}

func (p *Participant) DisplayName() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	if p.FirstName != "" {
		return p.FirstName
	}
	return fmt.Sprintf("User %d", p.UserID)
}

// Percentage is the participant's accuracy over everything counted so far.
func (p *Participant) Percentage() float64 {
	if p.TotalAnswered == 0 {
		return 0
	}
	return float64(p.CorrectCount) * 100 / float64(p.TotalAnswered)
}

// AnswerFor returns the participant's own record for a question index.
// Different participants hold different records for the same question.
func (p *Participant) AnswerFor(questionIndex int) (AnswerRecord, bool) {
	for _, rec := range p.Answers {
		if rec.QuestionIndex == questionIndex {
			return rec, true
		}
	}
	return AnswerRecord{}, false
}
