package quiz

import "sort"

// Leaderboard returns the roster ranked by correct answers descending, then
// by fewer total answers (efficiency), then by join order. Pure projection:
// nothing is mutated.
func (s *Session) Leaderboard() []Participant {
	s.mu.Lock()
	board := s.snapshotLocked()
	s.mu.Unlock()

	sort.SliceStable(board, func(i, j int) bool {
		if board[i].CorrectCount != board[j].CorrectCount {
			return board[i].CorrectCount > board[j].CorrectCount
		}
		return board[i].TotalAnswered < board[j].TotalAnswered
	})
	return board
}

// Winner returns the top of a leaderboard, false when nobody played.
func Winner(board []Participant) (Participant, bool) {
	if len(board) == 0 {
		return Participant{}, false
	}
	return board[0], true
}

// Band is a qualitative accuracy tier used to pick a closing remark.
type Band int

const (
	BandDefault Band = iota
	BandGood
	BandExcellent
)

// GroupWinnerBand rates the winner of a group game.
func GroupWinnerBand(percentage float64) Band {
	switch {
	case percentage >= 90:
		return BandExcellent
	case percentage >= 70:
		return BandGood
	default:
		return BandDefault
	}
}

// SoloResultBand rates a solo game result. Solo play holds a stricter bar
// for the top tier.
func SoloResultBand(percentage float64) Band {
	switch {
	case percentage >= 95:
		return BandExcellent
	case percentage >= 70:
		return BandGood
	default:
		return BandDefault
	}
}

// Explanation pairs a question with one participant's own answer to it.
// Answered is false when that participant has no record for the question
// (joined late, or the game stopped early).
type Explanation struct {
	Index    int
	Question Question
	Record   AnswerRecord
	Answered bool
}

// Explanations builds the per-participant explanation list. Each participant
// may hold a different answer for the same question, so views index into
// that participant's own ledger.
func (s *Session) Explanations(userID int64) []Explanation {
	s.mu.Lock()
	var answers []AnswerRecord
	if p, ok := s.participants[userID]; ok {
		answers = append(answers, p.Answers...)
	}
	questions := s.questions
	s.mu.Unlock()

	out := make([]Explanation, 0, len(questions))
	for i, q := range questions {
		e := Explanation{Index: i, Question: q}
		for _, rec := range answers {
			if rec.QuestionIndex == i {
				e.Record = rec
				e.Answered = true
				break
			}
		}
		out = append(out, e)
	}
	return out
}
