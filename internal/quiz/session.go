package quiz

import (
	"sync"
	"time"

	"github.com/winequiz/quiz_bot/pkg/errors"
)

// Session states
const (
	StateRegistering    = "registering"
	StateQuestionOpen   = "question_open"
	StateQuestionClosed = "question_closed"
	StateFinished       = "finished"
	StateStopped        = "stopped"
)

// Session is one chat's quiz: roster, question cursor, per-question answer
// ledger and the handle of the single live countdown. All mutations go
// through its methods; the embedded mutex is the session's concurrency
// boundary, so timer ticks and answer callbacks for the same chat never
// interleave on this state.
type Session struct {
	mu sync.Mutex

	chatID      int64
	questions   []Question
	organizerID int64
	createdAt   time.Time

	state        string
	cursor       int
	participants map[int64]*Participant
	joinOrder    []int64
	answered     map[int64]struct{}
	openedAt     time.Time
	messageID    int
	timer        *Countdown
}

func NewSession(chatID int64, questions []Question, organizerID int64) *Session {
	return &Session{
		chatID:       chatID,
		questions:    questions,
		organizerID:  organizerID,
		createdAt:    time.Now(),
		state:        StateRegistering,
		participants: make(map[int64]*Participant),
		answered:     make(map[int64]struct{}),
	}
}

func (s *Session) ChatID() int64       { return s.chatID }
func (s *Session) OrganizerID() int64  { return s.organizerID }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) TotalQuestions() int { return len(s.questions) }

func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Question returns the question at an index, for explanation browsing.
func (s *Session) Question(index int) (Question, bool) {
	if index < 0 || index >= len(s.questions) {
		return Question{}, false
	}
	return s.questions[index], true
}

// CurrentQuestion returns the question at the cursor, if any remains.
func (s *Session) CurrentQuestion() (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() (Question, bool) {
	if s.cursor < 0 || s.cursor >= len(s.questions) {
		return Question{}, false
	}
	return s.questions[s.cursor], true
}

// Finished reports whether the session reached a terminal state.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateFinished || s.state == StateStopped
}

// Started reports whether the question loop has begun. The registration
// countdown uses this as its early-exit predicate.
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor > 0 || s.state == StateQuestionOpen || s.state == StateQuestionClosed
}

// AddParticipant registers a user, returning the existing entry when the
// user already joined. Joining is allowed while registering and, as the
// late-join path, while a question is open; terminal sessions reject it.
func (s *Session) AddParticipant(userID int64, username, firstName string) (*Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinished || s.state == StateStopped {
		return nil, errors.New(errors.ErrCodeSessionFinished, "quiz is over, joining is closed")
	}

	if p, ok := s.participants[userID]; ok {
		return p, nil
	}

	p := &Participant{
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
	}
	s.participants[userID] = p
	s.joinOrder = append(s.joinOrder, userID)
	return p, nil
}

// Participant looks up a roster entry.
func (s *Session) Participant(userID int64) (*Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[userID]
	return p, ok
}

func (s *Session) ParticipantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants)
}

// StartQuestion opens the question at the cursor: resets the answered set
// and records the open timestamp. Fails if a question is already open or the
// list is exhausted.
func (s *Session) StartQuestion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateFinished, StateStopped:
		return errors.New(errors.ErrCodeSessionFinished, "quiz is over")
	case StateQuestionOpen:
		return errors.New(errors.ErrCodeQuestionAlreadyOpen, "a question is already open")
	}
	if s.cursor >= len(s.questions) {
		return errors.New(errors.ErrCodeQuestionsExhausted, "no questions left")
	}

	s.state = StateQuestionOpen
	s.answered = make(map[int64]struct{})
	s.openedAt = time.Now()
	return nil
}

// RecordAnswer appends the participant's answer for the open question.
// First writer wins: a second submission from the same participant for the
// same question is rejected and the ledger does not grow.
func (s *Session) RecordAnswer(userID int64, choice string, isCorrect bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateQuestionOpen {
		return errors.New(errors.ErrCodeQuestionNotActive, "no question is open")
	}
	if _, dup := s.answered[userID]; dup {
		return errors.New(errors.ErrCodeAlreadyAnswered, "already answered this question")
	}
	p, ok := s.participants[userID]
	if !ok {
		return errors.New(errors.ErrCodeUnknownParticipant, "user is not in this game")
	}

	submitted := choice
	elapsed := time.Since(s.openedAt)
	p.Answers = append(p.Answers, AnswerRecord{
		QuestionIndex: s.cursor,
		Choice:        &submitted,
		IsCorrect:     isCorrect,
		Elapsed:       &elapsed,
	})
	p.TotalAnswered++
	if isCorrect {
		p.CorrectCount++
	}
	s.answered[userID] = struct{}{}
	return nil
}

// AllAnswered reports whether every participant answered the open question.
// False while the roster is empty.
func (s *Session) AllAnswered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants) > 0 && len(s.answered) >= len(s.participants)
}

func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answered)
}

// EndQuestion closes the open question. Every participant who did not answer
// gets exactly one nil-choice, incorrect record so their denominator still
// counts the question.
func (s *Session) EndQuestion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateQuestionOpen {
		return errors.New(errors.ErrCodeQuestionNotActive, "no question is open")
	}

	for userID, p := range s.participants {
		if _, ok := s.answered[userID]; ok {
			continue
		}
		p.Answers = append(p.Answers, AnswerRecord{
			QuestionIndex: s.cursor,
			IsCorrect:     false,
		})
		p.TotalAnswered++
	}

	s.state = StateQuestionClosed
	s.openedAt = time.Time{}
	return nil
}

// Advance moves the cursor past the closed question. Returns true when the
// session just finished.
func (s *Session) Advance() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateFinished, StateStopped:
		return false, errors.New(errors.ErrCodeSessionFinished, "quiz is over")
	case StateQuestionOpen:
		return false, errors.New(errors.ErrCodeQuestionAlreadyOpen, "close the question before advancing")
	case StateRegistering:
		return false, errors.New(errors.ErrCodeQuestionNotActive, "the quiz has not started")
	}

	s.cursor++
	s.timer = nil
	if s.cursor >= len(s.questions) {
		s.state = StateFinished
		return true, nil
	}
	return false, nil
}

// Stop terminates the session from any state, cancelling the live timer.
// Aggregates stay as they are: only questions actually answered count.
// Stopping a terminal session is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	timer := s.timer
	s.timer = nil
	if s.state != StateFinished && s.state != StateStopped {
		s.state = StateStopped
	}
	s.mu.Unlock()

	if timer != nil {
		timer.Cancel()
	}
}

// SetTimer installs the session's live countdown, cancelling any previous
// one. At most one countdown runs per session.
func (s *Session) SetTimer(t *Countdown) {
	s.mu.Lock()
	prev := s.timer
	s.timer = t
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
}

// CancelTimer idempotently cancels whatever countdown is installed.
func (s *Session) CancelTimer() {
	s.mu.Lock()
	timer := s.timer
	s.timer = nil
	s.mu.Unlock()

	if timer != nil {
		timer.Cancel()
	}
}

func (s *Session) SetMessageID(id int) {
	s.mu.Lock()
	s.messageID = id
	s.mu.Unlock()
}

func (s *Session) MessageID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageID
}

// Participants returns a snapshot of the roster in join order.
func (s *Session) Participants() []Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() []Participant {
	out := make([]Participant, 0, len(s.joinOrder))
	for _, id := range s.joinOrder {
		out = append(out, *s.participants[id])
	}
	return out
}

// HasAnswered reports whether a participant answered the open question.
func (s *Session) HasAnswered(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.answered[userID]
	return ok
}
