package handlers

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/winequiz/quiz_bot/internal/config"
	"github.com/winequiz/quiz_bot/internal/models"
	"github.com/winequiz/quiz_bot/internal/quiz"
	"github.com/winequiz/quiz_bot/internal/repositories"
	"github.com/winequiz/quiz_bot/pkg/errors"
)

// Fakes. The flows run real countdowns scaled to milliseconds via tickUnit.

type sentMessage struct {
	ChatID int64
	Text   string
}

type fakeBot struct {
	mu        sync.Mutex
	sent      []sentMessage
	edits     []sentMessage
	callbacks []string
	nextMsgID int
}

func (b *fakeBot) SendMessage(chatID int64, text string, keyboard interface{}) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{chatID, text})
	b.nextMsgID++
	return b.nextMsgID
}

func (b *fakeBot) EditMessage(chatID int64, messageID int, text string, keyboard interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.edits = append(b.edits, sentMessage{chatID, text})
}

func (b *fakeBot) DeleteMessage(chatID int64, messageID int) {}

func (b *fakeBot) AnswerCallbackQuery(queryID string, text string, showAlert bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callbacks = append(b.callbacks, text)
}

func (b *fakeBot) SendDocument(chatID int64, filename string, data []byte, caption string) {}

func (b *fakeBot) GetChatTitle(chatID int64) string { return "Test Chat" }

func (b *fakeBot) lastCallback() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.callbacks) == 0 {
		return ""
	}
	return b.callbacks[len(b.callbacks)-1]
}

func (b *fakeBot) sentContaining(substr string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.sent {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}
	for _, m := range b.edits {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}
	return false
}

type fakeQuestions struct {
	bank []quiz.Question
}

func (f *fakeQuestions) RandomQuestions(count int, category, region string) ([]quiz.Question, error) {
	if count > len(f.bank) {
		count = len(f.bank)
	}
	return f.bank[:count], nil
}

func (f *fakeQuestions) PoolSize(category, region string) (int, error) {
	return len(f.bank), nil
}

func (f *fakeQuestions) Categories() ([]string, error) {
	return []string{"france"}, nil
}

func (f *fakeQuestions) Regions(category string) ([]string, error) {
	return []string{"bordeaux"}, nil
}

type personalResult struct {
	UserID  int64
	Total   int
	Correct int
}

type fakeStats struct {
	mu         sync.Mutex
	personal   []personalResult
	groupGames int
}

func (f *fakeStats) RecordPersonalResult(userID int64, username, firstName string, totalAnswered, correctCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.personal = append(f.personal, personalResult{userID, totalAnswered, correctCount})
	return nil
}

func (f *fakeStats) RecordGroupGame(chatID int64, chatTitle string, totalQuestions int, participants []repositories.GroupResult, winner *repositories.WinnerResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groupGames++
	return nil
}

func (f *fakeStats) GetUserStats(userID int64) (*models.User, error) {
	return nil, errors.New(errors.ErrCodeNotFound, "user not found")
}

func (f *fakeStats) GetTopUsers(limit int) ([]models.User, error) { return nil, nil }
func (f *fakeStats) AllUsers() ([]models.User, error)             { return nil, nil }
func (f *fakeStats) TotalStats() (int64, int64, error)            { return 0, 0, nil }

func (f *fakeStats) personalCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.personal)
}

func (f *fakeStats) groupGameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groupGames
}

type fakeSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func (f *fakeSettings) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key], nil
}

func (f *fakeSettings) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = value
	return nil
}

func testBank(n int) []quiz.Question {
	out := make([]quiz.Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, quiz.Question{
			Text:          fmt.Sprintf("question %d", i+1),
			Options:       map[string]string{"a": "A", "b": "B", "c": "C", "d": "D"},
			CorrectOption: "a",
			Category:      "france",
			Region:        "bordeaux",
		})
	}
	return out
}

func newTestManager(bank int) (*HandlerManager, *fakeBot, *fakeStats) {
	cfg := &config.Config{
		TimePerQuestion:    40,
		JoinTimeout:        30,
		MinQuestions:       2,
		MinParticipants:    1,
		ResultPauseSeconds: 2,
		AdminTelegramID:    777,
	}
	stats := &fakeStats{}
	h := NewHandlerManager(cfg, &fakeQuestions{bank: testBank(bank)}, stats, &fakeSettings{})
	h.tickUnit = time.Millisecond
	return h, &fakeBot{}, stats
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// runSetup drives the menu flow up to session creation.
func runSetup(h *HandlerManager, bot *fakeBot, chatID, organizer int64, count int) {
	h.StartGroupQuizSetup(chatID, organizer, bot)
	h.HandleGroupCategory(chatID, organizer, "q1", "france", bot)
	h.HandleGroupRegion(chatID, organizer, "q2", "bordeaux", bot)
	h.HandleGroupCount(chatID, organizer, "q3", count, bot)
}

func TestGroupRegistrationExpiryWithoutPlayersTerminates(t *testing.T) {
	h, bot, _ := newTestManager(5)
	runSetup(h, bot, 10, 100, 3)

	if !h.Groups.HasLive(10) {
		t.Fatal("no live session after setup")
	}

	// Nobody joins; registration (30 ticks) must expire and tear down.
	waitFor(t, time.Second, func() bool {
		_, ok := h.Groups.Get(10)
		return !ok
	})

	if !bot.sentContaining("quiz cancelled") {
		t.Error("cancellation notice was not sent")
	}
}

func TestGroupSetupBlockedWhenPoolTooSmall(t *testing.T) {
	h, bot, _ := newTestManager(1) // pool of 1, MinQuestions 2
	h.StartGroupQuizSetup(10, 100, bot)
	h.HandleGroupCategory(10, 100, "q1", "france", bot)
	h.HandleGroupRegion(10, 100, "q2", "bordeaux", bot)

	if h.Groups.HasLive(10) {
		t.Error("session created despite a too-small pool")
	}
	if !bot.sentContaining("Not enough questions") {
		t.Error("pool-size rejection was not shown")
	}
}

func TestGroupSetupOnlyOrganizerPicks(t *testing.T) {
	h, bot, _ := newTestManager(5)
	h.StartGroupQuizSetup(10, 100, bot)

	h.HandleGroupCategory(10, 999, "q1", "france", bot)
	if got := bot.lastCallback(); !strings.Contains(got, "organizer") {
		t.Errorf("non-organizer pick answered with %q", got)
	}
}

func TestGroupSecondQuizBlockedWhileLive(t *testing.T) {
	h, bot, _ := newTestManager(5)
	runSetup(h, bot, 10, 100, 3)

	h.StartGroupQuizSetup(10, 200, bot)
	if !bot.sentContaining("already running") {
		t.Error("second /quiz was not rejected")
	}
}

func TestGroupFullGame(t *testing.T) {
	h, bot, stats := newTestManager(5)
	runSetup(h, bot, 10, 100, 2)

	session, ok := h.Groups.Get(10)
	if !ok {
		t.Fatal("session missing after setup")
	}

	h.HandleGroupJoin(10, 1, "alice", "Alice", "q4", bot)
	h.HandleGroupJoin(10, 2, "bob", "Bob", "q5", bot)
	h.HandleGroupStartNow(10, 100, "q6", bot)

	// Answer both questions as they open; the countdown early-exits once
	// everyone has answered.
	for q := 0; q < 2; q++ {
		idx := q
		waitFor(t, time.Second, func() bool {
			return session.State() == quiz.StateQuestionOpen && session.Cursor() == idx
		})
		h.HandleGroupAnswer(10, 1, "alice", "Alice", "a1", idx, "a", bot)
		h.HandleGroupAnswer(10, 2, "bob", "Bob", "a2", idx, "b", bot)
	}

	waitFor(t, time.Second, func() bool {
		return session.State() == quiz.StateFinished
	})

	waitFor(t, time.Second, func() bool {
		return stats.personalCount() == 2 && stats.groupGameCount() == 1
	})
	if !bot.sentContaining("Quiz finished") {
		t.Error("final standings were not sent")
	}

	board := session.Leaderboard()
	if board[0].UserID != 1 || board[0].CorrectCount != 2 {
		t.Errorf("winner = user %d with %d correct, want alice with 2", board[0].UserID, board[0].CorrectCount)
	}
}

func TestGroupStaleAnswerRejected(t *testing.T) {
	h, bot, _ := newTestManager(5)
	runSetup(h, bot, 10, 100, 3)

	session, _ := h.Groups.Get(10)
	h.HandleGroupJoin(10, 1, "alice", "Alice", "q4", bot)
	h.HandleGroupStartNow(10, 100, "q5", bot)

	waitFor(t, time.Second, func() bool {
		return session.State() == quiz.StateQuestionOpen
	})

	h.HandleGroupAnswer(10, 1, "alice", "Alice", "a1", 2, "a", bot)
	if got := bot.lastCallback(); !strings.Contains(got, "already over") {
		t.Errorf("stale answer answered with %q", got)
	}

	p, _ := session.Participant(1)
	if len(p.Answers) != 0 {
		t.Error("stale answer was recorded")
	}
}

func TestGroupDuplicateAnswerFeedback(t *testing.T) {
	h, bot, _ := newTestManager(5)
	runSetup(h, bot, 10, 100, 3)

	session, _ := h.Groups.Get(10)
	h.HandleGroupJoin(10, 1, "alice", "Alice", "q4", bot)
	h.HandleGroupJoin(10, 2, "bob", "Bob", "q5", bot)
	h.HandleGroupStartNow(10, 100, "q6", bot)

	waitFor(t, time.Second, func() bool {
		return session.State() == quiz.StateQuestionOpen
	})

	h.HandleGroupAnswer(10, 1, "alice", "Alice", "a1", 0, "a", bot)
	h.HandleGroupAnswer(10, 1, "alice", "Alice", "a2", 0, "b", bot)

	if got := bot.lastCallback(); !strings.Contains(got, "already answered") {
		t.Errorf("duplicate answer answered with %q", got)
	}
}

func TestGroupLateJoinViaAnswer(t *testing.T) {
	h, bot, _ := newTestManager(5)
	runSetup(h, bot, 10, 100, 3)

	session, _ := h.Groups.Get(10)
	h.HandleGroupJoin(10, 1, "alice", "Alice", "q4", bot)
	h.HandleGroupStartNow(10, 100, "q5", bot)

	waitFor(t, time.Second, func() bool {
		return session.State() == quiz.StateQuestionOpen
	})

	idx := session.Cursor()
	h.HandleGroupAnswer(10, 2, "bob", "Bob", "a1", idx, "a", bot)

	p, ok := session.Participant(2)
	if !ok {
		t.Fatal("late joiner was not added to the roster")
	}
	if len(p.Answers) != 1 {
		t.Error("late joiner's answer was not recorded")
	}
}

func TestGroupStopRecordsPartialResults(t *testing.T) {
	h, bot, stats := newTestManager(5)
	runSetup(h, bot, 10, 100, 3)

	session, _ := h.Groups.Get(10)
	h.HandleGroupJoin(10, 1, "alice", "Alice", "q4", bot)
	h.HandleGroupStartNow(10, 100, "q5", bot)

	waitFor(t, time.Second, func() bool {
		return session.State() == quiz.StateQuestionOpen
	})
	h.HandleGroupAnswer(10, 1, "alice", "Alice", "a1", 0, "a", bot)

	// Let the first question close so the answer counts.
	waitFor(t, time.Second, func() bool {
		return session.Cursor() >= 1 || session.Finished()
	})

	h.StopGroupQuiz(10, 100, bot)

	if _, ok := h.Groups.Get(10); ok {
		t.Error("session still registered after /stop_quiz")
	}
	waitFor(t, time.Second, func() bool {
		return stats.personalCount() == 1
	})
	got := stats.personal[0]
	if got.UserID != 1 || got.Total != 1 || got.Correct != 1 {
		t.Errorf("partial result = %+v, want user 1 with 1/1", got)
	}
}

func TestGroupStopRequiresOrganizer(t *testing.T) {
	h, bot, _ := newTestManager(5)
	runSetup(h, bot, 10, 100, 3)

	h.StopGroupQuiz(10, 999, bot)
	if _, ok := h.Groups.Get(10); !ok {
		t.Error("stranger stopped the quiz")
	}

	// The admin may always stop.
	h.StopGroupQuiz(10, 777, bot)
	if _, ok := h.Groups.Get(10); ok {
		t.Error("admin could not stop the quiz")
	}
}

func TestSoloFullGame(t *testing.T) {
	h, bot, stats := newTestManager(5)

	h.StartSoloQuizSetup(50, bot)
	h.HandleSoloCategory(50, "q1", "*", bot)
	h.HandleSoloCount(50, "carol", "Carol", "q2", 2, bot)

	session, ok := h.Solos.Get(50)
	if !ok {
		t.Fatal("solo session missing")
	}

	for q := 0; q < 2; q++ {
		idx := q
		waitFor(t, time.Second, func() bool {
			return session.State() == quiz.StateQuestionOpen && session.Cursor() == idx
		})
		h.HandleSoloAnswer(50, "a1", idx, "a", bot)
	}

	waitFor(t, time.Second, func() bool {
		return session.State() == quiz.StateFinished
	})
	waitFor(t, time.Second, func() bool {
		return stats.personalCount() == 1
	})

	got := stats.personal[0]
	if got.UserID != 50 || got.Total != 2 || got.Correct != 2 {
		t.Errorf("solo result = %+v, want user 50 with 2/2", got)
	}
	if !bot.sentContaining("Quiz finished") {
		t.Error("solo result message was not sent")
	}
}

func TestSoloUnansweredQuestionNullFills(t *testing.T) {
	h, bot, _ := newTestManager(5)

	h.StartSoloQuizSetup(50, bot)
	h.HandleSoloCategory(50, "q1", "*", bot)
	h.HandleSoloCount(50, "carol", "Carol", "q2", 2, bot)

	session, _ := h.Solos.Get(50)

	// Answer nothing; both questions expire on their own.
	waitFor(t, 2*time.Second, func() bool {
		return session.State() == quiz.StateFinished
	})

	p, _ := session.Participant(50)
	if p.TotalAnswered != 2 || p.CorrectCount != 0 {
		t.Errorf("aggregates = %d/%d, want 0/2", p.CorrectCount, p.TotalAnswered)
	}
	for _, rec := range p.Answers {
		if !rec.TimedOut() {
			t.Error("expired question should hold a timed-out record")
		}
	}
}

func TestQuestionSecondsPrefersSetting(t *testing.T) {
	h, _, _ := newTestManager(5)

	if got := h.questionSeconds(); got != 40 {
		t.Errorf("default questionSeconds() = %d, want 40", got)
	}

	h.Settings.Set(models.SettingTimePerQuestion, "25")
	if got := h.questionSeconds(); got != 25 {
		t.Errorf("questionSeconds() = %d, want 25 from settings", got)
	}

	h.Settings.Set(models.SettingTimePerQuestion, "garbage")
	if got := h.questionSeconds(); got != 40 {
		t.Errorf("questionSeconds() = %d, want fallback 40", got)
	}
}

func TestAdminCommandsGated(t *testing.T) {
	h, bot, _ := newTestManager(5)

	h.HandleSetTime(123, "30", bot)
	if v, _ := h.Settings.Get(models.SettingTimePerQuestion); v != "" {
		t.Error("non-admin changed a setting")
	}

	h.HandleSetTime(777, "30", bot)
	if v, _ := h.Settings.Get(models.SettingTimePerQuestion); v != "30" {
		t.Errorf("setting = %q, want 30", v)
	}
}
