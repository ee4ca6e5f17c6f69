package handlers

import (
	"strconv"
	"sync"
	"time"

	"github.com/winequiz/quiz_bot/internal/config"
	"github.com/winequiz/quiz_bot/internal/models"
	"github.com/winequiz/quiz_bot/internal/quiz"
	"github.com/winequiz/quiz_bot/internal/repositories"
	"github.com/winequiz/quiz_bot/pkg/logger"
)

// QuestionSource supplies randomized question sets. Implemented by
// repositories.QuestionRepository; tests swap in a fixed bank.
type QuestionSource interface {
	RandomQuestions(count int, category, region string) ([]quiz.Question, error)
	PoolSize(category, region string) (int, error)
	Categories() ([]string, error)
	Regions(category string) ([]string, error)
}

// StatsSink receives end-of-game aggregates. Failures are logged at the call
// site and never block result delivery.
type StatsSink interface {
	RecordPersonalResult(userID int64, username, firstName string, totalAnswered, correctCount int) error
	RecordGroupGame(chatID int64, chatTitle string, totalQuestions int, participants []repositories.GroupResult, winner *repositories.WinnerResult) error
	GetUserStats(userID int64) (*models.User, error)
	GetTopUsers(limit int) ([]models.User, error)
	AllUsers() ([]models.User, error)
	TotalStats() (int64, int64, error)
}

// SettingsStore holds admin-tunable runtime settings.
type SettingsStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// BotInterface is the slice of the transport the handlers need. Kept as an
// interface to avoid a circular dependency on the telegram package and to
// let tests run against a fake.
type BotInterface interface {
	SendMessage(chatID int64, text string, keyboard interface{}) int
	EditMessage(chatID int64, messageID int, text string, keyboard interface{})
	DeleteMessage(chatID int64, messageID int)
	AnswerCallbackQuery(queryID string, text string, showAlert bool)
	SendDocument(chatID int64, filename string, data []byte, caption string)
	GetChatTitle(chatID int64) string
}

// quizSetup is the organizer's in-progress menu selection, before a session
// exists for the chat.
type quizSetup struct {
	OrganizerID int64
	Category    string
	Region      string
	MessageID   int
}

type HandlerManager struct {
	Config   *config.Config
	Groups   *quiz.Registry
	Solos    *quiz.Registry
	Quests   QuestionSource
	Stats    StatsSink
	Settings SettingsStore

	setups   map[int64]*quizSetup // chatID (group) or userID (solo)
	setupsMu sync.Mutex

	// tickUnit scales every configured second into real time. Production
	// keeps time.Second; tests shrink it to run countdowns in milliseconds.
	tickUnit time.Duration
}

func NewHandlerManager(
	cfg *config.Config,
	questions QuestionSource,
	stats StatsSink,
	settings SettingsStore,
) *HandlerManager {
	return &HandlerManager{
		Config:   cfg,
		Groups:   quiz.NewRegistry(),
		Solos:    quiz.NewRegistry(),
		Quests:   questions,
		Stats:    stats,
		Settings: settings,
		setups:   make(map[int64]*quizSetup),
		tickUnit: time.Second,
	}
}

func (h *HandlerManager) joinDuration() time.Duration {
	return time.Duration(h.Config.JoinTimeout) * h.tickUnit
}

func (h *HandlerManager) questionDuration() time.Duration {
	return time.Duration(h.questionSeconds()) * h.tickUnit
}

func (h *HandlerManager) resultPause() time.Duration {
	return time.Duration(h.Config.ResultPauseSeconds) * h.tickUnit
}

func (h *HandlerManager) getSetup(key int64) (*quizSetup, bool) {
	h.setupsMu.Lock()
	defer h.setupsMu.Unlock()
	s, ok := h.setups[key]
	return s, ok
}

func (h *HandlerManager) putSetup(key int64, s *quizSetup) {
	h.setupsMu.Lock()
	h.setups[key] = s
	h.setupsMu.Unlock()
}

func (h *HandlerManager) clearSetup(key int64) {
	h.setupsMu.Lock()
	delete(h.setups, key)
	h.setupsMu.Unlock()
}

// questionSeconds resolves the per-question time, preferring the runtime
// setting over the configured default.
func (h *HandlerManager) questionSeconds() int {
	if h.Settings != nil {
		if raw, err := h.Settings.Get(models.SettingTimePerQuestion); err == nil && raw != "" {
			if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
				return secs
			}
			logger.Warn("Ignoring invalid time_per_question setting", "value", raw)
		}
	}
	return h.Config.TimePerQuestion
}

// IsAdmin reports whether the user is the configured administrator.
func (h *HandlerManager) IsAdmin(userID int64) bool {
	return h.Config.AdminTelegramID != 0 && userID == h.Config.AdminTelegramID
}
