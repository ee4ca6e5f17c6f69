package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/winequiz/quiz_bot/internal/config"
	"github.com/winequiz/quiz_bot/internal/handlers"
	"github.com/winequiz/quiz_bot/internal/middleware"
	"github.com/winequiz/quiz_bot/internal/repositories"
	"github.com/winequiz/quiz_bot/pkg/logger"
	"gorm.io/gorm"
)

const workerCount = 10

type Bot struct {
	api      *tgbotapi.BotAPI
	config   *config.Config
	db       *gorm.DB
	handlers *handlers.HandlerManager
	limiter  *middleware.RateLimiter

	// Worker pool for parallel processing
	workerChans []chan tgbotapi.Update
}

func InitBot(cfg *config.Config, db *gorm.DB) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	if cfg.AppEnv == "development" {
		api.Debug = true
	}

	logger.Info("Authorized on account", "username", api.Self.UserName)

	questionRepo := repositories.NewQuestionRepository(db)
	statsRepo := repositories.NewStatsRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)

	handlerMgr := handlers.NewHandlerManager(cfg, questionRepo, statsRepo, settingsRepo)

	bot := &Bot{
		api:         api,
		config:      cfg,
		db:          db,
		handlers:    handlerMgr,
		limiter:     middleware.NewRateLimiter(cfg.RateLimitPerUser, time.Minute),
		workerChans: make([]chan tgbotapi.Update, workerCount),
	}

	for i := 0; i < workerCount; i++ {
		bot.workerChans[i] = make(chan tgbotapi.Update, 100)
		go bot.startWorker(bot.workerChans[i])
	}

	go bot.startUpdateListener()

	return bot, nil
}

func (b *Bot) startUpdateListener() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for {
		logger.Info("Starting update listener...")
		updates := b.api.GetUpdatesChan(u)

		for update := range updates {
			// Hash by chat so one game's updates are processed in order.
			var chatID int64
			if update.Message != nil {
				chatID = update.Message.Chat.ID
			} else if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
				chatID = update.CallbackQuery.Message.Chat.ID
			}

			if chatID != 0 {
				workerIdx := chatID % int64(len(b.workerChans))
				if workerIdx < 0 {
					workerIdx = -workerIdx
				}
				b.workerChans[workerIdx] <- update
			} else {
				go b.handleUpdate(update)
			}
		}

		logger.Warn("Update channel closed. Restarting in 5 seconds...")
		time.Sleep(5 * time.Second)
	}
}

func (b *Bot) startWorker(ch chan tgbotapi.Update) {
	for update := range ch {
		b.handleUpdate(update)
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in handleUpdate", "error", r)
		}
	}()

	if update.Message != nil {
		b.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	userID := message.From.ID

	if !b.limiter.Allow(userID) {
		logger.Warn("Rate limit exceeded", "user_id", userID)
		return
	}

	logger.Debug("Received message",
		"user_id", userID,
		"chat_id", message.Chat.ID,
		"text", message.Text,
	)

	if message.IsCommand() {
		b.handleCommand(message)
	}
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID
	isGroup := message.Chat.IsGroup() || message.Chat.IsSuperGroup()

	switch message.Command() {
	case "start":
		if isGroup {
			b.sendMessage(chatID, "🍷 Hi! Start a wine trivia game here with /quiz.", nil)
		} else {
			b.sendMessage(chatID,
				"🍷 <b>Welcome to Wine Trivia!</b>\n\n"+
					"/quiz — play a quiz\n"+
					"/stop — stop the current quiz\n"+
					"/mystats — your stats\n\n"+
					"Add me to a group and send /quiz there to play with friends!", nil)
		}

	case "quiz":
		if isGroup {
			b.handlers.StartGroupQuizSetup(chatID, userID, b)
		} else {
			b.handlers.StartSoloQuizSetup(userID, b)
		}

	case "stop_quiz":
		if isGroup {
			b.handlers.StopGroupQuiz(chatID, userID, b)
		}

	case "stop":
		if !isGroup {
			b.handlers.StopSoloQuiz(userID, b)
		}

	case "score":
		if isGroup {
			b.handlers.ShowGroupScore(chatID, b)
		}

	case "mystats":
		if !isGroup {
			b.handlers.ShowPersonalStats(userID, b)
		}

	case "help":
		if isGroup {
			b.sendMessage(chatID, "🍷 /quiz — start a game\n/score — current standings\n/stop_quiz — stop the game", nil)
		} else {
			b.sendMessage(chatID, "🍷 /quiz — play a quiz\n/stop — stop it\n/mystats — your stats", nil)
		}

	case "admin_stats":
		b.handlers.HandleAdminStats(userID, b)

	case "top_players":
		b.handlers.HandleTopPlayers(userID, b)

	case "set_time":
		b.handlers.HandleSetTime(userID, message.CommandArguments(), b)

	case "export_stats":
		b.handlers.HandleExportStats(userID, b)
	}
}

func (b *Bot) sendMessage(chatID int64, text string, keyboard interface{}) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	switch kb := keyboard.(type) {
	case tgbotapi.ReplyKeyboardMarkup:
		msg.ReplyMarkup = kb
	case tgbotapi.InlineKeyboardMarkup:
		msg.ReplyMarkup = kb
	case tgbotapi.ReplyKeyboardRemove:
		msg.ReplyMarkup = kb
	}

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		sentMsg, err := b.api.Send(msg)
		if err != nil {
			logger.Error("Failed to send message", "error", err, "chat_id", chatID, "attempt", i+1)

			if strings.Contains(err.Error(), "connection reset") ||
				strings.Contains(err.Error(), "timeout") ||
				strings.Contains(err.Error(), "network is unreachable") {
				time.Sleep(time.Duration(i+1) * time.Second)
				continue
			}
			return 0
		}
		return sentMsg.MessageID
	}
	return 0
}

func (b *Bot) SendMessage(chatID int64, text string, keyboard interface{}) int {
	return b.sendMessage(chatID, text, keyboard)
}

func (b *Bot) DeleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	deleteMsg := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := b.api.Request(deleteMsg); err != nil {
		logger.Error("Failed to delete message", "chat_id", chatID, "msg_id", messageID, "error", err)
	}
}

// EditMessage edits in place. Failures are cosmetic (countdown refreshes,
// reveals): logged and dropped, the game goes on.
func (b *Bot) EditMessage(chatID int64, messageID int, text string, keyboard interface{}) {
	if messageID == 0 {
		return
	}
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if keyboard != nil {
		if kb, ok := keyboard.(tgbotapi.InlineKeyboardMarkup); ok {
			msg.ReplyMarkup = &kb
		}
	}

	if _, err := b.api.Send(msg); err != nil {
		logger.Debug("Failed to edit message", "error", err, "chat_id", chatID, "message_id", messageID)
	}
}

func (b *Bot) AnswerCallbackQuery(queryID string, text string, showAlert bool) {
	callback := tgbotapi.NewCallback(queryID, text)
	callback.ShowAlert = showAlert
	if _, err := b.api.Request(callback); err != nil {
		logger.Debug("Failed to answer callback", "error", err)
	}
}

func (b *Bot) SendDocument(chatID int64, filename string, data []byte, caption string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = caption
	if _, err := b.api.Send(doc); err != nil {
		logger.Error("Failed to send document", "error", err, "chat_id", chatID)
	}
}

func (b *Bot) GetChatTitle(chatID int64) string {
	chat, err := b.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		logger.Debug("Failed to get chat title", "error", err, "chat_id", chatID)
		return ""
	}
	return chat.Title
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}
