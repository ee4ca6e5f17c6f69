package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/winequiz/quiz_bot/internal/models"
	"github.com/winequiz/quiz_bot/internal/security"
	"github.com/winequiz/quiz_bot/pkg/logger"
)

// Admin commands, gated on ADMIN_TELEGRAM_ID. All of them run in the admin's
// private chat.

// HandleAdminStats handles /admin_stats: global totals.
func (h *HandlerManager) HandleAdminStats(userID int64, bot BotInterface) {
	if !h.IsAdmin(userID) {
		return
	}

	users, answers, err := h.Stats.TotalStats()
	if err != nil {
		logger.Error("Failed to load global stats", "error", err)
		bot.SendMessage(userID, "❌ Failed to load stats.", nil)
		return
	}

	bot.SendMessage(userID, fmt.Sprintf(
		"📈 <b>Bot stats</b>\n\nPlayers: %d\nQuestions answered: %d\nTime per question: %ds",
		users, answers, h.questionSeconds()), nil)
}

// HandleTopPlayers handles /top_players: the ten best players by accuracy.
func (h *HandlerManager) HandleTopPlayers(userID int64, bot BotInterface) {
	if !h.IsAdmin(userID) {
		return
	}

	users, err := h.Stats.GetTopUsers(10)
	if err != nil {
		logger.Error("Failed to load top users", "error", err)
		bot.SendMessage(userID, "❌ Failed to load top players.", nil)
		return
	}
	if len(users) == 0 {
		bot.SendMessage(userID, "Nobody has played yet.", nil)
		return
	}

	var b strings.Builder
	b.WriteString("🏆 <b>Top players</b>\n\n")
	for i, u := range users {
		name := u.Username
		if name == "" {
			name = u.FirstName
		}
		fmt.Fprintf(&b, "%s %s — %d/%d (%.0f%%)\n",
			placeMedal(i+1), security.SanitizeDisplayName(name),
			u.CorrectAnswers, u.TotalQuestions, u.SuccessRate())
	}
	bot.SendMessage(userID, b.String(), nil)
}

// HandleSetTime handles /set_time <seconds>: runtime override of the
// per-question timer, persisted in the settings table.
func (h *HandlerManager) HandleSetTime(userID int64, args string, bot BotInterface) {
	if !h.IsAdmin(userID) {
		return
	}

	secs, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || secs < 5 || secs > 120 {
		bot.SendMessage(userID, "Usage: /set_time <seconds> (5–120)", nil)
		return
	}

	if err := h.Settings.Set(models.SettingTimePerQuestion, strconv.Itoa(secs)); err != nil {
		logger.Error("Failed to store setting", "error", err, "key", models.SettingTimePerQuestion)
		bot.SendMessage(userID, "❌ Failed to save the setting.", nil)
		return
	}

	logger.Info("Question time updated", "seconds", secs, "admin_id", userID)
	bot.SendMessage(userID, fmt.Sprintf("✅ Time per question set to %d seconds. New games will use it.", secs), nil)
}

// HandleExportStats handles /export_stats: full user table as a CSV document.
func (h *HandlerManager) HandleExportStats(userID int64, bot BotInterface) {
	if !h.IsAdmin(userID) {
		return
	}

	users, err := h.Stats.AllUsers()
	if err != nil {
		logger.Error("Failed to export users", "error", err)
		bot.SendMessage(userID, "❌ Failed to export stats.", nil)
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"user_id", "username", "first_name", "quizzes_completed", "total_questions", "correct_answers", "accuracy_pct", "last_active"})
	for _, u := range users {
		_ = w.Write([]string{
			strconv.FormatInt(u.UserID, 10),
			u.Username,
			u.FirstName,
			strconv.Itoa(u.QuizzesCompleted),
			strconv.Itoa(u.TotalQuestions),
			strconv.Itoa(u.CorrectAnswers),
			fmt.Sprintf("%.1f", u.SuccessRate()),
			u.LastActive.Format(time.RFC3339),
		})
	}
	w.Flush()

	filename := fmt.Sprintf("quiz_stats_%s.csv", time.Now().Format("2006-01-02"))
	bot.SendDocument(userID, filename, buf.Bytes(), fmt.Sprintf("📊 %d players", len(users)))
}
