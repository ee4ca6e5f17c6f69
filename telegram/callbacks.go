package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/winequiz/quiz_bot/pkg/logger"
)

// handleCallbackQuery routes inline keyboard presses. Group flow data starts
// with g, solo flow with s; the payload after the prefix is colon-separated.
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if query.From == nil || query.Message == nil {
		return
	}

	userID := query.From.ID
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	data := query.Data

	if !b.limiter.Allow(userID) {
		b.AnswerCallbackQuery(query.ID, "Slow down a little!", false)
		return
	}

	logger.Debug("Received callback", "user_id", userID, "chat_id", chatID, "data", data)

	username := query.From.UserName
	firstName := query.From.FirstName

	switch {
	// Group flow
	case strings.HasPrefix(data, "gcat:"):
		b.handlers.HandleGroupCategory(chatID, userID, query.ID, strings.TrimPrefix(data, "gcat:"), b)

	case strings.HasPrefix(data, "gregion:"):
		b.handlers.HandleGroupRegion(chatID, userID, query.ID, strings.TrimPrefix(data, "gregion:"), b)

	case strings.HasPrefix(data, "gcount:"):
		count, err := strconv.Atoi(strings.TrimPrefix(data, "gcount:"))
		if err != nil {
			b.AnswerCallbackQuery(query.ID, "Invalid selection", false)
			return
		}
		b.handlers.HandleGroupCount(chatID, userID, query.ID, count, b)

	case data == "gjoin":
		b.handlers.HandleGroupJoin(chatID, userID, username, firstName, query.ID, b)

	case data == "gstart_now":
		b.handlers.HandleGroupStartNow(chatID, userID, query.ID, b)

	case strings.HasPrefix(data, "ganswer:"):
		idx, choice, ok := parseAnswerData(strings.TrimPrefix(data, "ganswer:"))
		if !ok {
			b.AnswerCallbackQuery(query.ID, "Invalid answer", false)
			return
		}
		b.handlers.HandleGroupAnswer(chatID, userID, username, firstName, query.ID, idx, choice, b)

	case strings.HasPrefix(data, "gexpl:"):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, "gexpl:"))
		if err != nil {
			b.AnswerCallbackQuery(query.ID, "Invalid selection", false)
			return
		}
		b.handlers.HandleGroupExplanation(chatID, userID, messageID, query.ID, idx, b)

	case data == "gexpl_all":
		b.handlers.HandleGroupExplainAll(chatID, userID, messageID, query.ID, b)

	case data == "gnew":
		b.handlers.HandleGroupNew(chatID, userID, query.ID, b)

	// Solo flow
	case strings.HasPrefix(data, "scat:"):
		b.handlers.HandleSoloCategory(userID, query.ID, strings.TrimPrefix(data, "scat:"), b)

	case strings.HasPrefix(data, "sregion:"):
		b.handlers.HandleSoloRegion(userID, query.ID, strings.TrimPrefix(data, "sregion:"), b)

	case strings.HasPrefix(data, "scount:"):
		count, err := strconv.Atoi(strings.TrimPrefix(data, "scount:"))
		if err != nil {
			b.AnswerCallbackQuery(query.ID, "Invalid selection", false)
			return
		}
		b.handlers.HandleSoloCount(userID, username, firstName, query.ID, count, b)

	case strings.HasPrefix(data, "sanswer:"):
		idx, choice, ok := parseAnswerData(strings.TrimPrefix(data, "sanswer:"))
		if !ok {
			b.AnswerCallbackQuery(query.ID, "Invalid answer", false)
			return
		}
		b.handlers.HandleSoloAnswer(userID, query.ID, idx, choice, b)

	case strings.HasPrefix(data, "sexpl:"):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, "sexpl:"))
		if err != nil {
			b.AnswerCallbackQuery(query.ID, "Invalid selection", false)
			return
		}
		b.handlers.HandleSoloExplanation(userID, messageID, query.ID, idx, b)

	case data == "sexpl_all":
		b.handlers.HandleSoloExplainAll(userID, messageID, query.ID, b)

	case data == "snew":
		b.handlers.HandleSoloNew(userID, query.ID, b)

	default:
		logger.Debug("Unknown callback data", "data", data)
		b.AnswerCallbackQuery(query.ID, "", false)
	}
}

// parseAnswerData splits "<questionIndex>:<option>".
func parseAnswerData(payload string) (int, string, bool) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	idx, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}
	return idx, parts[1], true
}
