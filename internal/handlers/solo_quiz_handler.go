package handlers

import (
	"fmt"
	"time"

	"github.com/winequiz/quiz_bot/internal/quiz"
	"github.com/winequiz/quiz_bot/internal/security"
	apperrors "github.com/winequiz/quiz_bot/pkg/errors"
	"github.com/winequiz/quiz_bot/pkg/logger"
)

// Solo quiz flow: the same session machine with exactly one participant and
// no registration phase. Sessions are keyed by user id in their own registry.

// StartSoloQuizSetup begins the menu flow for /quiz in a private chat.
func (h *HandlerManager) StartSoloQuizSetup(userID int64, bot BotInterface) {
	if h.Solos.HasLive(userID) {
		bot.SendMessage(userID, "⚠️ You already have a quiz going. Finish it or send /stop.", nil)
		return
	}

	categories, err := h.Quests.Categories()
	if err != nil {
		logger.Error("Failed to load categories", "error", err, "user_id", userID)
		bot.SendMessage(userID, "❌ Something went wrong, try again later.", nil)
		return
	}

	setup := &quizSetup{OrganizerID: userID}
	h.putSetup(userID, setup)

	msgID := bot.SendMessage(userID, "🍷 <b>Wine Trivia</b>\n\nPick a category:", categoryKeyboard(categories, "s"))
	setup.MessageID = msgID
}

func (h *HandlerManager) HandleSoloCategory(userID int64, queryID, category string, bot BotInterface) {
	setup, ok := h.getSetup(userID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "Start a new quiz with /quiz", false)
		return
	}

	if category == "*" {
		category = ""
	}
	setup.Category = category

	if category == "" {
		h.showSoloCountMenu(userID, setup, queryID, bot)
		return
	}

	regions, err := h.Quests.Regions(category)
	if err != nil {
		logger.Error("Failed to load regions", "error", err, "category", category)
		bot.AnswerCallbackQuery(queryID, "Something went wrong", true)
		return
	}

	bot.AnswerCallbackQuery(queryID, "", false)
	bot.EditMessage(userID, setup.MessageID,
		fmt.Sprintf("🍷 <b>Wine Trivia</b> — %s\n\nPick a region:", formatCategoryTitle(category)),
		regionKeyboard(regions, "s"))
}

func (h *HandlerManager) HandleSoloRegion(userID int64, queryID, region string, bot BotInterface) {
	setup, ok := h.getSetup(userID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "Start a new quiz with /quiz", false)
		return
	}

	if region == "*" {
		region = ""
	}
	setup.Region = region

	h.showSoloCountMenu(userID, setup, queryID, bot)
}

func (h *HandlerManager) showSoloCountMenu(userID int64, setup *quizSetup, queryID string, bot BotInterface) {
	pool, err := h.Quests.PoolSize(setup.Category, setup.Region)
	if err != nil {
		logger.Error("Failed to count question pool", "error", err)
		bot.AnswerCallbackQuery(queryID, "Something went wrong", true)
		return
	}

	if pool < h.Config.MinQuestions {
		bot.AnswerCallbackQuery(queryID, "", false)
		bot.EditMessage(userID, setup.MessageID,
			fmt.Sprintf("😕 Not enough questions for this selection (%d available, %d needed). Try a broader one with /quiz.",
				pool, h.Config.MinQuestions), nil)
		h.clearSetup(userID)
		return
	}

	bot.AnswerCallbackQuery(queryID, "", false)
	bot.EditMessage(userID, setup.MessageID,
		fmt.Sprintf("🍷 <b>Wine Trivia</b> — %s / %s\n\n%d questions available. How many to play?",
			formatCategoryTitle(setup.Category), formatRegionTitle(setup.Region), pool),
		countKeyboard(pool, "s"))
}

// HandleSoloCount creates the session with the player as its only
// participant and starts the first question immediately.
func (h *HandlerManager) HandleSoloCount(userID int64, username, firstName, queryID string, count int, bot BotInterface) {
	setup, ok := h.getSetup(userID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "Start a new quiz with /quiz", false)
		return
	}
	if count <= 0 {
		bot.AnswerCallbackQuery(queryID, "Invalid question count", true)
		return
	}

	questions, err := h.Quests.RandomQuestions(count, setup.Category, setup.Region)
	if err != nil || len(questions) == 0 {
		logger.Error("Failed to draw questions", "error", err, "user_id", userID)
		bot.AnswerCallbackQuery(queryID, "Something went wrong", true)
		return
	}

	h.clearSetup(userID)
	session := h.Solos.Create(userID, questions, userID)
	if _, err := session.AddParticipant(userID, username, firstName); err != nil {
		logger.Error("Failed to add solo player", "error", err, "user_id", userID)
		return
	}

	bot.AnswerCallbackQuery(queryID, "", false)
	bot.DeleteMessage(userID, setup.MessageID)
	h.runSoloQuestion(session, bot)
}

func (h *HandlerManager) runSoloQuestion(session *quiz.Session, bot BotInterface) {
	if err := session.StartQuestion(); err != nil {
		logger.Debug("Not starting solo question", "user_id", session.ChatID(), "reason", apperrors.Code(err))
		return
	}

	idx := session.Cursor()
	question, ok := session.CurrentQuestion()
	if !ok {
		return
	}

	totalSec := h.questionSeconds()
	userID := session.ChatID()

	msgID := bot.SendMessage(userID,
		formatSoloQuestion(idx, session.TotalQuestions(), question, totalSec, totalSec),
		answerKeyboard(idx, "s"))
	session.SetMessageID(msgID)

	timer := quiz.StartCountdown(time.Duration(totalSec)*h.tickUnit, h.tickUnit, quiz.CountdownHooks{
		OnTick: func(remaining time.Duration) {
			sec := int(remaining / h.tickUnit)
			if sec%2 != 0 {
				return
			}
			bot.EditMessage(userID, msgID,
				formatSoloQuestion(idx, session.TotalQuestions(), question, sec, totalSec),
				answerKeyboard(idx, "s"))
		},
		ShouldStop: session.AllAnswered,
		OnEarlyExit: func() {
			h.closeSoloQuestion(session, bot)
		},
		OnExpire: func() {
			h.closeSoloQuestion(session, bot)
		},
	})
	session.SetTimer(timer)
}

func (h *HandlerManager) closeSoloQuestion(session *quiz.Session, bot BotInterface) {
	idx := session.Cursor()
	question, _ := session.Question(idx)
	userID := session.ChatID()

	if err := session.EndQuestion(); err != nil {
		logger.Debug("Not closing solo question", "user_id", userID, "reason", apperrors.Code(err))
		return
	}

	bot.EditMessage(userID, session.MessageID(),
		formatReveal(idx, session.TotalQuestions(), question, session.Participants()), nil)

	finished, err := session.Advance()
	if err != nil {
		return
	}
	if finished {
		h.finishSoloGame(session, bot)
		return
	}

	time.Sleep(h.resultPause())
	if session.Finished() {
		return
	}
	h.runSoloQuestion(session, bot)
}

func (h *HandlerManager) finishSoloGame(session *quiz.Session, bot BotInterface) {
	userID := session.ChatID()
	board := session.Leaderboard()
	if len(board) == 0 {
		return
	}
	player := board[0]

	bot.SendMessage(userID, formatSoloFinish(player), finishKeyboard("s"))
	h.persistSoloResult(player)
}

func (h *HandlerManager) persistSoloResult(player quiz.Participant) {
	if h.Stats == nil || player.TotalAnswered == 0 {
		return
	}
	err := h.Stats.RecordPersonalResult(player.UserID, player.Username, player.FirstName,
		player.TotalAnswered, player.CorrectCount)
	if err != nil {
		logger.Error("Failed to store personal result", "error", err, "user_id", player.UserID)
	}
}

// HandleSoloAnswer processes an option press in a solo game.
func (h *HandlerManager) HandleSoloAnswer(userID int64, queryID string, questionIdx int, choice string, bot BotInterface) {
	if !security.ValidateOptionKey(choice) {
		bot.AnswerCallbackQuery(queryID, "Invalid option", false)
		return
	}

	session, ok := h.Solos.Get(userID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "No quiz is running — start one with /quiz", false)
		return
	}
	if questionIdx != session.Cursor() || session.State() != quiz.StateQuestionOpen {
		bot.AnswerCallbackQuery(queryID, "This question is already over", false)
		return
	}

	question, ok := session.Question(questionIdx)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "This question is already over", false)
		return
	}
	isCorrect := choice == question.CorrectOption

	if err := session.RecordAnswer(userID, choice, isCorrect); err != nil {
		bot.AnswerCallbackQuery(queryID, apperrors.Message(err), false)
		return
	}

	bot.AnswerCallbackQuery(queryID, "Answer recorded ✅", false)
}

// StopSoloQuiz handles /stop in a private chat. Partial results still count.
func (h *HandlerManager) StopSoloQuiz(userID int64, bot BotInterface) {
	session, ok := h.Solos.Get(userID)
	if !ok {
		bot.SendMessage(userID, "There is no quiz to stop.", nil)
		return
	}

	alreadyOver := session.Finished()
	h.Solos.Terminate(userID)
	if alreadyOver {
		bot.SendMessage(userID, "The quiz was already over. Start a new one with /quiz.", nil)
		return
	}

	board := session.Leaderboard()
	if len(board) > 0 && board[0].TotalAnswered > 0 {
		player := board[0]
		h.persistSoloResult(player)
		bot.SendMessage(userID, fmt.Sprintf("🛑 Quiz stopped. You scored %d/%d so far.",
			player.CorrectCount, player.TotalAnswered), nil)
		return
	}
	bot.SendMessage(userID, "🛑 Quiz stopped.", nil)
}

// HandleSoloExplanation pages through the post-game answer review.
func (h *HandlerManager) HandleSoloExplanation(userID int64, messageID int, queryID string, index int, bot BotInterface) {
	session, ok := h.Solos.Get(userID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "The quiz is gone — start a new one with /quiz", false)
		return
	}
	if !session.Finished() {
		bot.AnswerCallbackQuery(queryID, "The quiz is still running", false)
		return
	}

	explanations := session.Explanations(userID)
	if index < 0 || index >= len(explanations) {
		bot.AnswerCallbackQuery(queryID, "No such question", false)
		return
	}

	bot.AnswerCallbackQuery(queryID, "", false)
	bot.EditMessage(userID, messageID,
		formatExplanation(explanations[index], len(explanations)),
		explanationKeyboard(index, len(explanations), "s"))
}

// HandleSoloExplainAll shows the compact list of every correct answer.
func (h *HandlerManager) HandleSoloExplainAll(userID int64, messageID int, queryID string, bot BotInterface) {
	session, ok := h.Solos.Get(userID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "The quiz is gone — start a new one with /quiz", false)
		return
	}
	if !session.Finished() {
		bot.AnswerCallbackQuery(queryID, "The quiz is still running", false)
		return
	}

	bot.AnswerCallbackQuery(queryID, "", false)
	bot.EditMessage(userID, messageID,
		formatAllExplanations(session.Explanations(userID)),
		finishKeyboard("s"))
}

// HandleSoloNew starts a fresh setup flow from the finish keyboard.
func (h *HandlerManager) HandleSoloNew(userID int64, queryID string, bot BotInterface) {
	if h.Solos.HasLive(userID) {
		bot.AnswerCallbackQuery(queryID, "A quiz is already running", true)
		return
	}
	bot.AnswerCallbackQuery(queryID, "", false)
	h.StartSoloQuizSetup(userID, bot)
}

// ShowPersonalStats handles /mystats in a private chat.
func (h *HandlerManager) ShowPersonalStats(userID int64, bot BotInterface) {
	if h.Stats == nil {
		bot.SendMessage(userID, "Stats are not available right now.", nil)
		return
	}
	user, err := h.Stats.GetUserStats(userID)
	if err != nil {
		if apperrors.Code(err) == apperrors.ErrCodeNotFound {
			bot.SendMessage(userID, "You have no stats yet — play a quiz first!", nil)
			return
		}
		logger.Error("Failed to load user stats", "error", err, "user_id", userID)
		bot.SendMessage(userID, "❌ Something went wrong, try again later.", nil)
		return
	}

	bot.SendMessage(userID, fmt.Sprintf(
		"📊 <b>Your stats</b>\n\nQuizzes completed: %d\nQuestions answered: %d\nCorrect answers: %d\nAccuracy: %.0f%%",
		user.QuizzesCompleted, user.TotalQuestions, user.CorrectAnswers, user.SuccessRate()), nil)
}
