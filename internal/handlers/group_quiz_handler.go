package handlers

import (
	"fmt"
	"time"

	"github.com/winequiz/quiz_bot/internal/quiz"
	"github.com/winequiz/quiz_bot/internal/repositories"
	"github.com/winequiz/quiz_bot/internal/security"
	apperrors "github.com/winequiz/quiz_bot/pkg/errors"
	"github.com/winequiz/quiz_bot/pkg/logger"
)

// Group quiz flow: /quiz setup menus, registration with a join countdown,
// the question loop, final standings and explanation browsing. The Session
// holds all game state; handlers only orchestrate messages and timers.

const groupRegistrationTick = 5

// StartGroupQuizSetup begins the category/region/count menu flow for /quiz.
func (h *HandlerManager) StartGroupQuizSetup(chatID, userID int64, bot BotInterface) {
	if h.Groups.HasLive(chatID) {
		bot.SendMessage(chatID, "⚠️ A quiz is already running in this chat. Stop it with /stop_quiz first.", nil)
		return
	}

	categories, err := h.Quests.Categories()
	if err != nil {
		logger.Error("Failed to load categories", "error", err, "chat_id", chatID)
		bot.SendMessage(chatID, "❌ Something went wrong, try again later.", nil)
		return
	}

	setup := &quizSetup{OrganizerID: userID}
	h.putSetup(chatID, setup)

	msgID := bot.SendMessage(chatID, "🍷 <b>Wine Trivia</b>\n\nPick a category:", categoryKeyboard(categories, "g"))
	setup.MessageID = msgID
}

// HandleGroupCategory stores the organizer's category pick and shows regions.
func (h *HandlerManager) HandleGroupCategory(chatID, userID int64, queryID, category string, bot BotInterface) {
	setup, ok := h.getSetup(chatID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "Start a new quiz with /quiz", false)
		return
	}
	if setup.OrganizerID != userID {
		bot.AnswerCallbackQuery(queryID, "Only the quiz organizer can pick", true)
		return
	}

	if category == "*" {
		category = ""
	}
	setup.Category = category

	if category == "" {
		h.showGroupCountMenu(chatID, setup, queryID, bot)
		return
	}

	regions, err := h.Quests.Regions(category)
	if err != nil {
		logger.Error("Failed to load regions", "error", err, "category", category)
		bot.AnswerCallbackQuery(queryID, "Something went wrong", true)
		return
	}

	bot.AnswerCallbackQuery(queryID, "", false)
	bot.EditMessage(chatID, setup.MessageID,
		fmt.Sprintf("🍷 <b>Wine Trivia</b> — %s\n\nPick a region:", formatCategoryTitle(category)),
		regionKeyboard(regions, "g"))
}

// HandleGroupRegion stores the region pick and shows the question count menu.
func (h *HandlerManager) HandleGroupRegion(chatID, userID int64, queryID, region string, bot BotInterface) {
	setup, ok := h.getSetup(chatID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "Start a new quiz with /quiz", false)
		return
	}
	if setup.OrganizerID != userID {
		bot.AnswerCallbackQuery(queryID, "Only the quiz organizer can pick", true)
		return
	}

	if region == "*" {
		region = ""
	}
	setup.Region = region

	h.showGroupCountMenu(chatID, setup, queryID, bot)
}

func (h *HandlerManager) showGroupCountMenu(chatID int64, setup *quizSetup, queryID string, bot BotInterface) {
	pool, err := h.Quests.PoolSize(setup.Category, setup.Region)
	if err != nil {
		logger.Error("Failed to count question pool", "error", err)
		bot.AnswerCallbackQuery(queryID, "Something went wrong", true)
		return
	}

	if pool < h.Config.MinQuestions {
		bot.AnswerCallbackQuery(queryID, "", false)
		bot.EditMessage(chatID, setup.MessageID,
			fmt.Sprintf("😕 Not enough questions for this selection (%d available, %d needed). Try a broader one with /quiz.",
				pool, h.Config.MinQuestions), nil)
		h.clearSetup(chatID)
		return
	}

	bot.AnswerCallbackQuery(queryID, "", false)
	bot.EditMessage(chatID, setup.MessageID,
		fmt.Sprintf("🍷 <b>Wine Trivia</b> — %s / %s\n\n%d questions available. How many to play?",
			formatCategoryTitle(setup.Category), formatRegionTitle(setup.Region), pool),
		countKeyboard(pool, "g"))
}

// HandleGroupCount creates the session and opens registration.
func (h *HandlerManager) HandleGroupCount(chatID, userID int64, queryID string, count int, bot BotInterface) {
	setup, ok := h.getSetup(chatID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "Start a new quiz with /quiz", false)
		return
	}
	if setup.OrganizerID != userID {
		bot.AnswerCallbackQuery(queryID, "Only the quiz organizer can pick", true)
		return
	}
	if count <= 0 {
		bot.AnswerCallbackQuery(queryID, "Invalid question count", true)
		return
	}

	questions, err := h.Quests.RandomQuestions(count, setup.Category, setup.Region)
	if err != nil || len(questions) == 0 {
		logger.Error("Failed to draw questions", "error", err, "chat_id", chatID)
		bot.AnswerCallbackQuery(queryID, "Something went wrong", true)
		return
	}

	h.clearSetup(chatID)
	session := h.Groups.Create(chatID, questions, setup.OrganizerID)
	session.SetMessageID(setup.MessageID)

	bot.AnswerCallbackQuery(queryID, "", false)

	joinSec := h.Config.JoinTimeout
	bot.EditMessage(chatID, setup.MessageID,
		formatRegistration(len(questions), 0, joinSec), registrationKeyboard())

	tick := time.Duration(groupRegistrationTick) * h.tickUnit
	timer := quiz.StartCountdown(h.joinDuration(), tick, quiz.CountdownHooks{
		OnTick: func(remaining time.Duration) {
			sec := int(remaining / h.tickUnit)
			bot.EditMessage(chatID, session.MessageID(),
				formatRegistration(session.TotalQuestions(), session.ParticipantCount(), sec),
				registrationKeyboard())
		},
		ShouldStop: session.Started,
		OnExpire: func() {
			h.finishGroupRegistration(session, bot)
		},
	})
	session.SetTimer(timer)
}

// HandleGroupJoin adds the pressing user to the roster during registration.
func (h *HandlerManager) HandleGroupJoin(chatID, userID int64, username, firstName, queryID string, bot BotInterface) {
	session, ok := h.Groups.Get(chatID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "No quiz is being set up", false)
		return
	}
	if session.State() != quiz.StateRegistering {
		bot.AnswerCallbackQuery(queryID, "The game already started — answer a question to jump in!", false)
		return
	}

	if _, err := session.AddParticipant(userID, username, firstName); err != nil {
		bot.AnswerCallbackQuery(queryID, apperrors.Message(err), false)
		return
	}
	bot.AnswerCallbackQuery(queryID, "You're in! 🍷", false)
}

// HandleGroupStartNow lets the organizer skip the rest of the registration
// countdown.
func (h *HandlerManager) HandleGroupStartNow(chatID, userID int64, queryID string, bot BotInterface) {
	session, ok := h.Groups.Get(chatID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "No quiz is being set up", false)
		return
	}
	if session.OrganizerID() != userID {
		bot.AnswerCallbackQuery(queryID, "Only the organizer can start the game", true)
		return
	}
	if session.State() != quiz.StateRegistering {
		bot.AnswerCallbackQuery(queryID, "The game already started", false)
		return
	}
	if session.ParticipantCount() < h.Config.MinParticipants {
		bot.AnswerCallbackQuery(queryID,
			fmt.Sprintf("Need at least %d player(s) to start", h.Config.MinParticipants), true)
		return
	}

	session.CancelTimer()
	bot.AnswerCallbackQuery(queryID, "", false)
	h.runGroupQuestion(session, bot)
}

// finishGroupRegistration fires on registration expiry: start the question
// loop or tear the session down when nobody joined.
func (h *HandlerManager) finishGroupRegistration(session *quiz.Session, bot BotInterface) {
	if session.ParticipantCount() < h.Config.MinParticipants {
		h.Groups.Terminate(session.ChatID())
		bot.EditMessage(session.ChatID(), session.MessageID(),
			"😕 Not enough players joined — quiz cancelled. Try again with /quiz.", nil)
		return
	}
	h.runGroupQuestion(session, bot)
}

// runGroupQuestion opens the question at the cursor and drives its countdown.
func (h *HandlerManager) runGroupQuestion(session *quiz.Session, bot BotInterface) {
	if err := session.StartQuestion(); err != nil {
		logger.Debug("Not starting question", "chat_id", session.ChatID(), "reason", apperrors.Code(err))
		return
	}

	idx := session.Cursor()
	question, ok := session.CurrentQuestion()
	if !ok {
		return
	}

	totalSec := h.questionSeconds()
	chatID := session.ChatID()

	msgID := bot.SendMessage(chatID,
		formatQuestion(idx, session.TotalQuestions(), question, totalSec, totalSec, 0, session.ParticipantCount()),
		answerKeyboard(idx, "g"))
	session.SetMessageID(msgID)

	timer := quiz.StartCountdown(time.Duration(totalSec)*h.tickUnit, h.tickUnit, quiz.CountdownHooks{
		OnTick: func(remaining time.Duration) {
			sec := int(remaining / h.tickUnit)
			// Editing every tick would hit Telegram's rate limits.
			if sec%2 != 0 {
				return
			}
			bot.EditMessage(chatID, msgID,
				formatQuestion(idx, session.TotalQuestions(), question, sec, totalSec,
					session.AnsweredCount(), session.ParticipantCount()),
				answerKeyboard(idx, "g"))
		},
		ShouldStop: session.AllAnswered,
		OnEarlyExit: func() {
			h.closeGroupQuestion(session, bot)
		},
		OnExpire: func() {
			h.closeGroupQuestion(session, bot)
		},
	})
	session.SetTimer(timer)
}

// closeGroupQuestion reveals the answer, shows interim standings and either
// advances to the next question or finishes the game.
func (h *HandlerManager) closeGroupQuestion(session *quiz.Session, bot BotInterface) {
	idx := session.Cursor()
	question, _ := session.Question(idx)
	chatID := session.ChatID()

	if err := session.EndQuestion(); err != nil {
		// Already closed or stopped underneath us.
		logger.Debug("Not closing question", "chat_id", chatID, "reason", apperrors.Code(err))
		return
	}

	bot.EditMessage(chatID, session.MessageID(),
		formatReveal(idx, session.TotalQuestions(), question, session.Participants()), nil)

	finished, err := session.Advance()
	if err != nil {
		return
	}
	if finished {
		h.finishGroupGame(session, bot)
		return
	}

	bot.SendMessage(chatID, formatLeaderboard("Standings so far", session.Leaderboard()), nil)

	time.Sleep(h.resultPause())
	if session.Finished() {
		return
	}
	h.runGroupQuestion(session, bot)
}

// finishGroupGame announces final standings and pushes aggregates to the
// stats sink. The session stays registered so players can browse
// explanations until a new quiz replaces it.
func (h *HandlerManager) finishGroupGame(session *quiz.Session, bot BotInterface) {
	chatID := session.ChatID()
	board := session.Leaderboard()

	bot.SendMessage(chatID, formatGroupFinish(board), finishKeyboard("g"))

	h.persistGroupResults(session, board, bot)
}

func (h *HandlerManager) persistGroupResults(session *quiz.Session, board []quiz.Participant, bot BotInterface) {
	if h.Stats == nil {
		return
	}
	chatID := session.ChatID()

	results := make([]repositories.GroupResult, 0, len(board))
	for i := range board {
		p := board[i]
		if p.TotalAnswered == 0 {
			continue
		}
		results = append(results, repositories.GroupResult{
			UserID:        p.UserID,
			Username:      p.Username,
			FirstName:     p.FirstName,
			CorrectCount:  p.CorrectCount,
			TotalAnswered: p.TotalAnswered,
		})
		if err := h.Stats.RecordPersonalResult(p.UserID, p.Username, p.FirstName, p.TotalAnswered, p.CorrectCount); err != nil {
			logger.Error("Failed to store personal result", "error", err, "user_id", p.UserID)
		}
	}

	var winner *repositories.WinnerResult
	if w, ok := quiz.Winner(board); ok && w.TotalAnswered > 0 {
		winner = &repositories.WinnerResult{
			UserID:       w.UserID,
			Username:     w.Username,
			CorrectCount: w.CorrectCount,
		}
	}

	err := h.Stats.RecordGroupGame(chatID, bot.GetChatTitle(chatID), session.TotalQuestions(), results, winner)
	if err != nil {
		logger.Error("Failed to store group game", "error", err, "chat_id", chatID)
	}
}

// HandleGroupAnswer processes one option press. Unknown users joining
// mid-game are added to the roster first.
func (h *HandlerManager) HandleGroupAnswer(chatID, userID int64, username, firstName, queryID string, questionIdx int, choice string, bot BotInterface) {
	if !security.ValidateOptionKey(choice) {
		bot.AnswerCallbackQuery(queryID, "Invalid option", false)
		return
	}

	session, ok := h.Groups.Get(chatID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "No quiz is running", false)
		return
	}
	if questionIdx != session.Cursor() || session.State() != quiz.StateQuestionOpen {
		bot.AnswerCallbackQuery(queryID, "This question is already over", false)
		return
	}

	if _, joined := session.Participant(userID); !joined {
		if _, err := session.AddParticipant(userID, username, firstName); err != nil {
			bot.AnswerCallbackQuery(queryID, apperrors.Message(err), false)
			return
		}
	}

	question, ok := session.Question(questionIdx)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "This question is already over", false)
		return
	}
	isCorrect := choice == question.CorrectOption

	if err := session.RecordAnswer(userID, choice, isCorrect); err != nil {
		switch apperrors.Code(err) {
		case apperrors.ErrCodeAlreadyAnswered:
			bot.AnswerCallbackQuery(queryID, "You already answered this one", false)
		case apperrors.ErrCodeQuestionNotActive:
			bot.AnswerCallbackQuery(queryID, "This question is already over", false)
		default:
			bot.AnswerCallbackQuery(queryID, apperrors.Message(err), false)
		}
		return
	}

	bot.AnswerCallbackQuery(queryID, "Answer recorded ✅", false)
}

// StopGroupQuiz handles /stop_quiz. Aggregates keep whatever was answered.
func (h *HandlerManager) StopGroupQuiz(chatID, userID int64, bot BotInterface) {
	session, ok := h.Groups.Get(chatID)
	if !ok {
		bot.SendMessage(chatID, "There is no quiz to stop.", nil)
		return
	}
	if session.OrganizerID() != userID && !h.IsAdmin(userID) {
		bot.SendMessage(chatID, "Only the quiz organizer can stop the game.", nil)
		return
	}

	alreadyOver := session.Finished()
	h.Groups.Terminate(chatID)
	if alreadyOver {
		bot.SendMessage(chatID, "The quiz was already over. Start a new one with /quiz.", nil)
		return
	}

	board := session.Leaderboard()
	played := false
	for i := range board {
		if board[i].TotalAnswered > 0 {
			played = true
			break
		}
	}

	if played {
		h.persistGroupResults(session, board, bot)
		bot.SendMessage(chatID, "🛑 Quiz stopped.\n\n"+formatLeaderboard("Standings", board), nil)
	} else {
		bot.SendMessage(chatID, "🛑 Quiz stopped.", nil)
	}
}

// ShowGroupScore handles /score: interim standings without touching the game.
func (h *HandlerManager) ShowGroupScore(chatID int64, bot BotInterface) {
	session, ok := h.Groups.Get(chatID)
	if !ok {
		bot.SendMessage(chatID, "There is no quiz in this chat. Start one with /quiz.", nil)
		return
	}
	bot.SendMessage(chatID, formatLeaderboard("Standings so far", session.Leaderboard()), nil)
}

// HandleGroupExplanation pages through the post-game answer review. The
// pressing user sees their own answers.
func (h *HandlerManager) HandleGroupExplanation(chatID, userID int64, messageID int, queryID string, index int, bot BotInterface) {
	session, ok := h.Groups.Get(chatID)
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
	bot.EditMessage(chatID, messageID,
		formatExplanation(explanations[index], len(explanations)),
		explanationKeyboard(index, len(explanations), "g"))
}

// HandleGroupExplainAll shows the compact list of every correct answer.
func (h *HandlerManager) HandleGroupExplainAll(chatID, userID int64, messageID int, queryID string, bot BotInterface) {
	session, ok := h.Groups.Get(chatID)
	if !ok {
		bot.AnswerCallbackQuery(queryID, "The quiz is gone — start a new one with /quiz", false)
		return
	}
	if !session.Finished() {
		bot.AnswerCallbackQuery(queryID, "The quiz is still running", false)
		return
	}

	bot.AnswerCallbackQuery(queryID, "", false)
	bot.EditMessage(chatID, messageID,
		formatAllExplanations(session.Explanations(userID)),
		finishKeyboard("g"))
}

// HandleGroupNew starts a fresh setup flow from the finish keyboard.
func (h *HandlerManager) HandleGroupNew(chatID, userID int64, queryID string, bot BotInterface) {
	if h.Groups.HasLive(chatID) {
		bot.AnswerCallbackQuery(queryID, "A quiz is already running", true)
		return
	}
	bot.AnswerCallbackQuery(queryID, "", false)
	h.StartGroupQuizSetup(chatID, userID, bot)
}
