package handlers

import (
	"fmt"
	"strings"

	"github.com/winequiz/quiz_bot/internal/quiz"
	"github.com/winequiz/quiz_bot/internal/security"
	"github.com/winequiz/quiz_bot/pkg/utils"
)

// Message rendering. Everything here is a pure string builder; messages are
// sent with HTML parse mode, so user-controlled text goes through the
// sanitizer first.

const progressBarWidth = 10

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatCategoryTitle(category string) string {
	if category == "" {
		return "All categories"
	}
	return titleCase(category)
}

func formatRegionTitle(region string) string {
	if region == "" || region == "all" {
		return "All regions"
	}
	return titleCase(region)
}

func formatRegistration(totalQuestions, participants, remainingSec int) string {
	var b strings.Builder
	b.WriteString("🍷 <b>Wine Trivia is starting!</b>\n\n")
	fmt.Fprintf(&b, "📋 %d questions\n", totalQuestions)
	fmt.Fprintf(&b, "👥 Players joined: %d\n", participants)
	fmt.Fprintf(&b, "⏳ Starting in %d seconds\n\n", remainingSec)
	b.WriteString("Press <b>Join</b> to play!")
	return b.String()
}

func formatQuestion(index, total int, q quiz.Question, remainingSec, totalSec, answered, players int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❓ <b>Question %d of %d</b>\n\n", index+1, total)
	b.WriteString(security.SanitizeHTML(q.Text))
	b.WriteString("\n\n")
	for _, key := range quiz.OptionKeys {
		fmt.Fprintf(&b, "<b>%s)</b> %s\n", strings.ToUpper(key), security.SanitizeHTML(q.Option(key)))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %ds\n", utils.ProgressBar(remainingSec, totalSec, progressBarWidth), remainingSec)
	if players > 0 {
		fmt.Fprintf(&b, "✍️ Answered: %d/%d", answered, players)
	}
	return b.String()
}

func formatSoloQuestion(index, total int, q quiz.Question, remainingSec, totalSec int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❓ <b>Question %d of %d</b>\n\n", index+1, total)
	b.WriteString(security.SanitizeHTML(q.Text))
	b.WriteString("\n\n")
	for _, key := range quiz.OptionKeys {
		fmt.Fprintf(&b, "<b>%s)</b> %s\n", strings.ToUpper(key), security.SanitizeHTML(q.Option(key)))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %ds", utils.ProgressBar(remainingSec, totalSec, progressBarWidth), remainingSec)
	return b.String()
}

// formatReveal rewrites the question message once the question closes: the
// correct option, the explanation, and who picked what.
func formatReveal(index, total int, q quiz.Question, participants []quiz.Participant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❓ <b>Question %d of %d</b> — time!\n\n", index+1, total)
	b.WriteString(security.SanitizeHTML(q.Text))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "✅ Correct answer: <b>%s) %s</b>\n",
		strings.ToUpper(q.CorrectOption), security.SanitizeHTML(q.CorrectText()))
	if q.Explanation != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", security.SanitizeHTML(utils.Truncate(q.Explanation, 500)))
	}

	var lines []string
	for i := range participants {
		p := participants[i]
		rec, ok := p.AnswerFor(index)
		if !ok {
			continue
		}
		name := security.SanitizeDisplayName(p.DisplayName())
		if rec.TimedOut() {
			lines = append(lines, fmt.Sprintf("⌛ %s — no answer", name))
		} else if rec.IsCorrect {
			lines = append(lines, fmt.Sprintf("✅ %s — %s", name, strings.ToUpper(*rec.Choice)))
		} else {
			lines = append(lines, fmt.Sprintf("❌ %s — %s", name, strings.ToUpper(*rec.Choice)))
		}
	}
	if len(lines) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}

func placeMedal(place int) string {
	switch place {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("%d.", place)
}

func formatLeaderboard(title string, board []quiz.Participant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 <b>%s</b>\n\n", title)
	if len(board) == 0 {
		b.WriteString("Nobody has played yet.")
		return b.String()
	}
	for i := range board {
		p := board[i]
		fmt.Fprintf(&b, "%s %s — %d/%d (%.0f%%)\n",
			placeMedal(i+1),
			security.SanitizeDisplayName(p.DisplayName()),
			p.CorrectCount, p.TotalAnswered, p.Percentage())
	}
	return b.String()
}

func groupWinnerRemark(band quiz.Band) string {
	switch band {
	case quiz.BandExcellent:
		return "🎖 A true sommelier!"
	case quiz.BandGood:
		return "👏 Impressive wine knowledge!"
	}
	return "🍇 Keep tasting, keep learning!"
}

func soloResultRemark(band quiz.Band) string {
	switch band {
	case quiz.BandExcellent:
		return "🎖 Flawless — a true sommelier!"
	case quiz.BandGood:
		return "👏 Impressive wine knowledge!"
	}
	return "🍇 Keep tasting, keep learning!"
}

func formatGroupFinish(board []quiz.Participant) string {
	var b strings.Builder
	b.WriteString("🏁 <b>Quiz finished!</b>\n\n")
	b.WriteString(formatLeaderboard("Final standings", board))
	if winner, ok := quiz.Winner(board); ok && winner.TotalAnswered > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "\n🎉 Winner: %s\n", security.SanitizeDisplayName(winner.DisplayName()))
		b.WriteString(groupWinnerRemark(quiz.GroupWinnerBand(winner.Percentage())))
	}
	return b.String()
}

func formatSoloFinish(p quiz.Participant) string {
	var b strings.Builder
	b.WriteString("🏁 <b>Quiz finished!</b>\n\n")
	fmt.Fprintf(&b, "Your result: <b>%d/%d</b> (%.0f%%)\n\n", p.CorrectCount, p.TotalAnswered, p.Percentage())
	b.WriteString(soloResultRemark(quiz.SoloResultBand(p.Percentage())))
	return b.String()
}

// formatExplanation renders one page of the post-game explanation browser.
func formatExplanation(e quiz.Explanation, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💡 <b>Question %d of %d</b>\n\n", e.Index+1, total)
	b.WriteString(security.SanitizeHTML(e.Question.Text))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "✅ Correct: <b>%s) %s</b>\n",
		strings.ToUpper(e.Question.CorrectOption), security.SanitizeHTML(e.Question.CorrectText()))

	if e.Answered && !e.Record.TimedOut() {
		if e.Record.IsCorrect {
			fmt.Fprintf(&b, "Your answer: %s ✅\n", strings.ToUpper(*e.Record.Choice))
		} else {
			fmt.Fprintf(&b, "Your answer: %s ❌\n", strings.ToUpper(*e.Record.Choice))
		}
	} else if e.Answered {
		b.WriteString("Your answer: — (time ran out)\n")
	} else {
		b.WriteString("You did not see this question.\n")
	}

	if e.Question.Explanation != "" {
		fmt.Fprintf(&b, "\n%s", security.SanitizeHTML(e.Question.Explanation))
	}
	return b.String()
}

func formatAllExplanations(explanations []quiz.Explanation) string {
	var b strings.Builder
	b.WriteString("💡 <b>All answers</b>\n")
	for _, e := range explanations {
		fmt.Fprintf(&b, "\n<b>%d.</b> %s\n", e.Index+1, security.SanitizeHTML(utils.Truncate(e.Question.Text, 120)))
		fmt.Fprintf(&b, "✅ %s) %s\n",
			strings.ToUpper(e.Question.CorrectOption),
			security.SanitizeHTML(utils.Truncate(e.Question.CorrectText(), 80)))
	}
	return b.String()
}
