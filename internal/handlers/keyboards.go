package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/winequiz/quiz_bot/internal/quiz"
)

// Inline keyboards for the quiz flows. Callback data prefixes: group flow
// uses g*, solo flow uses s*.

func categoryKeyboard(categories []string, prefix string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(formatCategoryTitle(c), prefix+"cat:"+c),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🌍 All categories", prefix+"cat:*"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func regionKeyboard(regions []string, prefix string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range regions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(formatRegionTitle(r), prefix+"region:"+r),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🌍 All regions", prefix+"region:*"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func countKeyboard(poolSize int, prefix string) tgbotapi.InlineKeyboardMarkup {
	counts := []int{5, 10, 15, 20}
	var row []tgbotapi.InlineKeyboardButton
	for _, n := range counts {
		if n > poolSize {
			continue
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", n), fmt.Sprintf("%scount:%d", prefix, n),
		))
	}
	if len(row) == 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d", poolSize), fmt.Sprintf("%scount:%d", prefix, poolSize),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

func registrationKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🙋 Join", "gjoin"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Start now", "gstart_now"),
		),
	)
}

func answerKeyboard(questionIndex int, prefix string) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, key := range quiz.OptionKeys {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			strings.ToUpper(key),
			fmt.Sprintf("%sanswer:%d:%s", prefix, questionIndex, key),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

func finishKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💡 Review answers", prefix+"expl:0"),
			tgbotapi.NewInlineKeyboardButtonData("📖 All answers", prefix+"expl_all"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 New quiz", prefix+"new"),
		),
	)
}

func explanationKeyboard(index, total int, prefix string) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if index > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			"⬅️", fmt.Sprintf("%sexpl:%d", prefix, index-1)))
	}
	if index < total-1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			"➡️", fmt.Sprintf("%sexpl:%d", prefix, index+1)))
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 New quiz", prefix+"new"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
