package telegram

import (
	"fmt"

	"github.com/hromoibes/love-game-telegram/internal/game"
)

// Menu button labels matched verbatim in the update handler.
const (
	BtnQuestion = "❓ Вопрос"
	BtnSkip     = "🛟 Пропуск"
	BtnLevel    = "🎚 Уровень"
	BtnFinish   = "🏁 Завершить"
)

func LevelKeyboard() *InlineKeyboardMarkup {
	var rows [][]InlineKeyboardButton
	for _, lv := range game.Levels() {
		rows = append(rows, []InlineKeyboardButton{
			{
				Text:         fmt.Sprintf("%s %s", lv.Emoji(), lv.Label()),
				CallbackData: fmt.Sprintf("lvl:%s", lv),
			},
		})
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

func LengthKeyboard() *InlineKeyboardMarkup {
	var row []InlineKeyboardButton
	for _, n := range []int{5, 10, 15, 20} {
		row = append(row, InlineKeyboardButton{
			Text:         fmt.Sprintf("%d", n),
			CallbackData: fmt.Sprintf("len:%d", n),
		})
	}
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{row}}
}

func LevelAdjustKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{
				{Text: "⬆️ Смелее", CallbackData: "adj:up"},
				{Text: "⬇️ Мягче", CallbackData: "adj:down"},
			},
		},
	}
}

func GameMenuKeyboard() *ReplyKeyboardMarkup {
	return &ReplyKeyboardMarkup{
		Keyboard: [][]KeyboardButton{
			{{Text: BtnQuestion}, {Text: BtnSkip}},
			{{Text: BtnLevel}, {Text: BtnFinish}},
		},
		ResizeKeyboard: true,
	}
}
