package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/service"
	"go.uber.org/zap"
)

// Кнопки меню
const (
	ButtonBook       = "📝 Записатися на заняття"
	ButtonMyLessons  = "📅 Мої заняття"
	ButtonCancelMenu = "❌ Скасувати заняття"
	ButtonHelp       = "ℹ️ Допомога"

	ButtonSchedule     = "🗓 Мій розклад"
	ButtonBlock        = "🚫 Заблокувати час"
	ButtonUnblock      = "✅ Розблокувати час"
	ButtonRateStudents = "⭐ Оцінити учнів"

	ButtonBack    = "🔙 Назад"
	ButtonSkip    = "➡️ Пропустити"
	ButtonConfirm = "✅ Підтвердити"
)

func studentMenuKeyboard() *models.ReplyKeyboardMarkup {
	return replyKeyboard([][]string{
		{ButtonBook},
		{ButtonMyLessons, ButtonCancelMenu},
		{ButtonHelp},
	})
}

func instructorMenuKeyboard() *models.ReplyKeyboardMarkup {
	return replyKeyboard([][]string{
		{ButtonSchedule},
		{ButtonBlock, ButtonUnblock},
		{ButtonRateStudents},
	})
}

func replyKeyboard(rows [][]string) *models.ReplyKeyboardMarkup {
	keyboard := make([][]models.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]models.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, models.KeyboardButton{Text: label})
		}
		keyboard = append(keyboard, buttons)
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:       keyboard,
		ResizeKeyboard: true,
	}
}

// withBack добавляет кнопку возврата в главное меню последним рядом
func withBack(rows [][]string) [][]string {
	return append(rows, []string{ButtonBack})
}

func tariffKeyboard() *models.ReplyKeyboardMarkup {
	return replyKeyboard([][]string{
		{fmt.Sprintf("%d грн/год", service.TariffBasic)},
		{fmt.Sprintf("%d грн/год", service.TariffExtended)},
	})
}

func transmissionKeyboard() *models.ReplyKeyboardMarkup {
	return replyKeyboard(withBack([][]string{
		{string(model.TransmissionAutomatic), string(model.TransmissionManual)},
	}))
}

func durationKeyboard() *models.ReplyKeyboardMarkup {
	return replyKeyboard(withBack([][]string{
		{string(model.Duration1h)},
		{string(model.Duration15h)},
		{string(model.Duration2h)},
	}))
}

// rowsOf раскладывает метки по рядам клавиатуры не шире perRow
func rowsOf(labels []string, perRow int) [][]string {
	var rows [][]string
	for len(labels) > 0 {
		n := perRow
		if n > len(labels) {
			n = len(labels)
		}
		rows = append(rows, labels[:n])
		labels = labels[n:]
	}
	return rows
}

func (h *Handlers) send(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handlers) sendKeyboard(ctx context.Context, b *bot.Bot, chatID int64, text string, kb models.ReplyMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// mainMenu возвращает пользователя в его главное меню
func (h *Handlers) mainMenu(ctx context.Context, b *bot.Bot, chatID, telegramID int64) {
	h.stateManager.Clear(telegramID)

	instructor, err := h.userService.GetInstructorByTelegramID(ctx, telegramID)
	if err == nil && instructor != nil {
		h.sendKeyboard(ctx, b, chatID, "Головне меню інструктора:", instructorMenuKeyboard())
		return
	}
	h.sendKeyboard(ctx, b, chatID, "Головне меню:", studentMenuKeyboard())
}
