package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/yshabas/avtoshkola_bot/internal/controller/state"
	"github.com/yshabas/avtoshkola_bot/internal/service"
	"go.uber.org/zap"
)

var phoneRe = regexp.MustCompile(`^\+?\d{10,13}$`)

func (h *Handlers) handleRegName(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	name := strings.TrimSpace(update.Message.Text)

	if name == "" || len(name) > 100 {
		h.send(ctx, b, chatID, "❌ Введіть ім'я текстом, до 100 символів:")
		return
	}

	h.stateManager.SetData(telegramID, "reg_name", name)
	h.stateManager.Set(telegramID, state.StateRegPhone)
	h.send(ctx, b, chatID, "📱 Ваш номер телефону у форматі +380XXXXXXXXX:")
}

func (h *Handlers) handleRegPhone(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	phone := strings.ReplaceAll(strings.TrimSpace(update.Message.Text), " ", "")

	if !phoneRe.MatchString(phone) {
		h.send(ctx, b, chatID, "❌ Це не схоже на номер телефону. Формат: +380XXXXXXXXX")
		return
	}

	h.stateManager.SetData(telegramID, "reg_phone", phone)
	h.stateManager.Set(telegramID, state.StateRegTariff)
	h.sendKeyboard(ctx, b, chatID, "💰 Оберіть тариф:", tariffKeyboard())
}

func (h *Handlers) handleRegTariff(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	var tariff int
	switch update.Message.Text {
	case fmt.Sprintf("%d грн/год", service.TariffBasic):
		tariff = service.TariffBasic
	case fmt.Sprintf("%d грн/год", service.TariffExtended):
		tariff = service.TariffExtended
	default:
		h.sendKeyboard(ctx, b, chatID, "❌ Оберіть тариф кнопкою:", tariffKeyboard())
		return
	}

	name, _ := h.stateManager.GetString(telegramID, "reg_name")
	phone, _ := h.stateManager.GetString(telegramID, "reg_phone")

	student, err := h.userService.RegisterStudent(ctx, telegramID, name, phone, tariff, "bot")
	if err != nil {
		h.logger.Error("Failed to register student", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.send(ctx, b, chatID, "❌ Не вдалося зберегти анкету. Спробуйте /start ще раз.")
		h.stateManager.Clear(telegramID)
		return
	}

	h.stateManager.Clear(telegramID)
	h.sendKeyboard(ctx, b, chatID,
		fmt.Sprintf("✅ Реєстрацію завершено!\n\n"+
			"👤 %s\n📱 %s\n💰 Тариф: %d грн/год",
			student.Name, student.Phone, student.Tariff),
		studentMenuKeyboard())
}
