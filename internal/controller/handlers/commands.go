package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/yshabas/avtoshkola_bot/internal/controller/state"
	"github.com/yshabas/avtoshkola_bot/internal/service"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start: инструкторы попадают сразу
// в своё меню, новые ученики — в анкету регистрации
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	h.stateManager.Clear(telegramID)

	instructor, err := h.userService.GetInstructorByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to look up instructor", zap.Error(err))
	}
	if instructor != nil {
		h.sendKeyboard(ctx, b, chatID,
			fmt.Sprintf("👋 Вітаю, %s!\n\nВи увійшли як інструктор.", instructor.Name),
			instructorMenuKeyboard())
		return
	}

	student, err := h.userService.GetStudent(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to look up student", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return
	}
	if student != nil {
		h.sendKeyboard(ctx, b, chatID,
			fmt.Sprintf("👋 З поверненням, %s!", student.Name),
			studentMenuKeyboard())
		return
	}

	h.stateManager.Set(telegramID, state.StateRegName)
	h.send(ctx, b, chatID,
		"👋 Вітаємо в автошколі!\n\n"+
			"Давайте знайомитись. Як вас звати?")
}

// HandleAdmin сводка записей на сегодня по всем инструкторам.
// Доступна только администратору школы
func (h *Handlers) HandleAdmin(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if !h.userService.IsAdmin(telegramID) {
		h.send(ctx, b, chatID, "❌ Ця команда доступна лише адміністратору.")
		return
	}

	instructors, err := h.userService.AllInstructors(ctx)
	if err != nil {
		h.logger.Error("Failed to load instructors", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return
	}

	today := time.Now().In(h.loc)
	lines := []string{fmt.Sprintf("📊 Записи на %s", today.Format(dateFormat))}
	for _, ins := range instructors {
		lessons, err := h.bookingService.InstructorSchedule(ctx, ins.ID, today)
		if err != nil {
			h.logger.Error("Failed to load schedule", zap.Int64("instructor_id", ins.ID), zap.Error(err))
			continue
		}
		lines = append(lines, fmt.Sprintf("\n👨‍🏫 %s — %d занять", ins.Name, len(lessons)))
		for _, lesson := range lessons {
			lines = append(lines, fmt.Sprintf("  🕐 %s (%s) %s", lesson.Time, lesson.Duration, lesson.StudentName))
		}
	}
	h.send(ctx, b, chatID, strings.Join(lines, "\n"))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := fmt.Sprintf(
		"ℹ️ Як це працює\n\n"+
			"📝 Запис: оберіть коробку передач, інструктора, день і час. "+
			"Записатися можна на %d днів наперед.\n\n"+
			"⏱ Ліміти: не більше %.0f годин на день і %.0f годин на тиждень.\n\n"+
			"⏰ Нагадування прийдуть за добу та за 2 години до заняття.\n\n"+
			"❌ Скасувати заняття можна в меню «%s».",
		bookingWindowDays, service.DailyCapHours, service.WeeklyCapHours, ButtonCancelMenu,
	)
	h.send(ctx, b, update.Message.Chat.ID, text)
}
