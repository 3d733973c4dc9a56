package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/yshabas/avtoshkola_bot/internal/controller/state"
	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/service"
	"github.com/yshabas/avtoshkola_bot/internal/timegrid"
	"go.uber.org/zap"
)

// handleRescheduleAnswer обрабатывает ответ ученика на предложение
// переноса. Кнопки приходят вне диалога, запрос ищется по ученику.
func (h *Handlers) handleRescheduleAnswer(ctx context.Context, b *bot.Bot, update *models.Update, accepted bool) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	req, err := h.rescheduleService.PendingForStudent(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to find pending reschedule", zap.Error(err))
		return
	}
	if req == nil {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	if !accepted {
		if _, err := h.rescheduleService.Reject(ctx, req.UID, time.Now().In(h.loc)); err != nil {
			h.logger.Error("Failed to reject reschedule", zap.String("request_uid", req.UID.String()), zap.Error(err))
			h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
			return
		}
		h.send(ctx, b, chatID, "Добре, заняття залишається без змін.")
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	h.stateManager.SetData(telegramID, "resched_uid", req.UID.String())
	h.showRescheduleDates(ctx, b, chatID, telegramID, req.InstructorID)
}

func (h *Handlers) showRescheduleDates(ctx context.Context, b *bot.Bot, chatID, telegramID, instructorID int64) {
	now := time.Now().In(h.loc)
	dates, err := h.availability.NextDates(ctx, instructorID, now, bookingWindowDays)
	if err != nil {
		h.logger.Error("Failed to compute available dates", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return
	}
	if len(dates) == 0 {
		h.send(ctx, b, chatID, "На жаль, вільних слотів немає. Запит залишається відкритим.")
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	var labels []string
	for _, d := range dates {
		labels = append(labels, d.Date.Format(dateFormat))
	}

	h.stateManager.Set(telegramID, state.StateRescheduleDate)
	h.sendKeyboard(ctx, b, chatID, "📅 Оберіть новий день:", replyKeyboard(withBack(rowsOf(labels, 3))))
}

func (h *Handlers) handleRescheduleDate(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	now := time.Now().In(h.loc)
	date, err := parseOfferedDate(update.Message.Text, now, bookingWindowDays, h.loc)
	if errors.Is(err, errDateOutsideWindow) {
		h.send(ctx, b, chatID, "❌ Перенести можна лише на найближчі два тижні. Оберіть день кнопкою:")
		return
	}
	if err != nil {
		h.send(ctx, b, chatID, "❌ Оберіть день кнопкою:")
		return
	}

	req, err := h.rescheduleService.PendingForStudent(ctx, telegramID)
	if err != nil || req == nil {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	slots, err := h.availability.AvailableSlots(ctx, req.InstructorID, date, now)
	if err != nil {
		h.logger.Error("Failed to compute slots", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return
	}
	if len(slots) == 0 {
		h.send(ctx, b, chatID, "На цей день вільного часу немає. Оберіть інший день:")
		return
	}

	h.stateManager.SetData(telegramID, "resched_date", date.Format(dateFormat))
	h.stateManager.Set(telegramID, state.StateRescheduleTime)
	h.sendKeyboard(ctx, b, chatID, "🕐 Оберіть новий час:", replyKeyboard(withBack(rowsOf(slots, 4))))
}

func (h *Handlers) handleRescheduleTime(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	timeStr := strings.TrimSpace(update.Message.Text)

	if _, err := timegrid.MinutesOfDay(timeStr); err != nil {
		h.send(ctx, b, chatID, "❌ Оберіть час кнопкою:")
		return
	}

	req, err := h.rescheduleService.PendingForStudent(ctx, telegramID)
	if err != nil || req == nil {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	dateStr, _ := h.stateManager.GetString(telegramID, "resched_date")
	date, err := time.ParseInLocation(dateFormat, dateStr, h.loc)
	if err != nil {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	// Перенос фиксируется только после явного подтверждения
	h.stateManager.SetData(telegramID, "resched_time", timeStr)
	h.stateManager.Set(telegramID, state.StateRescheduleConfirm)
	h.sendKeyboard(ctx, b, chatID,
		rescheduleConfirmText(req, date, timeStr),
		replyKeyboard([][]string{{ButtonConfirm}, {ButtonBack}}))
}

// rescheduleConfirmText сводка переноса: старое и новое расписание
func rescheduleConfirmText(req *model.RescheduleRequest, newDate time.Time, newTime string) string {
	return fmt.Sprintf(
		"Перевірте перенесення:\n\n"+
			"📅 Було: %s о %s\n"+
			"📅 Стане: %s о %s\n⏱ %s",
		req.OldDate.Format(dateFormat), req.OldTime,
		newDate.Format(dateFormat), newTime, req.OldDuration,
	)
}

func (h *Handlers) handleRescheduleConfirm(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if update.Message.Text != ButtonConfirm {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	uidStr, ok := h.stateManager.GetString(telegramID, "resched_uid")
	if !ok {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}
	uid, err := uuid.Parse(uidStr)
	if err != nil {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	dateStr, _ := h.stateManager.GetString(telegramID, "resched_date")
	date, err := time.ParseInLocation(dateFormat, dateStr, h.loc)
	if err != nil {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}
	timeStr, ok := h.stateManager.GetString(telegramID, "resched_time")
	if !ok {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	now := time.Now().In(h.loc)
	req, err := h.rescheduleService.Accept(ctx, uid, date, timeStr, now)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotUnavailable):
			h.send(ctx, b, chatID, "❌ Цей час вже зайняли.")
			pending, perr := h.rescheduleService.PendingForStudent(ctx, telegramID)
			if perr == nil && pending != nil {
				h.showRescheduleDates(ctx, b, chatID, telegramID, pending.InstructorID)
				return
			}
			h.mainMenu(ctx, b, chatID, telegramID)
			return
		case errors.Is(err, service.ErrRequestNotPending), errors.Is(err, service.ErrRequestNotFound):
			h.send(ctx, b, chatID, "❌ Запит на перенесення вже закрито.")
		default:
			h.logger.Error("Failed to accept reschedule", zap.String("request_uid", uidStr), zap.Error(err))
			h.send(ctx, b, chatID, "❌ Не вдалося перенести заняття. Спробуйте пізніше.")
		}
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	h.send(ctx, b, chatID,
		"✅ Заняття перенесено на "+req.NewDate.Format(dateFormat)+" о "+*req.NewTime+".")
	h.mainMenu(ctx, b, chatID, telegramID)
}
