package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/yshabas/avtoshkola_bot/internal/controller/state"
	"github.com/yshabas/avtoshkola_bot/internal/service"
)

// HandleTextMessage маршрутизирует текстовые сообщения: сначала кнопки
// меню и ответы вне диалога, затем текущий шаг диалога пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	// Команды обрабатываются своими хендлерами
	if strings.HasPrefix(text, "/") {
		return
	}

	if text == ButtonBack {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	// Кнопки меню обрывают любой начатый диалог
	switch text {
	case ButtonBook:
		h.startBooking(ctx, b, update)
		return
	case ButtonMyLessons:
		h.showMyLessons(ctx, b, update)
		return
	case ButtonCancelMenu:
		h.startCancel(ctx, b, update)
		return
	case ButtonHelp:
		h.HandleHelp(ctx, b, update)
		return
	case ButtonSchedule:
		h.showSchedule(ctx, b, update)
		return
	case ButtonBlock:
		h.startBlock(ctx, b, update)
		return
	case ButtonUnblock:
		h.startUnblock(ctx, b, update)
		return
	case ButtonRateStudents:
		h.startRateStudents(ctx, b, update)
		return
	case service.ButtonRescheduleAccept:
		h.handleRescheduleAnswer(ctx, b, update, true)
		return
	case service.ButtonRescheduleReject:
		h.handleRescheduleAnswer(ctx, b, update, false)
		return
	}

	switch h.stateManager.Get(telegramID) {
	case state.StateRegName:
		h.handleRegName(ctx, b, update)
	case state.StateRegPhone:
		h.handleRegPhone(ctx, b, update)
	case state.StateRegTariff:
		h.handleRegTariff(ctx, b, update)

	case state.StateBookTransmission:
		h.handleBookTransmission(ctx, b, update)
	case state.StateBookInstructor:
		h.handleBookInstructor(ctx, b, update)
	case state.StateBookDate:
		h.handleBookDate(ctx, b, update)
	case state.StateBookTime:
		h.handleBookTime(ctx, b, update)
	case state.StateBookDuration:
		h.handleBookDuration(ctx, b, update)
	case state.StateBookComment:
		h.handleBookComment(ctx, b, update)
	case state.StateBookConfirm:
		h.handleBookConfirm(ctx, b, update)

	case state.StateCancelPick:
		h.handleCancelPick(ctx, b, update)
	case state.StateFeedbackWait:
		h.handleFeedback(ctx, b, update)

	case state.StateBlockDate:
		h.handleBlockDate(ctx, b, update)
	case state.StateBlockStart:
		h.handleBlockStart(ctx, b, update)
	case state.StateBlockEnd:
		h.handleBlockEnd(ctx, b, update)
	case state.StateBlockReason:
		h.handleBlockReason(ctx, b, update)
	case state.StateBlockConflict:
		h.handleBlockConflict(ctx, b, update)
	case state.StateBlockRescheduleReason:
		h.handleBlockRescheduleReason(ctx, b, update)

	case state.StateUnblockPick:
		h.handleUnblockPick(ctx, b, update)
	case state.StateInstructorRatePick:
		h.handleInstructorRatePick(ctx, b, update)
	case state.StateInstructorRateStars:
		h.handleInstructorRateStars(ctx, b, update)
	case state.StateInstructorRateFeedback:
		h.handleInstructorRateFeedback(ctx, b, update)

	case state.StateRescheduleDate:
		h.handleRescheduleDate(ctx, b, update)
	case state.StateRescheduleTime:
		h.handleRescheduleTime(ctx, b, update)
	case state.StateRescheduleConfirm:
		h.handleRescheduleConfirm(ctx, b, update)

	default:
		// Вне диалога звёзды — это оценка последнего завершённого занятия
		if rating, ok := service.ParseStars(text); ok {
			h.handleStudentStars(ctx, b, update, rating)
			return
		}
		if text == service.ButtonRatingSkip {
			h.mainMenu(ctx, b, chatID, telegramID)
			return
		}
		h.mainMenu(ctx, b, chatID, telegramID)
	}
}
