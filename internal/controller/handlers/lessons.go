package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/yshabas/avtoshkola_bot/internal/controller/state"
	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/service"
	"go.uber.org/zap"
)

func formatLessonLine(lesson *model.Lesson) string {
	return fmt.Sprintf("%s %s (%s) — %s",
		lesson.Date.Format(dateFormat), lesson.Time, lesson.Duration, lesson.InstructorName)
}

// showMyLessons список активных занятий ученика
func (h *Handlers) showMyLessons(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	lessons, err := h.bookingService.StudentLessons(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to list student lessons", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return
	}
	if len(lessons) == 0 {
		h.send(ctx, b, chatID, "У вас немає запланованих занять.")
		return
	}

	var lines []string
	for _, lesson := range lessons {
		lines = append(lines, "📅 "+formatLessonLine(lesson))
	}
	h.send(ctx, b, chatID, "Ваші заняття:\n\n"+strings.Join(lines, "\n"))
}

// startCancel предлагает выбрать занятие для отмены
func (h *Handlers) startCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	lessons, err := h.bookingService.StudentLessons(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to list student lessons", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return
	}
	if len(lessons) == 0 {
		h.send(ctx, b, chatID, "Скасовувати нічого: занять немає.")
		return
	}

	var labels []string
	for _, lesson := range lessons {
		labels = append(labels, formatLessonLine(lesson))
		h.stateManager.SetData(telegramID, "cancel_"+formatLessonLine(lesson), lesson.ID)
	}

	h.stateManager.Set(telegramID, state.StateCancelPick)
	h.sendKeyboard(ctx, b, chatID, "Яке заняття скасувати?", replyKeyboard(withBack(rowsOf(labels, 1))))
}

func (h *Handlers) handleCancelPick(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	lessonID, ok := h.stateManager.GetInt64(telegramID, "cancel_"+strings.TrimSpace(update.Message.Text))
	if !ok {
		h.send(ctx, b, chatID, "❌ Оберіть заняття кнопкою:")
		return
	}

	now := time.Now().In(h.loc)
	_, err := h.bookingService.Cancel(ctx, lessonID, model.CancelledByStudent, now)
	if err != nil {
		if errors.Is(err, service.ErrLessonNotActive) || errors.Is(err, service.ErrLessonNotFound) {
			h.send(ctx, b, chatID, "❌ Це заняття вже не активне.")
		} else {
			h.logger.Error("Failed to cancel lesson", zap.Int64("lesson_id", lessonID), zap.Error(err))
			h.send(ctx, b, chatID, "❌ Не вдалося скасувати. Спробуйте пізніше.")
		}
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	h.send(ctx, b, chatID, "✅ Заняття скасовано.")
	h.mainMenu(ctx, b, chatID, telegramID)
}

// handleStudentStars обрабатывает нажатие звёзд вне диалога: ученик
// оценивает последнее завершённое заняття
func (h *Handlers) handleStudentStars(ctx context.Context, b *bot.Bot, update *models.Update, rating int) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	lesson, err := h.sweeperService.LessonAwaitingRating(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to find lesson awaiting rating", zap.Error(err))
		return
	}
	if lesson == nil {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	if err := h.sweeperService.RateLesson(ctx, lesson.ID, rating); err != nil {
		h.logger.Error("Failed to rate lesson", zap.Int64("lesson_id", lesson.ID), zap.Error(err))
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	h.stateManager.Set(telegramID, state.StateFeedbackWait)
	h.stateManager.SetData(telegramID, "feedback_lesson_id", lesson.ID)
	h.sendKeyboard(ctx, b, chatID,
		"Дякуємо за оцінку! Можете залишити відгук текстом:",
		replyKeyboard([][]string{{ButtonSkip}}))
}

func (h *Handlers) handleFeedback(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	if text != ButtonSkip && text != "" {
		lessonID, ok := h.stateManager.GetInt64(telegramID, "feedback_lesson_id")
		if ok {
			if err := h.sweeperService.AddFeedback(ctx, lessonID, text); err != nil {
				h.logger.Error("Failed to save feedback", zap.Int64("lesson_id", lessonID), zap.Error(err))
			}
		}
		h.send(ctx, b, chatID, "💬 Відгук збережено, дякуємо!")
	}

	h.mainMenu(ctx, b, chatID, telegramID)
}
