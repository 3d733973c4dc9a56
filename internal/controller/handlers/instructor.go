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
	"github.com/yshabas/avtoshkola_bot/internal/timegrid"
	"go.uber.org/zap"
)

const ButtonProposeReschedule = "🔄 Запропонувати перенесення"

// instructorOnly возвращает инструктора или nil с подсказкой
func (h *Handlers) instructorOnly(ctx context.Context, b *bot.Bot, chatID, telegramID int64) *model.Instructor {
	instructor, err := h.userService.GetInstructorByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to look up instructor", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return nil
	}
	if instructor == nil {
		h.send(ctx, b, chatID, "Ця дія доступна лише інструкторам.")
		return nil
	}
	return instructor
}

// showSchedule расписание инструктора на найближчий тиждень
func (h *Handlers) showSchedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	instructor := h.instructorOnly(ctx, b, chatID, telegramID)
	if instructor == nil {
		return
	}

	today := timegrid.DateOnly(time.Now().In(h.loc))
	var sections []string
	for i := 0; i < 7; i++ {
		date := today.AddDate(0, 0, i)
		lessons, err := h.bookingService.InstructorSchedule(ctx, instructor.ID, date)
		if err != nil {
			h.logger.Error("Failed to load schedule", zap.Error(err))
			h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
			return
		}
		if len(lessons) == 0 {
			continue
		}

		lines := []string{fmt.Sprintf("📅 %s", date.Format(dateFormat))}
		for _, lesson := range lessons {
			lines = append(lines, fmt.Sprintf("  🕐 %s (%s) — %s, %s",
				lesson.Time, lesson.Duration, lesson.StudentName, lesson.StudentPhone))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(sections) == 0 {
		h.send(ctx, b, chatID, "На найближчий тиждень занять немає.")
		return
	}
	h.send(ctx, b, chatID, "Ваш розклад:\n\n"+strings.Join(sections, "\n\n"))
}

// startBlock начинает диалог блокировки времени
func (h *Handlers) startBlock(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if h.instructorOnly(ctx, b, chatID, telegramID) == nil {
		return
	}

	today := timegrid.DateOnly(time.Now().In(h.loc))
	var labels []string
	for i := 0; i < blockWindowDays; i++ {
		labels = append(labels, today.AddDate(0, 0, i).Format(dateFormat))
	}

	h.stateManager.Set(telegramID, state.StateBlockDate)
	h.sendKeyboard(ctx, b, chatID, "📅 Який день заблокувати?", replyKeyboard(withBack(rowsOf(labels, 3))))
}

func (h *Handlers) handleBlockDate(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	date, err := parseOfferedDate(update.Message.Text, time.Now().In(h.loc), blockWindowDays, h.loc)
	if errors.Is(err, errDateOutsideWindow) {
		h.send(ctx, b, chatID, "❌ Заблокувати можна лише найближчі 30 днів. Оберіть день кнопкою:")
		return
	}
	if err != nil {
		h.send(ctx, b, chatID, "❌ Оберіть день кнопкою:")
		return
	}

	h.stateManager.SetData(telegramID, "block_date", date.Format(dateFormat))
	h.stateManager.Set(telegramID, state.StateBlockStart)
	h.send(ctx, b, chatID, "🕐 З якого часу? (наприклад, 14:00)")
}

func (h *Handlers) handleBlockStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	timeStr := strings.TrimSpace(update.Message.Text)

	if _, err := timegrid.MinutesOfDay(timeStr); err != nil {
		h.send(ctx, b, chatID, "❌ Невірний формат. Приклад: 14:00")
		return
	}

	h.stateManager.SetData(telegramID, "block_start", timeStr)
	h.stateManager.Set(telegramID, state.StateBlockEnd)
	h.send(ctx, b, chatID, "🕐 До якого часу? (наприклад, 16:00)")
}

func (h *Handlers) handleBlockEnd(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	timeStr := strings.TrimSpace(update.Message.Text)

	if _, err := timegrid.MinutesOfDay(timeStr); err != nil {
		h.send(ctx, b, chatID, "❌ Невірний формат. Приклад: 16:00")
		return
	}

	h.stateManager.SetData(telegramID, "block_end", timeStr)
	h.stateManager.Set(telegramID, state.StateBlockReason)
	h.sendKeyboard(ctx, b, chatID,
		"💬 Причина (її побачите тільки ви):",
		replyKeyboard([][]string{{ButtonSkip}}))
}

func (h *Handlers) handleBlockReason(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	instructor := h.instructorOnly(ctx, b, chatID, telegramID)
	if instructor == nil {
		h.stateManager.Clear(telegramID)
		return
	}

	reason := strings.TrimSpace(update.Message.Text)
	if reason == ButtonSkip {
		reason = ""
	}

	dateStr, _ := h.stateManager.GetString(telegramID, "block_date")
	startStr, _ := h.stateManager.GetString(telegramID, "block_start")
	endStr, _ := h.stateManager.GetString(telegramID, "block_end")

	date, err := time.ParseInLocation(dateFormat, dateStr, h.loc)
	if err != nil {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	block, conflict, err := h.blockService.RequestBlock(ctx, instructor.ID, date, startStr, endStr, reason)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			h.send(ctx, b, chatID, "❌ Некоректний інтервал. Початок має бути раніше кінця.")
		} else {
			h.logger.Error("Failed to block time", zap.Error(err))
			h.send(ctx, b, chatID, "❌ Не вдалося заблокувати час. Спробуйте пізніше.")
		}
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	if conflict != nil {
		// Блокировка упёрлась в занятие: предлагаем перенос
		h.stateManager.SetData(telegramID, "conflict_lesson_id", conflict.ID)
		h.stateManager.Set(telegramID, state.StateBlockConflict)
		h.sendKeyboard(ctx, b, chatID,
			fmt.Sprintf(
				"⚠️ Інтервал перетинається із заняттям:\n\n"+
					"📅 %s, 🕐 %s (%s)\n👤 %s\n\n"+
					"Запропонувати учню перенесення?",
				conflict.Date.Format(dateFormat), conflict.Time, conflict.Duration, conflict.StudentName),
			replyKeyboard([][]string{{ButtonProposeReschedule}, {ButtonBack}}))
		return
	}

	h.send(ctx, b, chatID, fmt.Sprintf("✅ Час %s–%s на %s заблоковано.",
		block.TimeStart, block.TimeEnd, block.Date.Format(dateFormat)))
	h.mainMenu(ctx, b, chatID, telegramID)
}

func (h *Handlers) handleBlockConflict(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if update.Message.Text != ButtonProposeReschedule {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	h.stateManager.Set(telegramID, state.StateBlockRescheduleReason)
	h.sendKeyboard(ctx, b, chatID,
		"💬 Причина перенесення (її побачить учень):",
		replyKeyboard([][]string{{ButtonSkip}}))
}

func (h *Handlers) handleBlockRescheduleReason(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	reason := strings.TrimSpace(update.Message.Text)
	if reason == ButtonSkip {
		reason = ""
	}

	lessonID, ok := h.stateManager.GetInt64(telegramID, "conflict_lesson_id")
	if !ok {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	lesson, err := h.bookingService.GetLesson(ctx, lessonID)
	if err != nil || lesson == nil {
		h.logger.Error("Failed to load conflict lesson", zap.Int64("lesson_id", lessonID), zap.Error(err))
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	_, err = h.rescheduleService.Propose(ctx, lesson, reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReschedulePending):
			h.send(ctx, b, chatID, "❌ У цього учня вже є відкритий запит на перенесення.")
		case errors.Is(err, service.ErrLessonNotActive):
			h.send(ctx, b, chatID, "❌ Це заняття вже не активне.")
		default:
			h.logger.Error("Failed to propose reschedule", zap.Int64("lesson_id", lessonID), zap.Error(err))
			h.send(ctx, b, chatID, "❌ Не вдалося надіслати запит. Спробуйте пізніше.")
		}
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	h.send(ctx, b, chatID, "📨 Запит надіслано учню. Після його відповіді прийде сповіщення.")
	h.mainMenu(ctx, b, chatID, telegramID)
}

// startUnblock предлагает выбрать блокировку для снятия
func (h *Handlers) startUnblock(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	instructor := h.instructorOnly(ctx, b, chatID, telegramID)
	if instructor == nil {
		return
	}

	blocks, err := h.blockService.ListBlocks(ctx, instructor.ID)
	if err != nil {
		h.logger.Error("Failed to list blocks", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return
	}
	if len(blocks) == 0 {
		h.send(ctx, b, chatID, "Активних блокувань немає.")
		return
	}

	var labels []string
	for _, block := range blocks {
		label := fmt.Sprintf("%s %s–%s", block.Date.Format(dateFormat), block.TimeStart, block.TimeEnd)
		labels = append(labels, label)
		h.stateManager.SetData(telegramID, "unblock_"+label, block.ID)
	}

	h.stateManager.Set(telegramID, state.StateUnblockPick)
	h.sendKeyboard(ctx, b, chatID, "Яке блокування зняти?", replyKeyboard(withBack(rowsOf(labels, 1))))
}

func (h *Handlers) handleUnblockPick(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	blockID, ok := h.stateManager.GetInt64(telegramID, "unblock_"+strings.TrimSpace(update.Message.Text))
	if !ok {
		h.send(ctx, b, chatID, "❌ Оберіть блокування кнопкою:")
		return
	}

	if err := h.blockService.Unblock(ctx, blockID); err != nil {
		h.logger.Error("Failed to unblock", zap.Int64("block_id", blockID), zap.Error(err))
		h.send(ctx, b, chatID, "❌ Не вдалося зняти блокування.")
	} else {
		h.send(ctx, b, chatID, "✅ Блокування знято, час знову доступний для запису.")
	}
	h.mainMenu(ctx, b, chatID, telegramID)
}

// startRateStudents список завершённых занятий без оценки ученика
func (h *Handlers) startRateStudents(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	instructor := h.instructorOnly(ctx, b, chatID, telegramID)
	if instructor == nil {
		return
	}

	lessons, err := h.sweeperService.LessonsToRate(ctx, instructor.ID)
	if err != nil {
		h.logger.Error("Failed to list lessons to rate", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return
	}
	if len(lessons) == 0 {
		h.send(ctx, b, chatID, "Всі учні вже оцінені 👍")
		return
	}

	var labels []string
	for _, lesson := range lessons {
		label := fmt.Sprintf("%s %s — %s", lesson.Date.Format(dateFormat), lesson.Time, lesson.StudentName)
		labels = append(labels, label)
		h.stateManager.SetData(telegramID, "irate_"+label, lesson.ID)
	}

	h.stateManager.Set(telegramID, state.StateInstructorRatePick)
	h.sendKeyboard(ctx, b, chatID, "Кого оцінюємо?", replyKeyboard(withBack(rowsOf(labels, 1))))
}

func (h *Handlers) handleInstructorRatePick(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	lessonID, ok := h.stateManager.GetInt64(telegramID, "irate_"+strings.TrimSpace(update.Message.Text))
	if !ok {
		h.send(ctx, b, chatID, "❌ Оберіть заняття кнопкою:")
		return
	}

	h.stateManager.SetData(telegramID, "irate_lesson_id", lessonID)
	h.stateManager.Set(telegramID, state.StateInstructorRateStars)
	h.sendKeyboard(ctx, b, chatID, "⭐ Оцініть учня:", replyKeyboard(service.RatingKeyboard()))
}

func (h *Handlers) handleInstructorRateStars(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	if text == service.ButtonRatingSkip {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	rating, ok := service.ParseStars(text)
	if !ok {
		h.send(ctx, b, chatID, "❌ Оберіть оцінку кнопкою:")
		return
	}

	h.stateManager.SetData(telegramID, "irate_rating", int64(rating))
	h.stateManager.Set(telegramID, state.StateInstructorRateFeedback)
	h.sendKeyboard(ctx, b, chatID,
		"💬 Коментар про учня (або пропустіть):",
		replyKeyboard([][]string{{ButtonSkip}}))
}

func (h *Handlers) handleInstructorRateFeedback(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	feedback := strings.TrimSpace(update.Message.Text)
	if feedback == ButtonSkip {
		feedback = ""
	}

	lessonID, okID := h.stateManager.GetInt64(telegramID, "irate_lesson_id")
	rating, okRating := h.stateManager.GetInt64(telegramID, "irate_rating")
	if !okID || !okRating {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	if err := h.sweeperService.RateStudent(ctx, lessonID, int(rating), feedback); err != nil {
		h.logger.Error("Failed to rate student", zap.Int64("lesson_id", lessonID), zap.Error(err))
		h.send(ctx, b, chatID, "❌ Не вдалося зберегти оцінку.")
	} else {
		h.send(ctx, b, chatID, "✅ Оцінку збережено.")
	}
	h.mainMenu(ctx, b, chatID, telegramID)
}
