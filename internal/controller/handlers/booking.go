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

const dateFormat = "02.01.2006"

// startBooking начинает диалог записи на заняття
func (h *Handlers) startBooking(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	student, err := h.userService.GetStudent(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to look up student", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return
	}
	if student == nil {
		h.send(ctx, b, chatID, "Спочатку потрібно зареєструватися: /start")
		return
	}

	h.stateManager.Set(telegramID, state.StateBookTransmission)
	h.sendKeyboard(ctx, b, chatID, "🚗 Яка коробка передач вас цікавить?", transmissionKeyboard())
}

func (h *Handlers) handleBookTransmission(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	transmission := model.Transmission(update.Message.Text)
	if transmission != model.TransmissionAutomatic && transmission != model.TransmissionManual {
		h.sendKeyboard(ctx, b, chatID, "❌ Оберіть коробку передач кнопкою:", transmissionKeyboard())
		return
	}

	instructors, err := h.userService.InstructorsByTransmission(ctx, transmission)
	if err != nil {
		h.logger.Error("Failed to list instructors", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}
	if len(instructors) == 0 {
		h.send(ctx, b, chatID, "На жаль, зараз немає вільних інструкторів з такою коробкою.")
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	var lines []string
	var names []string
	for _, ins := range instructors {
		lines = append(lines, fmt.Sprintf("👨‍🏫 %s — %d грн/год", ins.Name, ins.PricePerHour))
		names = append(names, ins.Name)
	}

	h.stateManager.Set(telegramID, state.StateBookInstructor)
	h.sendKeyboard(ctx, b, chatID,
		"Оберіть інструктора:\n\n"+strings.Join(lines, "\n"),
		replyKeyboard(withBack(rowsOf(names, 2))))
}

func (h *Handlers) handleBookInstructor(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	instructor, err := h.userService.GetInstructorByName(ctx, strings.TrimSpace(update.Message.Text))
	if err != nil {
		h.logger.Error("Failed to look up instructor", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return
	}
	if instructor == nil || !instructor.IsActive {
		h.send(ctx, b, chatID, "❌ Оберіть інструктора кнопкою:")
		return
	}

	h.stateManager.SetData(telegramID, "book_instructor_id", instructor.ID)
	h.showBookingDates(ctx, b, chatID, telegramID, instructor.ID)
}

func (h *Handlers) showBookingDates(ctx context.Context, b *bot.Bot, chatID, telegramID, instructorID int64) {
	now := time.Now().In(h.loc)
	dates, err := h.availability.NextDates(ctx, instructorID, now, bookingWindowDays)
	if err != nil {
		h.logger.Error("Failed to compute available dates", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return
	}
	if len(dates) == 0 {
		h.send(ctx, b, chatID, "На найближчі два тижні вільних слотів немає 😔")
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	var labels []string
	for _, d := range dates {
		labels = append(labels, d.Date.Format(dateFormat))
	}

	h.stateManager.Set(telegramID, state.StateBookDate)
	h.sendKeyboard(ctx, b, chatID, "📅 Оберіть день:", replyKeyboard(withBack(rowsOf(labels, 3))))
}

func (h *Handlers) handleBookDate(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	now := time.Now().In(h.loc)
	date, err := parseOfferedDate(update.Message.Text, now, bookingWindowDays, h.loc)
	if errors.Is(err, errDateOutsideWindow) {
		h.send(ctx, b, chatID, "❌ Записатися можна лише на найближчі два тижні. Оберіть день кнопкою:")
		return
	}
	if err != nil {
		h.send(ctx, b, chatID, "❌ Оберіть день кнопкою:")
		return
	}

	instructorID, ok := h.stateManager.GetInt64(telegramID, "book_instructor_id")
	if !ok {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	slots, err := h.availability.AvailableSlots(ctx, instructorID, date, now)
	if err != nil {
		h.logger.Error("Failed to compute slots", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Сталася помилка. Спробуйте пізніше.")
		return
	}
	if len(slots) == 0 {
		h.send(ctx, b, chatID, "На цей день вільного часу вже немає. Оберіть інший день:")
		return
	}

	h.stateManager.SetData(telegramID, "book_date", date.Format(dateFormat))
	h.stateManager.Set(telegramID, state.StateBookTime)
	h.sendKeyboard(ctx, b, chatID, "🕐 Оберіть час:", replyKeyboard(withBack(rowsOf(slots, 4))))
}

func (h *Handlers) handleBookTime(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	timeStr := strings.TrimSpace(update.Message.Text)

	if _, err := timegrid.MinutesOfDay(timeStr); err != nil {
		h.send(ctx, b, chatID, "❌ Оберіть час кнопкою:")
		return
	}

	h.stateManager.SetData(telegramID, "book_time", timeStr)
	h.stateManager.Set(telegramID, state.StateBookDuration)
	h.sendKeyboard(ctx, b, chatID, "⏱ Тривалість заняття:", durationKeyboard())
}

func (h *Handlers) handleBookDuration(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	dur := model.Duration(update.Message.Text)
	if !dur.Valid() {
		h.sendKeyboard(ctx, b, chatID, "❌ Оберіть тривалість кнопкою:", durationKeyboard())
		return
	}

	h.stateManager.SetData(telegramID, "book_duration", string(dur))
	h.stateManager.Set(telegramID, state.StateBookComment)
	h.sendKeyboard(ctx, b, chatID,
		"💬 Коментар для інструктора (або пропустіть):",
		replyKeyboard([][]string{{ButtonSkip}}))
}

func (h *Handlers) handleBookComment(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	comment := strings.TrimSpace(update.Message.Text)
	if comment == ButtonSkip {
		comment = ""
	}
	if len(comment) > 500 {
		h.send(ctx, b, chatID, "❌ Коментар задовгий, до 500 символів:")
		return
	}
	h.stateManager.SetData(telegramID, "book_comment", comment)

	student, err := h.userService.GetStudent(ctx, telegramID)
	if err != nil || student == nil {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	dateStr, _ := h.stateManager.GetString(telegramID, "book_date")
	timeStr, _ := h.stateManager.GetString(telegramID, "book_time")
	durStr, _ := h.stateManager.GetString(telegramID, "book_duration")
	price := service.LessonPrice(student.Tariff, model.Duration(durStr))

	text := fmt.Sprintf(
		"Перевірте запис:\n\n"+
			"📅 %s\n🕐 %s\n⏱ %s\n💰 %d грн",
		dateStr, timeStr, durStr, price,
	)
	if comment != "" {
		text += fmt.Sprintf("\n💬 %s", comment)
	}

	h.stateManager.Set(telegramID, state.StateBookConfirm)
	h.sendKeyboard(ctx, b, chatID, text, replyKeyboard([][]string{{ButtonConfirm}, {ButtonBack}}))
}

func (h *Handlers) handleBookConfirm(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	if update.Message.Text != ButtonConfirm {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	student, err := h.userService.GetStudent(ctx, telegramID)
	if err != nil || student == nil {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	instructorID, _ := h.stateManager.GetInt64(telegramID, "book_instructor_id")
	dateStr, _ := h.stateManager.GetString(telegramID, "book_date")
	timeStr, _ := h.stateManager.GetString(telegramID, "book_time")
	durStr, _ := h.stateManager.GetString(telegramID, "book_duration")
	comment, _ := h.stateManager.GetString(telegramID, "book_comment")

	date, err := time.ParseInLocation(dateFormat, dateStr, h.loc)
	if err != nil {
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	now := time.Now().In(h.loc)
	_, err = h.bookingService.Book(ctx, instructorID, student, date, timeStr, model.Duration(durStr), comment, now)
	if err != nil {
		h.explainBookingError(ctx, b, chatID, err)
		h.mainMenu(ctx, b, chatID, telegramID)
		return
	}

	// Подтверждение придёт отдельным сообщением от сервиса
	h.mainMenu(ctx, b, chatID, telegramID)
}

// explainBookingError переводит ошибку бронирования на язык ученика
func (h *Handlers) explainBookingError(ctx context.Context, b *bot.Bot, chatID int64, err error) {
	var doubleBooked *service.DoubleBookedError
	var dailyCap *service.DailyCapError
	var weeklyCap *service.WeeklyCapError

	switch {
	case errors.As(err, &doubleBooked):
		h.send(ctx, b, chatID, fmt.Sprintf(
			"❌ У вас вже є заняття о %s (%s) з інструктором %s.",
			doubleBooked.Time, doubleBooked.Duration, doubleBooked.InstructorName))
	case errors.As(err, &dailyCap):
		h.send(ctx, b, chatID, fmt.Sprintf(
			"❌ Не більше %.0f годин на день. На цей день вам доступно ще %.1f год.",
			service.DailyCapHours, dailyCap.Remaining()))
	case errors.As(err, &weeklyCap):
		h.send(ctx, b, chatID, fmt.Sprintf(
			"❌ Не більше %.0f годин на тиждень. На цьому тижні вам доступно ще %.1f год.",
			service.WeeklyCapHours, weeklyCap.Remaining()))
	case errors.Is(err, service.ErrSlotUnavailable):
		h.send(ctx, b, chatID, "❌ Цей час щойно зайняли. Оберіть інший слот.")
	case errors.Is(err, service.ErrInvalidInput):
		h.send(ctx, b, chatID, "❌ Некоректні дані запису. Почніть спочатку.")
	default:
		h.logger.Error("Booking failed", zap.Error(err))
		h.send(ctx, b, chatID, "❌ Не вдалося записатися. Спробуйте пізніше.")
	}
}
