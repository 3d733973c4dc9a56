package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/repository"
	"github.com/yshabas/avtoshkola_bot/internal/repository/base"
	"github.com/yshabas/avtoshkola_bot/internal/timegrid"
	"go.uber.org/zap"
)

type BookingService struct {
	lessons      LessonStore
	instructors  InstructorStore
	availability *AvailabilityService
	notifier     Notifier
	logger       *zap.Logger
}

func NewBookingService(
	lessons LessonStore,
	instructors InstructorStore,
	availability *AvailabilityService,
	notifier Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		lessons:      lessons,
		instructors:  instructors,
		availability: availability,
		notifier:     notifier,
		logger:       logger,
	}
}

// Book проверяет лимиты и бронирует занятие. Порядок проверок:
// пересечение с другими занятиями ученика, дневной лимит, недельный
// лимит, доступность слота на момент вставки. Каждая проверка —
// жёсткий отказ со своим типом ошибки.
func (s *BookingService) Book(ctx context.Context, instructorID int64, student *model.Student, date time.Time, timeStr string, dur model.Duration, comment string, now time.Time) (*model.Lesson, error) {
	if !dur.Valid() {
		return nil, fmt.Errorf("%w: duration %q", ErrInvalidInput, dur)
	}

	reqStart, err := timegrid.MinutesOfDay(timeStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	reqEnd := reqStart + dur.Minutes()

	instructor, err := s.instructors.GetByID(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get instructor: %w", err)
	}
	if instructor == nil {
		return nil, ErrInstructorNotFound
	}

	day := timegrid.DateOnly(date)

	// Проверка 1: ученик не занят в это время у любого инструктора
	sameDay, err := s.lessons.GetActiveByStudentDate(ctx, student.TelegramID, day)
	if err != nil {
		return nil, fmt.Errorf("get student lessons: %w", err)
	}

	var hoursToday float64
	for _, lesson := range sameDay {
		hoursToday += lesson.Duration.Hours()

		start, err := timegrid.MinutesOfDay(lesson.Time)
		if err != nil {
			continue
		}
		if timegrid.Overlaps(reqStart, reqEnd, start, start+lesson.Duration.Minutes()) {
			return nil, &DoubleBookedError{
				InstructorName: lesson.InstructorName,
				Time:           lesson.Time,
				Duration:       lesson.Duration,
			}
		}
	}

	// Проверка 2: не больше 2 часов в день
	if hoursToday+dur.Hours() > DailyCapHours {
		return nil, &DailyCapError{Booked: hoursToday}
	}

	// Проверка 3: не больше 6 часов в неделю (понедельник–воскресенье)
	weekStart, weekEnd := timegrid.WeekBounds(day)
	weekLessons, err := s.lessons.GetActiveByStudentBetween(ctx, student.TelegramID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("get student week lessons: %w", err)
	}

	var hoursWeek float64
	for _, lesson := range weekLessons {
		hoursWeek += lesson.Duration.Hours()
	}
	if hoursWeek+dur.Hours() > WeeklyCapHours {
		return nil, &WeeklyCapError{Booked: hoursWeek}
	}

	// Проверка 4: слот всё ещё свободен. Между показом меню и
	// подтверждением слот мог занять другой ученик.
	fits, err := s.availability.SlotFits(ctx, instructorID, day, timeStr, dur.SlotsOccupied(), now)
	if err != nil {
		return nil, fmt.Errorf("recheck slot: %w", err)
	}
	if !fits {
		return nil, ErrSlotUnavailable
	}

	lesson := &model.Lesson{
		InstructorID:      instructorID,
		StudentTelegramID: student.TelegramID,
		StudentName:       student.Name,
		StudentPhone:      student.Phone,
		StudentTariff:     student.Tariff,
		Date:              day,
		Time:              timeStr,
		Duration:          dur,
		Status:            model.LessonStatusActive,
		Comment:           comment,
		InstructorName:    instructor.Name,
	}

	if err := s.lessons.Create(ctx, lesson); err != nil {
		// Уникальный индекс по активным слотам добивает остаток гонки
		// check-then-act
		if base.IsUniqueViolation(err) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("create lesson: %w", err)
	}

	s.logger.Info("Lesson booked",
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("instructor_id", instructorID),
		zap.Int64("student_telegram_id", student.TelegramID),
		zap.String("date", day.Format("02.01.2006")),
		zap.String("time", timeStr),
		zap.String("duration", string(dur)),
	)

	s.notifyBooked(ctx, instructor, student, lesson)

	return lesson, nil
}

// notifyBooked уведомления после успешного бронирования.
// Инструктор получает контакты ученика и сумму, ученик —
// подтверждение без контактов инструктора.
func (s *BookingService) notifyBooked(ctx context.Context, instructor *model.Instructor, student *model.Student, lesson *model.Lesson) {
	price := LessonPrice(student.Tariff, lesson.Duration)
	dateStr := lesson.Date.Format("02.01.2006")

	if instructor.TelegramID != 0 {
		text := fmt.Sprintf(
			"🔔 Новий запис!\n\n"+
				"👤 Учень: %s\n"+
				"📱 Телефон: %s\n"+
				"📅 Дата: %s\n"+
				"🕐 Час: %s\n"+
				"⏱ Тривалість: %s\n"+
				"💰 Вартість: %d грн",
			student.Name, student.Phone, dateStr, lesson.Time, lesson.Duration, price,
		)
		if lesson.Comment != "" {
			text += fmt.Sprintf("\n\n💬 Коментар учня:\n\"%s\"", lesson.Comment)
		}
		if err := s.notifier.SendText(ctx, instructor.TelegramID, text); err != nil {
			s.logger.Error("Failed to notify instructor about booking",
				zap.Int64("lesson_id", lesson.ID), zap.Error(err))
		}
	}

	text := fmt.Sprintf(
		"✅ Заняття заброньовано!\n\n"+
			"👨‍🏫 Інструктор: %s\n"+
			"📅 Дата: %s\n"+
			"🕐 Час: %s\n"+
			"⏱ Тривалість: %s",
		instructor.Name, dateStr, lesson.Time, lesson.Duration,
	)
	if err := s.notifier.SendText(ctx, student.TelegramID, text); err != nil {
		s.logger.Error("Failed to notify student about booking",
			zap.Int64("lesson_id", lesson.ID), zap.Error(err))
	}
}

// Cancel отменяет активное занятие и уведомляет вторую сторону
func (s *BookingService) Cancel(ctx context.Context, lessonID int64, by model.CancelledBy, now time.Time) (*model.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	if lesson.Status != model.LessonStatusActive {
		return nil, ErrLessonNotActive
	}

	status := model.LessonStatusCancelled
	err = s.lessons.UpdateFields(ctx, lessonID, repository.LessonUpdate{
		Status:      &status,
		CancelledBy: &by,
		CancelledAt: &now,
	})
	if err != nil {
		return nil, fmt.Errorf("cancel lesson: %w", err)
	}

	s.logger.Info("Lesson cancelled",
		zap.Int64("lesson_id", lessonID),
		zap.String("by", string(by)),
	)

	s.notifyCancelled(ctx, lesson, by)

	return lesson, nil
}

func (s *BookingService) notifyCancelled(ctx context.Context, lesson *model.Lesson, by model.CancelledBy) {
	dateStr := lesson.Date.Format("02.01.2006")

	if by == model.CancelledByStudent {
		instructor, err := s.instructors.GetByID(ctx, lesson.InstructorID)
		if err != nil || instructor == nil || instructor.TelegramID == 0 {
			return
		}
		price := LessonPrice(lesson.StudentTariff, lesson.Duration)
		text := fmt.Sprintf(
			"🔔 Урок скасовано учнем\n\n"+
				"👤 Учень: %s\n"+
				"📱 Телефон: %s\n"+
				"📅 Дата: %s\n"+
				"🕐 Час: %s\n"+
				"⏱ Тривалість: %s\n"+
				"💰 Сума: %d грн",
			lesson.StudentName, lesson.StudentPhone, dateStr, lesson.Time, lesson.Duration, price,
		)
		if err := s.notifier.SendText(ctx, instructor.TelegramID, text); err != nil {
			s.logger.Error("Failed to notify instructor about cancellation",
				zap.Int64("lesson_id", lesson.ID), zap.Error(err))
		}
		return
	}

	text := fmt.Sprintf(
		"🔔 Урок скасовано інструктором\n\n"+
			"👨‍🏫 %s\n"+
			"📅 %s\n"+
			"🕐 %s",
		lesson.InstructorName, dateStr, lesson.Time,
	)
	if err := s.notifier.SendText(ctx, lesson.StudentTelegramID, text); err != nil {
		s.logger.Error("Failed to notify student about cancellation",
			zap.Int64("lesson_id", lesson.ID), zap.Error(err))
	}
}

// StudentLessons активные занятия ученика для меню "Мої заняття"
func (s *BookingService) StudentLessons(ctx context.Context, studentTelegramID int64) ([]*model.Lesson, error) {
	return s.lessons.GetActiveByStudent(ctx, studentTelegramID)
}

// InstructorSchedule активные занятия инструктора на дату
func (s *BookingService) InstructorSchedule(ctx context.Context, instructorID int64, date time.Time) ([]*model.Lesson, error) {
	return s.lessons.GetActiveByInstructorDate(ctx, instructorID, timegrid.DateOnly(date))
}

// GetLesson занятие по ID
func (s *BookingService) GetLesson(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	return s.lessons.GetByID(ctx, lessonID)
}
