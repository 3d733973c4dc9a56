package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/repository"
	"github.com/yshabas/avtoshkola_bot/internal/timegrid"
	"go.uber.org/zap"
)

// Кнопки оценки занятия
const (
	ButtonRatingSkip = "⏭️ Пропустити"
)

// RatingKeyboard клавиатура выбора оценки 1-5 звёзд
func RatingKeyboard() [][]string {
	return [][]string{
		{"⭐", "⭐⭐", "⭐⭐⭐"},
		{"⭐⭐⭐⭐", "⭐⭐⭐⭐⭐"},
		{ButtonRatingSkip},
	}
}

// ParseStars переводит текст кнопки со звёздами в оценку 1-5
func ParseStars(text string) (int, bool) {
	n := strings.Count(text, "⭐")
	if n < 1 || n > 5 || text != strings.Repeat("⭐", n) {
		return 0, false
	}
	return n, true
}

// SweeperService фоновая обработка жизненного цикла занятий:
// завершение прошедших, напоминания за сутки и за два часа,
// сбор оценок после завершения.
type SweeperService struct {
	lessons  LessonStore
	notifier Notifier
	loc      *time.Location
	logger   *zap.Logger
}

func NewSweeperService(lessons LessonStore, notifier Notifier, loc *time.Location, logger *zap.Logger) *SweeperService {
	return &SweeperService{
		lessons:  lessons,
		notifier: notifier,
		loc:      loc,
		logger:   logger,
	}
}

// CompleteElapsed помечает завершёнными активные занятия, чьё время
// окончания уже прошло, и просит ученика поставить оценку.
// Возвращает число завершённых занятий.
func (s *SweeperService) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	lessons, err := s.lessons.GetActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("get active lessons: %w", err)
	}

	completed := 0
	for _, lesson := range lessons {
		start, err := timegrid.At(lesson.Date, lesson.Time, s.loc)
		if err != nil {
			s.logger.Error("Broken lesson time", zap.Int64("lesson_id", lesson.ID), zap.Error(err))
			continue
		}
		end := start.Add(time.Duration(lesson.Duration.Minutes()) * time.Minute)
		if end.After(now) {
			continue
		}

		status := model.LessonStatusCompleted
		completedAt := now
		if err := s.lessons.UpdateFields(ctx, lesson.ID, repository.LessonUpdate{
			Status:      &status,
			CompletedAt: &completedAt,
		}); err != nil {
			s.logger.Error("Failed to complete lesson", zap.Int64("lesson_id", lesson.ID), zap.Error(err))
			continue
		}
		completed++

		s.logger.Info("Lesson completed",
			zap.Int64("lesson_id", lesson.ID),
			zap.Int64("student_telegram_id", lesson.StudentTelegramID),
		)

		text := fmt.Sprintf(
			"🏁 Заняття завершено!\n\n"+
				"👨‍🏫 Інструктор: %s\n"+
				"📅 %s, 🕐 %s\n\n"+
				"Оцініть, будь ласка, заняття:",
			lesson.InstructorName, lesson.Date.Format("02.01.2006"), lesson.Time,
		)
		if err := s.notifier.SendChoice(ctx, lesson.StudentTelegramID, text, RatingKeyboard()); err != nil {
			s.logger.Error("Failed to send rating prompt", zap.Int64("lesson_id", lesson.ID), zap.Error(err))
		}
	}

	return completed, nil
}

// Окна отправки напоминаний относительно начала занятия.
// Ширина в час с запасом: период опроса меньше окна, поэтому
// занятие не проскочит между тиками.
const (
	reminder24hFrom = 23*time.Hour + 30*time.Minute
	reminder24hTo   = 24*time.Hour + 30*time.Minute
	reminder2hFrom  = 90 * time.Minute
	reminder2hTo    = 150 * time.Minute
)

// SendReminders рассылает напоминания о занятиях, попавших в окна
// "за сутки" и "за два часа". Флаг ставится до отправки: лучше
// потерять одно напоминание, чем отправить его дважды.
func (s *SweeperService) SendReminders(ctx context.Context, now time.Time) error {
	if err := s.sendRemindersKind(ctx, now, repository.Reminder24h, reminder24hFrom, reminder24hTo,
		"⏰ Нагадування: завтра у вас заняття!"); err != nil {
		return err
	}
	return s.sendRemindersKind(ctx, now, repository.Reminder2h, reminder2hFrom, reminder2hTo,
		"⏰ Нагадування: заняття вже через 2 години!")
}

func (s *SweeperService) sendRemindersKind(ctx context.Context, now time.Time, kind repository.ReminderKind, from, to time.Duration, header string) error {
	lessons, err := s.lessons.GetActiveWithoutReminder(ctx, kind)
	if err != nil {
		return fmt.Errorf("get lessons for %s: %w", kind, err)
	}

	for _, lesson := range lessons {
		start, err := timegrid.At(lesson.Date, lesson.Time, s.loc)
		if err != nil {
			s.logger.Error("Broken lesson time", zap.Int64("lesson_id", lesson.ID), zap.Error(err))
			continue
		}
		until := start.Sub(now)
		if until < from || until > to {
			continue
		}

		claimed, err := s.lessons.ClaimReminder(ctx, lesson.ID, kind)
		if err != nil {
			s.logger.Error("Failed to claim reminder",
				zap.Int64("lesson_id", lesson.ID), zap.String("kind", string(kind)), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		text := fmt.Sprintf(
			"%s\n\n"+
				"👨‍🏫 Інструктор: %s\n"+
				"📅 %s\n"+
				"🕐 %s (%s)",
			header, lesson.InstructorName, lesson.Date.Format("02.01.2006"), lesson.Time, lesson.Duration,
		)
		if err := s.notifier.SendText(ctx, lesson.StudentTelegramID, text); err != nil {
			s.logger.Error("Failed to send reminder",
				zap.Int64("lesson_id", lesson.ID), zap.String("kind", string(kind)), zap.Error(err))
			continue
		}

		s.logger.Info("Reminder sent",
			zap.Int64("lesson_id", lesson.ID),
			zap.String("kind", string(kind)),
		)
	}

	return nil
}

// RateLesson оценка занятия учеником
func (s *SweeperService) RateLesson(ctx context.Context, lessonID int64, rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidInput
	}
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("get lesson: %w", err)
	}
	if lesson == nil {
		return ErrLessonNotFound
	}
	if lesson.Status != model.LessonStatusCompleted {
		return ErrLessonNotActive
	}
	if err := s.lessons.UpdateFields(ctx, lessonID, repository.LessonUpdate{Rating: &rating}); err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	s.logger.Info("Lesson rated", zap.Int64("lesson_id", lessonID), zap.Int("rating", rating))
	return nil
}

// AddFeedback текстовый отзыв ученика
func (s *SweeperService) AddFeedback(ctx context.Context, lessonID int64, feedback string) error {
	if err := s.lessons.UpdateFields(ctx, lessonID, repository.LessonUpdate{Feedback: &feedback}); err != nil {
		return fmt.Errorf("set feedback: %w", err)
	}
	return nil
}

// RateStudent оценка ученика инструктором, с необязательным комментарием
func (s *SweeperService) RateStudent(ctx context.Context, lessonID int64, rating int, feedback string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidInput
	}
	upd := repository.LessonUpdate{InstructorRating: &rating}
	if feedback != "" {
		upd.InstructorFeedback = &feedback
	}
	if err := s.lessons.UpdateFields(ctx, lessonID, upd); err != nil {
		return fmt.Errorf("set instructor rating: %w", err)
	}
	s.logger.Info("Student rated", zap.Int64("lesson_id", lessonID), zap.Int("rating", rating))
	return nil
}

// LessonsToRate завершённые занятия инструктора без его оценки
func (s *SweeperService) LessonsToRate(ctx context.Context, instructorID int64) ([]*model.Lesson, error) {
	return s.lessons.GetCompletedUnratedByInstructor(ctx, instructorID)
}

// LessonAwaitingRating последнее завершённое занятие ученика без оценки,
// nil если оценивать нечего
func (s *SweeperService) LessonAwaitingRating(ctx context.Context, studentTelegramID int64) (*model.Lesson, error) {
	return s.lessons.GetCompletedUnratedByStudent(ctx, studentTelegramID)
}
