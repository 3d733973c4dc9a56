package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/repository/base"
	"github.com/yshabas/avtoshkola_bot/internal/timegrid"
	"go.uber.org/zap"
)

// Кнопки ответа ученика на предложение переноса. Контроллер сверяет
// входящий текст с этими же константами.
const (
	ButtonRescheduleAccept = "✅ Так, оберу новий час"
	ButtonRescheduleReject = "❌ Ні, залишити як є"
)

// RescheduleService согласование переноса занятия между инструктором
// и учеником. Запрос проходит состояния pending → accepted | rejected,
// оба конечных состояния терминальны.
type RescheduleService struct {
	requests     RescheduleStore
	lessons      LessonStore
	instructors  InstructorStore
	availability *AvailabilityService
	notifier     Notifier
	logger       *zap.Logger
}

func NewRescheduleService(
	requests RescheduleStore,
	lessons LessonStore,
	instructors InstructorStore,
	availability *AvailabilityService,
	notifier Notifier,
	logger *zap.Logger,
) *RescheduleService {
	return &RescheduleService{
		requests:     requests,
		lessons:      lessons,
		instructors:  instructors,
		availability: availability,
		notifier:     notifier,
		logger:       logger,
	}
}

// Propose создаёт запрос на перенос занятия и отправляет ученику
// вопрос да/нет. У ученика может быть только один открытый запрос.
func (s *RescheduleService) Propose(ctx context.Context, lesson *model.Lesson, reason string) (*model.RescheduleRequest, error) {
	if lesson.Status != model.LessonStatusActive {
		return nil, ErrLessonNotActive
	}

	pending, err := s.requests.GetPendingByStudent(ctx, lesson.StudentTelegramID)
	if err != nil {
		return nil, fmt.Errorf("get pending request: %w", err)
	}
	if pending != nil {
		return nil, ErrReschedulePending
	}

	req := &model.RescheduleRequest{
		UID:               uuid.New(),
		LessonID:          lesson.ID,
		InstructorID:      lesson.InstructorID,
		StudentTelegramID: lesson.StudentTelegramID,
		OldDate:           lesson.Date,
		OldTime:           lesson.Time,
		OldDuration:       lesson.Duration,
		Status:            model.RequestStatusPending,
		Reason:            reason,
		InstructorName:    lesson.InstructorName,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		if base.IsUniqueViolation(err) {
			return nil, ErrReschedulePending
		}
		return nil, fmt.Errorf("create reschedule request: %w", err)
	}

	s.logger.Info("Reschedule proposed",
		zap.String("request_uid", req.UID.String()),
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("student_telegram_id", lesson.StudentTelegramID),
	)

	text := fmt.Sprintf(
		"🔄 Інструктор %s просить перенести ваше заняття\n\n"+
			"📅 %s\n"+
			"🕐 %s (%s)\n",
		lesson.InstructorName, lesson.Date.Format("02.01.2006"), lesson.Time, lesson.Duration,
	)
	if reason != "" {
		text += fmt.Sprintf("\n💬 Причина: %s\n", reason)
	}
	text += "\nПогоджуєтесь обрати інший час?"

	keyboard := [][]string{{ButtonRescheduleAccept}, {ButtonRescheduleReject}}
	if err := s.notifier.SendChoice(ctx, lesson.StudentTelegramID, text, keyboard); err != nil {
		s.logger.Error("Failed to send reschedule prompt",
			zap.String("request_uid", req.UID.String()), zap.Error(err))
	}

	return req, nil
}

// Reject закрывает запрос отказом: занятие остаётся на месте,
// инструктор больше не может заблокировать этот интервал
func (s *RescheduleService) Reject(ctx context.Context, uid uuid.UUID, now time.Time) (*model.RescheduleRequest, error) {
	req, err := s.requests.GetByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != model.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	if err := s.requests.MarkRejected(ctx, req.ID, now); err != nil {
		return nil, fmt.Errorf("mark rejected: %w", err)
	}
	req.Status = model.RequestStatusRejected
	req.RespondedAt = &now

	s.logger.Info("Reschedule rejected",
		zap.String("request_uid", uid.String()),
		zap.Int64("lesson_id", req.LessonID),
	)

	s.notifyInstructor(ctx, req, fmt.Sprintf(
		"❌ Учень відмовився від перенесення\n\n"+
			"📅 %s, 🕐 %s\n\n"+
			"Заняття залишається в силі, заблокувати цей час не можна.",
		req.OldDate.Format("02.01.2006"), req.OldTime,
	))

	return req, nil
}

// Accept закрывает запрос согласием: новая дата и время фиксируются
// в запросе и, в той же транзакции, переписывают занятие. Слот
// проверяется на доступность так же, как при свежем бронировании.
func (s *RescheduleService) Accept(ctx context.Context, uid uuid.UUID, newDate time.Time, newTime string, now time.Time) (*model.RescheduleRequest, error) {
	req, err := s.requests.GetByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != model.RequestStatusPending {
		return nil, ErrRequestNotPending
	}

	day := timegrid.DateOnly(newDate)

	fits, err := s.availability.SlotFits(ctx, req.InstructorID, day, newTime, req.OldDuration.SlotsOccupied(), now)
	if err != nil {
		return nil, fmt.Errorf("check new slot: %w", err)
	}
	if !fits {
		return nil, ErrSlotUnavailable
	}

	if err := s.requests.MarkAccepted(ctx, req.ID, req.LessonID, day, newTime, now); err != nil {
		return nil, fmt.Errorf("mark accepted: %w", err)
	}
	req.Status = model.RequestStatusAccepted
	req.NewDate = &day
	req.NewTime = &newTime
	req.RespondedAt = &now

	s.logger.Info("Reschedule accepted",
		zap.String("request_uid", uid.String()),
		zap.Int64("lesson_id", req.LessonID),
		zap.String("new_date", day.Format("02.01.2006")),
		zap.String("new_time", newTime),
	)

	s.notifyInstructor(ctx, req, fmt.Sprintf(
		"✅ Учень погодився на перенесення\n\n"+
			"Було: %s, %s\n"+
			"Стало: %s, %s\n\n"+
			"Тепер можна повторити блокування старого часу.",
		req.OldDate.Format("02.01.2006"), req.OldTime,
		day.Format("02.01.2006"), newTime,
	))

	return req, nil
}

// PendingForStudent открытый запрос ученика, если есть
func (s *RescheduleService) PendingForStudent(ctx context.Context, studentTelegramID int64) (*model.RescheduleRequest, error) {
	return s.requests.GetPendingByStudent(ctx, studentTelegramID)
}

func (s *RescheduleService) notifyInstructor(ctx context.Context, req *model.RescheduleRequest, text string) {
	instructor, err := s.instructors.GetByID(ctx, req.InstructorID)
	if err != nil || instructor == nil || instructor.TelegramID == 0 {
		return
	}
	if err := s.notifier.SendText(ctx, instructor.TelegramID, text); err != nil {
		s.logger.Error("Failed to notify instructor about reschedule",
			zap.String("request_uid", req.UID.String()), zap.Error(err))
	}
}
