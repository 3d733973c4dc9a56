package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/service"
	"go.uber.org/zap"
)

type rescheduleFixture struct {
	lessons    *fakeLessonStore
	requests   *fakeRescheduleStore
	notifier   *fakeNotifier
	svc        *service.RescheduleService
	instructor *model.Instructor
	lesson     *model.Lesson
}

func newRescheduleFixture(t *testing.T) *rescheduleFixture {
	t.Helper()

	lessons := newFakeLessonStore()
	blocks := newFakeBlockStore()
	instructors := newFakeInstructorStore()
	requests := newFakeRescheduleStore(lessons)
	notifier := &fakeNotifier{}

	instructor := &model.Instructor{
		TelegramID: 9001, Name: "Олександр",
		Transmission: model.TransmissionAutomatic, IsActive: true,
	}
	require.NoError(t, instructors.Create(context.Background(), instructor))

	lesson := &model.Lesson{
		InstructorID: instructor.ID, StudentTelegramID: 100,
		StudentName: "Тарас", StudentPhone: "+380501112233",
		Date: day(2026, time.September, 10), Time: "14:00",
		Duration: model.Duration1h, Status: model.LessonStatusActive,
		InstructorName: instructor.Name,
	}
	require.NoError(t, lessons.Create(context.Background(), lesson))

	availability := service.NewAvailabilityService(lessons, blocks, 7, 22, time.UTC)
	svc := service.NewRescheduleService(requests, lessons, instructors, availability, notifier, zap.NewNop())

	return &rescheduleFixture{
		lessons:    lessons,
		requests:   requests,
		notifier:   notifier,
		svc:        svc,
		instructor: instructor,
		lesson:     lesson,
	}
}

func TestPropose_SnapshotsOldScheduleAndAsksStudent(t *testing.T) {
	f := newRescheduleFixture(t)

	req, err := f.svc.Propose(context.Background(), f.lesson, "зміна графіку")
	require.NoError(t, err)
	require.Equal(t, model.RequestStatusPending, req.Status)
	require.NotEqual(t, uuid.Nil, req.UID)
	require.True(t, req.OldDate.Equal(f.lesson.Date))
	require.Equal(t, "14:00", req.OldTime)
	require.Equal(t, model.Duration1h, req.OldDuration)
	require.Nil(t, req.NewDate)

	// Ученику ушёл вопрос с кнопками да/нет
	require.Len(t, f.notifier.sent, 1)
	require.Equal(t, f.lesson.StudentTelegramID, f.notifier.sent[0].ChatID)
	require.Contains(t, f.notifier.sent[0].Text, "зміна графіку")
	require.Equal(t, [][]string{
		{service.ButtonRescheduleAccept},
		{service.ButtonRescheduleReject},
	}, f.notifier.sent[0].Keyboard)
}

func TestPropose_SecondPendingRejected(t *testing.T) {
	f := newRescheduleFixture(t)

	_, err := f.svc.Propose(context.Background(), f.lesson, "")
	require.NoError(t, err)

	second := &model.Lesson{
		InstructorID: f.instructor.ID, StudentTelegramID: 100,
		Date: day(2026, time.September, 11), Time: "10:00",
		Duration: model.Duration1h, Status: model.LessonStatusActive,
		InstructorName: f.instructor.Name,
	}
	require.NoError(t, f.lessons.Create(context.Background(), second))

	_, err = f.svc.Propose(context.Background(), second, "")
	require.ErrorIs(t, err, service.ErrReschedulePending)
}

func TestPropose_InactiveLessonRejected(t *testing.T) {
	f := newRescheduleFixture(t)

	f.lesson.Status = model.LessonStatusCompleted
	_, err := f.svc.Propose(context.Background(), f.lesson, "")
	require.ErrorIs(t, err, service.ErrLessonNotActive)
}

func TestReject_TerminalAndLessonUntouched(t *testing.T) {
	f := newRescheduleFixture(t)
	now := at(day(2026, time.September, 8), "12:00")

	req, err := f.svc.Propose(context.Background(), f.lesson, "")
	require.NoError(t, err)
	f.notifier.sent = nil

	rejected, err := f.svc.Reject(context.Background(), req.UID, now)
	require.NoError(t, err)
	require.Equal(t, model.RequestStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RespondedAt)

	// Занятие осталось на месте
	stored, err := f.lessons.GetByID(context.Background(), f.lesson.ID)
	require.NoError(t, err)
	require.Equal(t, "14:00", stored.Time)
	require.True(t, stored.Date.Equal(f.lesson.Date))

	// Инструктор узнал об отказе
	require.Len(t, f.notifier.textsFor(f.instructor.TelegramID), 1)

	// Терминальное состояние: повторные ответы невозможны
	_, err = f.svc.Reject(context.Background(), req.UID, now)
	require.ErrorIs(t, err, service.ErrRequestNotPending)
	_, err = f.svc.Accept(context.Background(), req.UID, day(2026, time.September, 12), "10:00", now)
	require.ErrorIs(t, err, service.ErrRequestNotPending)
}

func TestAccept_MovesLesson(t *testing.T) {
	f := newRescheduleFixture(t)
	now := at(day(2026, time.September, 8), "12:00")

	req, err := f.svc.Propose(context.Background(), f.lesson, "")
	require.NoError(t, err)
	f.notifier.sent = nil

	newDate := day(2026, time.September, 12)
	accepted, err := f.svc.Accept(context.Background(), req.UID, newDate, "10:00", now)
	require.NoError(t, err)
	require.Equal(t, model.RequestStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.NewDate)
	require.True(t, accepted.NewDate.Equal(newDate))
	require.Equal(t, "10:00", *accepted.NewTime)

	// Занятие переписано на новый слот
	stored, err := f.lessons.GetByID(context.Background(), f.lesson.ID)
	require.NoError(t, err)
	require.True(t, stored.Date.Equal(newDate))
	require.Equal(t, "10:00", stored.Time)

	require.Len(t, f.notifier.textsFor(f.instructor.TelegramID), 1)

	_, err = f.svc.Accept(context.Background(), req.UID, newDate, "11:00", now)
	require.ErrorIs(t, err, service.ErrRequestNotPending)
}

func TestAccept_OccupiedSlotRejected(t *testing.T) {
	f := newRescheduleFixture(t)
	now := at(day(2026, time.September, 8), "12:00")

	newDate := day(2026, time.September, 12)
	require.NoError(t, f.lessons.Create(context.Background(), &model.Lesson{
		InstructorID: f.instructor.ID, StudentTelegramID: 200,
		Date: newDate, Time: "10:00", Duration: model.Duration1h,
		Status: model.LessonStatusActive,
	}))

	req, err := f.svc.Propose(context.Background(), f.lesson, "")
	require.NoError(t, err)

	_, err = f.svc.Accept(context.Background(), req.UID, newDate, "10:00", now)
	require.ErrorIs(t, err, service.ErrSlotUnavailable)

	// Запрос остаётся открытым, можно выбрать другой слот
	pending, err := f.svc.PendingForStudent(context.Background(), f.lesson.StudentTelegramID)
	require.NoError(t, err)
	require.NotNil(t, pending)

	_, err = f.svc.Accept(context.Background(), req.UID, newDate, "11:00", now)
	require.NoError(t, err)
}

func TestRespond_UnknownRequest(t *testing.T) {
	f := newRescheduleFixture(t)
	now := at(day(2026, time.September, 8), "12:00")

	_, err := f.svc.Reject(context.Background(), uuid.New(), now)
	require.ErrorIs(t, err, service.ErrRequestNotFound)

	_, err = f.svc.Accept(context.Background(), uuid.New(), day(2026, time.September, 12), "10:00", now)
	require.ErrorIs(t, err, service.ErrRequestNotFound)
}
