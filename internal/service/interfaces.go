package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/repository"
)

// LessonStore доступ к занятиям
type LessonStore interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	GetByID(ctx context.Context, id int64) (*model.Lesson, error)
	GetActiveByInstructorDate(ctx context.Context, instructorID int64, date time.Time) ([]*model.Lesson, error)
	GetActiveByStudentDate(ctx context.Context, studentTelegramID int64, date time.Time) ([]*model.Lesson, error)
	GetActiveByStudentBetween(ctx context.Context, studentTelegramID int64, from, to time.Time) ([]*model.Lesson, error)
	GetActiveByStudent(ctx context.Context, studentTelegramID int64) ([]*model.Lesson, error)
	GetActive(ctx context.Context) ([]*model.Lesson, error)
	GetActiveWithoutReminder(ctx context.Context, kind repository.ReminderKind) ([]*model.Lesson, error)
	GetCompletedUnratedByInstructor(ctx context.Context, instructorID int64) ([]*model.Lesson, error)
	GetCompletedUnratedByStudent(ctx context.Context, studentTelegramID int64) (*model.Lesson, error)
	UpdateFields(ctx context.Context, id int64, upd repository.LessonUpdate) error
	ClaimReminder(ctx context.Context, id int64, kind repository.ReminderKind) (bool, error)
}

// BlockStore доступ к блокировкам времени
type BlockStore interface {
	Create(ctx context.Context, block *model.ScheduleBlock) error
	Delete(ctx context.Context, id int64) error
	GetByInstructorDate(ctx context.Context, instructorID int64, date time.Time) ([]*model.ScheduleBlock, error)
	GetByInstructor(ctx context.Context, instructorID int64) ([]*model.ScheduleBlock, error)
}

// RescheduleStore доступ к запросам на перенос
type RescheduleStore interface {
	Create(ctx context.Context, req *model.RescheduleRequest) error
	GetByUID(ctx context.Context, uid uuid.UUID) (*model.RescheduleRequest, error)
	GetPendingByStudent(ctx context.Context, studentTelegramID int64) (*model.RescheduleRequest, error)
	MarkRejected(ctx context.Context, id int64, respondedAt time.Time) error
	MarkAccepted(ctx context.Context, id, lessonID int64, newDate time.Time, newTime string, respondedAt time.Time) error
}

// InstructorStore доступ к инструкторам
type InstructorStore interface {
	Create(ctx context.Context, ins *model.Instructor) error
	GetByID(ctx context.Context, id int64) (*model.Instructor, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Instructor, error)
	GetByName(ctx context.Context, name string) (*model.Instructor, error)
	GetActiveByTransmission(ctx context.Context, transmission model.Transmission) ([]*model.Instructor, error)
	GetAllActive(ctx context.Context) ([]*model.Instructor, error)
}

// StudentStore доступ к ученикам
type StudentStore interface {
	Upsert(ctx context.Context, st *model.Student) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Student, error)
}

// Notifier исходящие уведомления. Отправка best-effort: ошибка
// логируется, но не откатывает уже зафиксированную операцию.
type Notifier interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendChoice(ctx context.Context, chatID int64, text string, keyboard [][]string) error
}
