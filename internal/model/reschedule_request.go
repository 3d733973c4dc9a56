package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// RescheduleRequest запрос инструктора на перенос занятия. Создаётся когда
// блокировка времени упирается в активное занятие. Новые дата и время
// заполняются только при согласии ученика.
type RescheduleRequest struct {
	ID                int64         `json:"id"`
	UID               uuid.UUID     `json:"uid"` // публичный идентификатор для callback-данных
	LessonID          int64         `json:"lesson_id"`
	InstructorID      int64         `json:"instructor_id"`
	StudentTelegramID int64         `json:"student_telegram_id"`
	OldDate           time.Time     `json:"old_date"`
	OldTime           string        `json:"old_time"`
	OldDuration       Duration      `json:"old_duration"`
	NewDate           *time.Time    `json:"new_date,omitempty"`
	NewTime           *string       `json:"new_time,omitempty"`
	Status            RequestStatus `json:"status"`
	Reason            string        `json:"reason"`
	CreatedAt         time.Time     `json:"created_at"`
	RespondedAt       *time.Time    `json:"responded_at,omitempty"`

	// Дополнительные поля для удобства (не из БД)
	InstructorName string `json:"instructor_name,omitempty"`
}
