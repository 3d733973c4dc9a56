package service

import (
	"errors"
	"fmt"

	"github.com/yshabas/avtoshkola_bot/internal/model"
)

var (
	ErrInstructorNotFound = errors.New("instructor not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrLessonNotActive    = errors.New("lesson is not active")
	ErrSlotUnavailable    = errors.New("slot is not available")
	ErrInvalidInput       = errors.New("invalid input")
	ErrReschedulePending  = errors.New("student already has a pending reschedule request")
	ErrRequestNotFound    = errors.New("reschedule request not found")
	ErrRequestNotPending  = errors.New("reschedule request is not pending")
)

// DoubleBookedError ученик уже занят в это время у другого (или того же)
// инструктора
type DoubleBookedError struct {
	InstructorName string
	Time           string
	Duration       model.Duration
}

func (e *DoubleBookedError) Error() string {
	return fmt.Sprintf("student already booked at %s (%s) with %s", e.Time, e.Duration, e.InstructorName)
}

// DailyCapError превышен дневной лимит часов
type DailyCapError struct {
	Booked float64 // уже забронировано часов в этот день
}

func (e *DailyCapError) Error() string {
	return fmt.Sprintf("daily cap exceeded: %.1f of %.1f hours booked", e.Booked, DailyCapHours)
}

// Remaining сколько часов осталось доступно в этот день
func (e *DailyCapError) Remaining() float64 {
	return DailyCapHours - e.Booked
}

// WeeklyCapError превышен недельный лимит часов
type WeeklyCapError struct {
	Booked float64
}

func (e *WeeklyCapError) Error() string {
	return fmt.Sprintf("weekly cap exceeded: %.1f of %.1f hours booked", e.Booked, WeeklyCapHours)
}

// Remaining сколько часов осталось доступно на этой неделе
func (e *WeeklyCapError) Remaining() float64 {
	return WeeklyCapHours - e.Booked
}
