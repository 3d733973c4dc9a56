package model

import "time"

type LessonStatus string

const (
	LessonStatusActive    LessonStatus = "active"    // Забронировано, ещё не прошло
	LessonStatusCompleted LessonStatus = "completed" // Завершено по времени
	LessonStatusCancelled LessonStatus = "cancelled" // Отменено учеником или инструктором
)

// Duration длительность занятия. Хранится как текстовая метка,
// как её видит пользователь в меню выбора.
type Duration string

const (
	Duration1h  Duration = "1 година"
	Duration15h Duration = "1.5 години"
	Duration2h  Duration = "2 години"
)

// Minutes возвращает длительность в минутах для интервальной арифметики
func (d Duration) Minutes() int {
	switch d {
	case Duration15h:
		return 90
	case Duration2h:
		return 120
	default:
		return 60
	}
}

// Hours возвращает длительность в часах (для лимитов 2ч/день и 6ч/неделя)
func (d Duration) Hours() float64 {
	return float64(d.Minutes()) / 60
}

// SlotsOccupied сколько часовых слотов занимает занятие.
// 1.5 часа занимает 2 слота: сетка расписания часовая.
func (d Duration) SlotsOccupied() int {
	if d == Duration15h || d == Duration2h {
		return 2
	}
	return 1
}

// Valid проверяет что метка длительности из допустимого набора
func (d Duration) Valid() bool {
	switch d {
	case Duration1h, Duration15h, Duration2h:
		return true
	}
	return false
}

type CancelledBy string

const (
	CancelledByStudent    CancelledBy = "student"
	CancelledByInstructor CancelledBy = "instructor"
)

// Lesson занятие ученика с инструктором. Данные ученика снимаются
// в момент бронирования: ученик может записаться раньше, чем пройдёт
// полную регистрацию, поэтому ссылка идёт по telegram_id, а не по FK.
type Lesson struct {
	ID                 int64        `json:"id"`
	InstructorID       int64        `json:"instructor_id"`
	StudentTelegramID  int64        `json:"student_telegram_id"`
	StudentName        string       `json:"student_name"`
	StudentPhone       string       `json:"student_phone"`
	StudentTariff      int          `json:"student_tariff"`
	Date               time.Time    `json:"date"` // календарный день
	Time               string       `json:"time"` // "HH:MM"
	Duration           Duration     `json:"duration"`
	Status             LessonStatus `json:"status"`
	Comment            string       `json:"booking_comment"`
	Rating             *int         `json:"rating,omitempty"`             // оценка инструктора учеником
	Feedback           *string      `json:"feedback,omitempty"`           // отзыв ученика
	InstructorRating   *int         `json:"instructor_rating,omitempty"`  // оценка ученика инструктором
	InstructorFeedback *string      `json:"instructor_feedback,omitempty"`
	CancelledBy        *CancelledBy `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time   `json:"cancelled_at,omitempty"`
	Reminder24hSent    bool         `json:"reminder_24h_sent"`
	Reminder2hSent     bool         `json:"reminder_2h_sent"`
	CreatedAt          time.Time    `json:"created_at"`
	CompletedAt        *time.Time   `json:"completed_at,omitempty"`

	// Дополнительные поля для удобства (не из БД)
	InstructorName string `json:"instructor_name,omitempty"`
}
