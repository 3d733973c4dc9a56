package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yshabas/avtoshkola_bot/internal/model"
)

type LessonRepository struct {
	pool *pgxpool.Pool
}

func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{pool: pool}
}

// ReminderKind колонка-флаг отправленного напоминания
type ReminderKind string

const (
	Reminder24h ReminderKind = "reminder_24h_sent"
	Reminder2h  ReminderKind = "reminder_2h_sent"
)

// LessonUpdate типизированное частичное обновление занятия.
// Заполненные поля попадают в SET, остальные не трогаются.
type LessonUpdate struct {
	Date               *time.Time
	Time               *string
	Status             *model.LessonStatus
	Rating             *int
	Feedback           *string
	InstructorRating   *int
	InstructorFeedback *string
	CancelledBy        *model.CancelledBy
	CancelledAt        *time.Time
	CompletedAt        *time.Time
}

const lessonColumns = `l.id, l.instructor_id, l.student_telegram_id, l.student_name, l.student_phone,
		l.student_tariff, l.date, l.time, l.duration, l.status, l.booking_comment,
		l.rating, l.feedback, l.instructor_rating, l.instructor_feedback,
		l.cancelled_by, l.cancelled_at, l.reminder_24h_sent, l.reminder_2h_sent,
		l.created_at, l.completed_at, i.name`

func scanLesson(row pgx.Row) (*model.Lesson, error) {
	var (
		lesson      model.Lesson
		cancelledBy *string
	)
	err := row.Scan(
		&lesson.ID,
		&lesson.InstructorID,
		&lesson.StudentTelegramID,
		&lesson.StudentName,
		&lesson.StudentPhone,
		&lesson.StudentTariff,
		&lesson.Date,
		&lesson.Time,
		&lesson.Duration,
		&lesson.Status,
		&lesson.Comment,
		&lesson.Rating,
		&lesson.Feedback,
		&lesson.InstructorRating,
		&lesson.InstructorFeedback,
		&cancelledBy,
		&lesson.CancelledAt,
		&lesson.Reminder24hSent,
		&lesson.Reminder2hSent,
		&lesson.CreatedAt,
		&lesson.CompletedAt,
		&lesson.InstructorName,
	)
	if err != nil {
		return nil, err
	}
	if cancelledBy != nil {
		by := model.CancelledBy(*cancelledBy)
		lesson.CancelledBy = &by
	}
	return &lesson, nil
}

func (r *LessonRepository) queryLessons(ctx context.Context, query string, args ...interface{}) ([]*model.Lesson, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []*model.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	return lessons, rows.Err()
}

// Create создаёт занятие. Частичный уникальный индекс по
// (instructor_id, date, time) для активных занятий отдаёт 23505,
// если слот успели занять между показом и подтверждением.
func (r *LessonRepository) Create(ctx context.Context, lesson *model.Lesson) error {
	query := `
		INSERT INTO lessons
		(instructor_id, student_telegram_id, student_name, student_phone, student_tariff,
		 date, time, duration, status, booking_comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		lesson.InstructorID,
		lesson.StudentTelegramID,
		lesson.StudentName,
		lesson.StudentPhone,
		lesson.StudentTariff,
		lesson.Date,
		lesson.Time,
		lesson.Duration,
		lesson.Status,
		lesson.Comment,
	).Scan(&lesson.ID, &lesson.CreatedAt)

	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}

	return nil
}

// GetByID получает занятие по ID
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons l
		JOIN instructors i ON i.id = l.instructor_id
		WHERE l.id = $1
	`

	lesson, err := scanLesson(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson by id: %w", err)
	}

	return lesson, nil
}

// GetActiveByInstructorDate получает активные занятия инструктора на дату,
// по возрастанию времени
func (r *LessonRepository) GetActiveByInstructorDate(ctx context.Context, instructorID int64, date time.Time) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons l
		JOIN instructors i ON i.id = l.instructor_id
		WHERE l.instructor_id = $1 AND l.date = $2 AND l.status = 'active'
		ORDER BY l.time
	`

	lessons, err := r.queryLessons(ctx, query, instructorID, date)
	if err != nil {
		return nil, fmt.Errorf("get active lessons by instructor date: %w", err)
	}
	return lessons, nil
}

// GetActiveByStudentDate получает активные занятия ученика на дату
// у всех инструкторов
func (r *LessonRepository) GetActiveByStudentDate(ctx context.Context, studentTelegramID int64, date time.Time) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons l
		JOIN instructors i ON i.id = l.instructor_id
		WHERE l.student_telegram_id = $1 AND l.date = $2 AND l.status = 'active'
		ORDER BY l.time
	`

	lessons, err := r.queryLessons(ctx, query, studentTelegramID, date)
	if err != nil {
		return nil, fmt.Errorf("get active lessons by student date: %w", err)
	}
	return lessons, nil
}

// GetActiveByStudentBetween получает активные занятия ученика в диапазоне дат
// (границы включительно) — для недельного лимита
func (r *LessonRepository) GetActiveByStudentBetween(ctx context.Context, studentTelegramID int64, from, to time.Time) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons l
		JOIN instructors i ON i.id = l.instructor_id
		WHERE l.student_telegram_id = $1 AND l.date BETWEEN $2 AND $3 AND l.status = 'active'
		ORDER BY l.date, l.time
	`

	lessons, err := r.queryLessons(ctx, query, studentTelegramID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get active lessons by student between: %w", err)
	}
	return lessons, nil
}

// GetActiveByStudent получает все активные занятия ученика
func (r *LessonRepository) GetActiveByStudent(ctx context.Context, studentTelegramID int64) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons l
		JOIN instructors i ON i.id = l.instructor_id
		WHERE l.student_telegram_id = $1 AND l.status = 'active'
		ORDER BY l.date, l.time
	`

	lessons, err := r.queryLessons(ctx, query, studentTelegramID)
	if err != nil {
		return nil, fmt.Errorf("get active lessons by student: %w", err)
	}
	return lessons, nil
}

// GetActive получает все активные занятия (для sweeper)
func (r *LessonRepository) GetActive(ctx context.Context) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons l
		JOIN instructors i ON i.id = l.instructor_id
		WHERE l.status = 'active'
		ORDER BY l.date, l.time
	`

	lessons, err := r.queryLessons(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active lessons: %w", err)
	}
	return lessons, nil
}

// GetActiveWithoutReminder получает активные занятия без отметки
// об отправленном напоминании
func (r *LessonRepository) GetActiveWithoutReminder(ctx context.Context, kind ReminderKind) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons l
		JOIN instructors i ON i.id = l.instructor_id
		WHERE l.status = 'active' AND l.` + string(kind) + ` = FALSE
	`

	lessons, err := r.queryLessons(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get lessons without reminder: %w", err)
	}
	return lessons, nil
}

// GetCompletedUnratedByInstructor получает завершённые занятия инструктора,
// которым он ещё не выставил оценку
func (r *LessonRepository) GetCompletedUnratedByInstructor(ctx context.Context, instructorID int64) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons l
		JOIN instructors i ON i.id = l.instructor_id
		WHERE l.instructor_id = $1 AND l.status = 'completed' AND l.instructor_rating IS NULL
		ORDER BY l.date DESC, l.time DESC
		LIMIT 10
	`

	lessons, err := r.queryLessons(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get completed unrated lessons: %w", err)
	}
	return lessons, nil
}

// GetCompletedUnratedByStudent получает последнее завершённое занятие
// ученика без его оценки
func (r *LessonRepository) GetCompletedUnratedByStudent(ctx context.Context, studentTelegramID int64) (*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons l
		JOIN instructors i ON i.id = l.instructor_id
		WHERE l.student_telegram_id = $1 AND l.status = 'completed' AND l.rating IS NULL
		ORDER BY l.date DESC, l.time DESC
		LIMIT 1
	`

	lesson, err := scanLesson(r.pool.QueryRow(ctx, query, studentTelegramID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get unrated lesson: %w", err)
	}
	return lesson, nil
}

// UpdateFields применяет частичное обновление занятия
func (r *LessonRepository) UpdateFields(ctx context.Context, id int64, upd LessonUpdate) error {
	builder := sq.Update("lessons").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	changed := false
	if upd.Date != nil {
		builder = builder.Set("date", *upd.Date)
		changed = true
	}
	if upd.Time != nil {
		builder = builder.Set("time", *upd.Time)
		changed = true
	}
	if upd.Status != nil {
		builder = builder.Set("status", *upd.Status)
		changed = true
	}
	if upd.Rating != nil {
		builder = builder.Set("rating", *upd.Rating)
		changed = true
	}
	if upd.Feedback != nil {
		builder = builder.Set("feedback", *upd.Feedback)
		changed = true
	}
	if upd.InstructorRating != nil {
		builder = builder.Set("instructor_rating", *upd.InstructorRating)
		changed = true
	}
	if upd.InstructorFeedback != nil {
		builder = builder.Set("instructor_feedback", *upd.InstructorFeedback)
		changed = true
	}
	if upd.CancelledBy != nil {
		builder = builder.Set("cancelled_by", *upd.CancelledBy)
		changed = true
	}
	if upd.CancelledAt != nil {
		builder = builder.Set("cancelled_at", *upd.CancelledAt)
		changed = true
	}
	if upd.CompletedAt != nil {
		builder = builder.Set("completed_at", *upd.CompletedAt)
		changed = true
	}

	if !changed {
		return fmt.Errorf("update lesson %d: no fields to update", id)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build lesson update: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("lesson not found")
	}

	return nil
}

// ClaimReminder атомарно помечает напоминание отправленным.
// Возвращает false, если флаг уже стоял: повторная отправка исключена.
func (r *LessonRepository) ClaimReminder(ctx context.Context, id int64, kind ReminderKind) (bool, error) {
	query := `UPDATE lessons SET ` + string(kind) + ` = TRUE WHERE id = $1 AND ` + string(kind) + ` = FALSE`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("claim reminder: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
