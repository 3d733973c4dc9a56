package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/repository/base"
)

type RescheduleRepository struct {
	*base.Repository
}

func NewRescheduleRepository(pool *pgxpool.Pool) *RescheduleRepository {
	return &RescheduleRepository{Repository: base.NewRepository(pool)}
}

const rescheduleColumns = `r.id, r.uid, r.lesson_id, r.instructor_id, r.student_telegram_id,
		r.old_date, r.old_time, r.old_duration, r.new_date, r.new_time,
		r.status, r.reason, r.created_at, r.responded_at, i.name`

func scanRescheduleRequest(row pgx.Row) (*model.RescheduleRequest, error) {
	var req model.RescheduleRequest
	err := row.Scan(
		&req.ID,
		&req.UID,
		&req.LessonID,
		&req.InstructorID,
		&req.StudentTelegramID,
		&req.OldDate,
		&req.OldTime,
		&req.OldDuration,
		&req.NewDate,
		&req.NewTime,
		&req.Status,
		&req.Reason,
		&req.CreatedAt,
		&req.RespondedAt,
		&req.InstructorName,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Create создаёт запрос на перенос. Частичный уникальный индекс
// по (student_telegram_id) для pending-запросов гарантирует
// не больше одного открытого запроса на ученика.
func (r *RescheduleRepository) Create(ctx context.Context, req *model.RescheduleRequest) error {
	query := `
		INSERT INTO reschedule_requests
		(uid, lesson_id, instructor_id, student_telegram_id, old_date, old_time, old_duration, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.Pool().QueryRow(
		ctx, query,
		req.UID,
		req.LessonID,
		req.InstructorID,
		req.StudentTelegramID,
		req.OldDate,
		req.OldTime,
		req.OldDuration,
		req.Status,
		req.Reason,
	).Scan(&req.ID, &req.CreatedAt)

	if err != nil {
		return fmt.Errorf("create reschedule request: %w", err)
	}

	return nil
}

// GetByUID получает запрос по публичному идентификатору
func (r *RescheduleRepository) GetByUID(ctx context.Context, uid uuid.UUID) (*model.RescheduleRequest, error) {
	query := `
		SELECT ` + rescheduleColumns + `
		FROM reschedule_requests r
		JOIN instructors i ON i.id = r.instructor_id
		WHERE r.uid = $1
	`

	req, err := scanRescheduleRequest(r.Pool().QueryRow(ctx, query, uid))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get reschedule request by uid: %w", err)
	}

	return req, nil
}

// GetPendingByStudent получает открытый запрос ученика, если есть
func (r *RescheduleRepository) GetPendingByStudent(ctx context.Context, studentTelegramID int64) (*model.RescheduleRequest, error) {
	query := `
		SELECT ` + rescheduleColumns + `
		FROM reschedule_requests r
		JOIN instructors i ON i.id = r.instructor_id
		WHERE r.student_telegram_id = $1 AND r.status = 'pending'
	`

	req, err := scanRescheduleRequest(r.Pool().QueryRow(ctx, query, studentTelegramID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending reschedule request: %w", err)
	}

	return req, nil
}

// MarkRejected закрывает запрос отказом, занятие не трогается
func (r *RescheduleRepository) MarkRejected(ctx context.Context, id int64, respondedAt time.Time) error {
	query := `
		UPDATE reschedule_requests
		SET status = 'rejected', responded_at = $1
		WHERE id = $2 AND status = 'pending'
	`

	result, err := r.Pool().Exec(ctx, query, respondedAt, id)
	if err != nil {
		return fmt.Errorf("mark reschedule request rejected: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("reschedule request not pending")
	}

	return nil
}

// MarkAccepted закрывает запрос согласием и в той же транзакции
// переписывает дату и время занятия
func (r *RescheduleRepository) MarkAccepted(ctx context.Context, id, lessonID int64, newDate time.Time, newTime string, respondedAt time.Time) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE reschedule_requests
			SET status = 'accepted', new_date = $1, new_time = $2, responded_at = $3
			WHERE id = $4 AND status = 'pending'
		`, newDate, newTime, respondedAt, id)
		if err != nil {
			return fmt.Errorf("mark reschedule request accepted: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("reschedule request not pending")
		}

		result, err = tx.Exec(ctx, `
			UPDATE lessons
			SET date = $1, time = $2
			WHERE id = $3 AND status = 'active'
		`, newDate, newTime, lessonID)
		if err != nil {
			return fmt.Errorf("move lesson: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("lesson not active")
		}

		return nil
	})
}
