package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yshabas/avtoshkola_bot/internal/model"
)

type StudentRepository struct {
	pool *pgxpool.Pool
}

func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// Upsert создаёт ученика или обновляет имя и телефон существующего.
// Тариф фиксируется первой вставкой и при конфликте не трогается.
func (r *StudentRepository) Upsert(ctx context.Context, st *model.Student) error {
	query := `
		INSERT INTO students (telegram_id, name, phone, tariff, registered_via)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO UPDATE
		SET name = EXCLUDED.name,
		    phone = EXCLUDED.phone
		RETURNING id, tariff, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		st.TelegramID,
		st.Name,
		st.Phone,
		st.Tariff,
		st.RegisteredVia,
	).Scan(&st.ID, &st.Tariff, &st.CreatedAt)

	if err != nil {
		return fmt.Errorf("upsert student: %w", err)
	}

	return nil
}

// GetByTelegramID получает ученика по Telegram ID
func (r *StudentRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Student, error) {
	query := `
		SELECT id, telegram_id, name, phone, tariff, registered_via, created_at
		FROM students
		WHERE telegram_id = $1
	`

	var st model.Student
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&st.ID,
		&st.TelegramID,
		&st.Name,
		&st.Phone,
		&st.Tariff,
		&st.RegisteredVia,
		&st.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by telegram id: %w", err)
	}

	return &st, nil
}
