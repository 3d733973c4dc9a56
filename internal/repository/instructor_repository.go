package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yshabas/avtoshkola_bot/internal/model"
)

type InstructorRepository struct {
	pool *pgxpool.Pool
}

func NewInstructorRepository(pool *pgxpool.Pool) *InstructorRepository {
	return &InstructorRepository{pool: pool}
}

const instructorColumns = `id, telegram_id, name, phone, transmission_type, price_per_hour, is_active, created_at`

func scanInstructor(row pgx.Row) (*model.Instructor, error) {
	var ins model.Instructor
	err := row.Scan(
		&ins.ID,
		&ins.TelegramID,
		&ins.Name,
		&ins.Phone,
		&ins.Transmission,
		&ins.PricePerHour,
		&ins.IsActive,
		&ins.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ins, nil
}

// Create добавляет инструктора (административный сидинг)
func (r *InstructorRepository) Create(ctx context.Context, ins *model.Instructor) error {
	query := `
		INSERT INTO instructors (telegram_id, name, phone, transmission_type, price_per_hour, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		ins.TelegramID,
		ins.Name,
		ins.Phone,
		ins.Transmission,
		ins.PricePerHour,
		ins.IsActive,
	).Scan(&ins.ID, &ins.CreatedAt)

	if err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}

	return nil
}

// GetByTelegramID получает инструктора по Telegram ID
func (r *InstructorRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Instructor, error) {
	query := `SELECT ` + instructorColumns + ` FROM instructors WHERE telegram_id = $1`

	ins, err := scanInstructor(r.pool.QueryRow(ctx, query, telegramID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get instructor by telegram id: %w", err)
	}

	return ins, nil
}

// GetByID получает инструктора по внутреннему ID
func (r *InstructorRepository) GetByID(ctx context.Context, id int64) (*model.Instructor, error) {
	query := `SELECT ` + instructorColumns + ` FROM instructors WHERE id = $1`

	ins, err := scanInstructor(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get instructor by id: %w", err)
	}

	return ins, nil
}

// GetByName получает инструктора по имени
func (r *InstructorRepository) GetByName(ctx context.Context, name string) (*model.Instructor, error) {
	query := `SELECT ` + instructorColumns + ` FROM instructors WHERE name = $1`

	ins, err := scanInstructor(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get instructor by name: %w", err)
	}

	return ins, nil
}

// GetActiveByTransmission получает активных инструкторов по типу коробки
func (r *InstructorRepository) GetActiveByTransmission(ctx context.Context, transmission model.Transmission) ([]*model.Instructor, error) {
	query := `
		SELECT ` + instructorColumns + `
		FROM instructors
		WHERE transmission_type = $1 AND is_active = TRUE
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, transmission)
	if err != nil {
		return nil, fmt.Errorf("get instructors by transmission: %w", err)
	}
	defer rows.Close()

	var instructors []*model.Instructor
	for rows.Next() {
		ins, err := scanInstructor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instructor: %w", err)
		}
		instructors = append(instructors, ins)
	}

	return instructors, nil
}

// GetAllActive получает всех активных инструкторов
func (r *InstructorRepository) GetAllActive(ctx context.Context) ([]*model.Instructor, error) {
	query := `
		SELECT ` + instructorColumns + `
		FROM instructors
		WHERE is_active = TRUE
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all instructors: %w", err)
	}
	defer rows.Close()

	var instructors []*model.Instructor
	for rows.Next() {
		ins, err := scanInstructor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instructor: %w", err)
		}
		instructors = append(instructors, ins)
	}

	return instructors, nil
}

// SetActive включает или выключает инструктора
func (r *InstructorRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.pool.Exec(ctx, `UPDATE instructors SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set instructor active: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("instructor not found")
	}

	return nil
}
