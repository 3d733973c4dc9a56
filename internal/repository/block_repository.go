package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yshabas/avtoshkola_bot/internal/model"
)

type BlockRepository struct {
	pool *pgxpool.Pool
}

func NewBlockRepository(pool *pgxpool.Pool) *BlockRepository {
	return &BlockRepository{pool: pool}
}

// Create создаёт блокировку времени
func (r *BlockRepository) Create(ctx context.Context, block *model.ScheduleBlock) error {
	query := `
		INSERT INTO schedule_blocks (instructor_id, date, time_start, time_end, block_type, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		block.InstructorID,
		block.Date,
		block.TimeStart,
		block.TimeEnd,
		block.BlockType,
		block.Reason,
	).Scan(&block.ID, &block.CreatedAt)

	if err != nil {
		return fmt.Errorf("create schedule block: %w", err)
	}

	return nil
}

// Delete удаляет блокировку
func (r *BlockRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM schedule_blocks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule block: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("schedule block not found")
	}

	return nil
}

// GetByInstructorDate получает блокировки инструктора на дату
func (r *BlockRepository) GetByInstructorDate(ctx context.Context, instructorID int64, date time.Time) ([]*model.ScheduleBlock, error) {
	query := `
		SELECT id, instructor_id, date, time_start, time_end, block_type, reason, created_at
		FROM schedule_blocks
		WHERE instructor_id = $1 AND date = $2
		ORDER BY time_start
	`

	return r.queryBlocks(ctx, query, instructorID, date)
}

// GetByInstructor получает все блокировки инструктора, свежие первыми
func (r *BlockRepository) GetByInstructor(ctx context.Context, instructorID int64) ([]*model.ScheduleBlock, error) {
	query := `
		SELECT id, instructor_id, date, time_start, time_end, block_type, reason, created_at
		FROM schedule_blocks
		WHERE instructor_id = $1
		ORDER BY date DESC, time_start
	`

	return r.queryBlocks(ctx, query, instructorID)
}

func (r *BlockRepository) queryBlocks(ctx context.Context, query string, args ...interface{}) ([]*model.ScheduleBlock, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get schedule blocks: %w", err)
	}
	defer rows.Close()

	var blocks []*model.ScheduleBlock
	for rows.Next() {
		var block model.ScheduleBlock
		err := rows.Scan(
			&block.ID,
			&block.InstructorID,
			&block.Date,
			&block.TimeStart,
			&block.TimeEnd,
			&block.BlockType,
			&block.Reason,
			&block.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan schedule block: %w", err)
		}
		blocks = append(blocks, &block)
	}

	return blocks, rows.Err()
}
