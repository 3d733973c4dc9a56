package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/timegrid"
	"go.uber.org/zap"
)

type BlockService struct {
	lessons LessonStore
	blocks  BlockStore
	logger  *zap.Logger
}

func NewBlockService(lessons LessonStore, blocks BlockStore, logger *zap.Logger) *BlockService {
	return &BlockService{
		lessons: lessons,
		blocks:  blocks,
		logger:  logger,
	}
}

// RequestBlock пытается заблокировать интервал [timeStart, timeEnd).
// Если интервал задевает активное занятие, блокировка не создаётся:
// возвращается первое по времени конфликтующее занятие, и дальше
// конфликт решается переносом. Конфликты разбираются по одному.
func (s *BlockService) RequestBlock(ctx context.Context, instructorID int64, date time.Time, timeStart, timeEnd, reason string) (*model.ScheduleBlock, *model.Lesson, error) {
	startMins, err := timegrid.MinutesOfDay(timeStart)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	endMins, err := timegrid.MinutesOfDay(timeEnd)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if startMins >= endMins {
		return nil, nil, fmt.Errorf("%w: empty interval %s-%s", ErrInvalidInput, timeStart, timeEnd)
	}

	day := timegrid.DateOnly(date)

	lessons, err := s.lessons.GetActiveByInstructorDate(ctx, instructorID, day)
	if err != nil {
		return nil, nil, fmt.Errorf("get lessons: %w", err)
	}

	// Занятия отсортированы по времени: первый конфликт — самый ранний
	for _, lesson := range lessons {
		lessonStart, err := timegrid.MinutesOfDay(lesson.Time)
		if err != nil {
			continue
		}
		if timegrid.Overlaps(startMins, endMins, lessonStart, lessonStart+lesson.Duration.Minutes()) {
			s.logger.Info("Block conflicts with active lesson",
				zap.Int64("instructor_id", instructorID),
				zap.Int64("lesson_id", lesson.ID),
				zap.String("interval", timeStart+"-"+timeEnd),
			)
			return nil, lesson, nil
		}
	}

	block := &model.ScheduleBlock{
		InstructorID: instructorID,
		Date:         day,
		TimeStart:    timeStart,
		TimeEnd:      timeEnd,
		BlockType:    model.BlockTypeManual,
		Reason:       reason,
	}

	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, nil, fmt.Errorf("create block: %w", err)
	}

	s.logger.Info("Time blocked",
		zap.Int64("block_id", block.ID),
		zap.Int64("instructor_id", instructorID),
		zap.String("date", day.Format("02.01.2006")),
		zap.String("interval", timeStart+"-"+timeEnd),
	)

	return block, nil, nil
}

// Unblock снимает блокировку
func (s *BlockService) Unblock(ctx context.Context, blockID int64) error {
	if err := s.blocks.Delete(ctx, blockID); err != nil {
		return fmt.Errorf("unblock: %w", err)
	}

	s.logger.Info("Block removed", zap.Int64("block_id", blockID))
	return nil
}

// ListBlocks все блокировки инструктора
func (s *BlockService) ListBlocks(ctx context.Context, instructorID int64) ([]*model.ScheduleBlock, error) {
	return s.blocks.GetByInstructor(ctx, instructorID)
}
