package app

import (
	"context"
	"time"

	"github.com/yshabas/avtoshkola_bot/internal/service"
	"go.uber.org/zap"
)

// Периоды фоновых задач. Период напоминаний меньше часового окна
// отправки, поэтому занятие не проскочит между тиками.
const (
	completeInterval = time.Minute
	reminderInterval = 10 * time.Minute
)

// Sweeper запускает фоновые задачи жизненного цикла занятий:
// завершение прошедших и рассылку напоминаний
type Sweeper struct {
	sweeperService *service.SweeperService
	loc            *time.Location
	logger         *zap.Logger
	stopChan       chan struct{}
}

func NewSweeper(sweeperService *service.SweeperService, loc *time.Location, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		sweeperService: sweeperService,
		loc:            loc,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting lesson sweeper")

	go s.runCompleteTask(ctx)
	go s.runReminderTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping lesson sweeper")
	close(s.stopChan)
}

func (s *Sweeper) runCompleteTask(ctx context.Context) {
	s.completeElapsed(ctx)

	ticker := time.NewTicker(completeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.completeElapsed(ctx)
		case <-s.stopChan:
			s.logger.Info("Lesson completion task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Lesson completion task cancelled")
			return
		}
	}
}

func (s *Sweeper) runReminderTask(ctx context.Context) {
	s.sendReminders(ctx)

	ticker := time.NewTicker(reminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sendReminders(ctx)
		case <-s.stopChan:
			s.logger.Info("Reminder task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Reminder task cancelled")
			return
		}
	}
}

func (s *Sweeper) completeElapsed(ctx context.Context) {
	n, err := s.sweeperService.CompleteElapsed(ctx, time.Now().In(s.loc))
	if err != nil {
		s.logger.Error("Failed to complete elapsed lessons", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Completed elapsed lessons", zap.Int("count", n))
	}
}

func (s *Sweeper) sendReminders(ctx context.Context) {
	if err := s.sweeperService.SendReminders(ctx, time.Now().In(s.loc)); err != nil {
		s.logger.Error("Failed to send reminders", zap.Error(err))
	}
}
