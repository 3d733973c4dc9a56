package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yshabas/avtoshkola_bot/internal/app"
	"github.com/yshabas/avtoshkola_bot/internal/config"
	"github.com/yshabas/avtoshkola_bot/internal/controller"
	"github.com/yshabas/avtoshkola_bot/internal/notify"
	"github.com/yshabas/avtoshkola_bot/internal/repository"
	"github.com/yshabas/avtoshkola_bot/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting avtoshkola bot",
		"environment", cfg.Environment,
		"timezone", cfg.Timezone)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	log.Println("✅ Connected to database")

	migrator, err := app.NewMigrator(pool, "migrations")
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Репозитории
	instructorRepo := repository.NewInstructorRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)
	blockRepo := repository.NewBlockRepository(pool)
	rescheduleRepo := repository.NewRescheduleRepository(pool)

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	notifier := notify.NewTelegramNotifier(b)

	// Сервисы
	availability := service.NewAvailabilityService(lessonRepo, blockRepo, cfg.WorkHoursStart, cfg.WorkHoursEnd, loc)
	userService := service.NewUserService(studentRepo, instructorRepo, cfg.AdminID, logger)
	bookingService := service.NewBookingService(lessonRepo, instructorRepo, availability, notifier, logger)
	blockService := service.NewBlockService(lessonRepo, blockRepo, logger)
	rescheduleService := service.NewRescheduleService(rescheduleRepo, lessonRepo, instructorRepo, availability, notifier, logger)
	sweeperService := service.NewSweeperService(lessonRepo, notifier, loc, logger)

	if err := userService.EnsureInstructors(ctx); err != nil {
		logger.Fatal("Failed to seed instructors", zap.Error(err))
	}

	botController := controller.NewBotController(
		b,
		userService,
		bookingService,
		availability,
		blockService,
		rescheduleService,
		sweeperService,
		loc,
		logger,
	)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	sweeper := app.NewSweeper(sweeperService, loc, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	log.Println("🚀 Bot is running")
	if err := botController.Start(ctx); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Bot shut down gracefully")
}
