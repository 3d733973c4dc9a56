package controller

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/yshabas/avtoshkola_bot/internal/controller/handlers"
	"github.com/yshabas/avtoshkola_bot/internal/controller/state"
	"github.com/yshabas/avtoshkola_bot/internal/service"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	bookingService *service.BookingService,
	availability *service.AvailabilityService,
	blockService *service.BlockService,
	rescheduleService *service.RescheduleService,
	sweeperService *service.SweeperService,
	loc *time.Location,
	logger *zap.Logger,
) *BotController {
	stateManager := state.NewManager()

	msgHandlers := handlers.NewHandlers(
		userService,
		bookingService,
		availability,
		blockService,
		rescheduleService,
		sweeperService,
		stateManager,
		loc,
		logger,
	)

	return &BotController{
		bot:      botInstance,
		handlers: msgHandlers,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики сообщений
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/admin", bot.MatchTypeExact, c.handlers.HandleAdmin)

	// Все остальные сообщения — кнопки меню и шаги диалогов
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Почати роботу з ботом"},
		{Command: "help", Description: "❓ Як це працює"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает long polling бота
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
