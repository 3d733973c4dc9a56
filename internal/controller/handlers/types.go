package handlers

import (
	"time"

	"github.com/yshabas/avtoshkola_bot/internal/controller/state"
	"github.com/yshabas/avtoshkola_bot/internal/service"
	"go.uber.org/zap"
)

// Окна выбора дат в меню
const (
	bookingWindowDays = 14 // ученик записывается в пределах двух недель
	blockWindowDays   = 30 // инструктор блокирует время на месяц вперёд
)

// Handlers содержит все зависимости для обработки сообщений
type Handlers struct {
	userService       *service.UserService
	bookingService    *service.BookingService
	availability      *service.AvailabilityService
	blockService      *service.BlockService
	rescheduleService *service.RescheduleService
	sweeperService    *service.SweeperService
	stateManager      *state.Manager
	loc               *time.Location
	logger            *zap.Logger
}

// NewHandlers создаёт новый обработчик сообщений
func NewHandlers(
	userService *service.UserService,
	bookingService *service.BookingService,
	availability *service.AvailabilityService,
	blockService *service.BlockService,
	rescheduleService *service.RescheduleService,
	sweeperService *service.SweeperService,
	stateManager *state.Manager,
	loc *time.Location,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:       userService,
		bookingService:    bookingService,
		availability:      availability,
		blockService:      blockService,
		rescheduleService: rescheduleService,
		sweeperService:    sweeperService,
		stateManager:      stateManager,
		loc:               loc,
		logger:            logger,
	}
}
