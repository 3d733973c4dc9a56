package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yshabas/avtoshkola_bot/internal/model"
	"go.uber.org/zap"
)

// Доступные тарифы, грн/час. Тариф фиксируется при регистрации
// и не меняется при повторном прохождении анкеты.
const (
	TariffBasic    = 490
	TariffExtended = 550
)

// Tariffs возвращает допустимые тарифы в порядке показа в меню
func Tariffs() []int {
	return []int{TariffBasic, TariffExtended}
}

// UserService регистрация учеников и справочник инструкторов
type UserService struct {
	students    StudentStore
	instructors InstructorStore
	adminID     int64
	logger      *zap.Logger
}

func NewUserService(students StudentStore, instructors InstructorStore, adminID int64, logger *zap.Logger) *UserService {
	return &UserService{
		students:    students,
		instructors: instructors,
		adminID:     adminID,
		logger:      logger,
	}
}

// RegisterStudent сохраняет анкету ученика. Повторная регистрация
// обновляет имя и телефон, но тариф остаётся прежним.
func (s *UserService) RegisterStudent(ctx context.Context, telegramID int64, name, phone string, tariff int, via string) (*model.Student, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return nil, ErrInvalidInput
	}
	if tariff != TariffBasic && tariff != TariffExtended {
		return nil, ErrInvalidInput
	}

	st := &model.Student{
		TelegramID:    telegramID,
		Name:          name,
		Phone:         phone,
		Tariff:        tariff,
		RegisteredVia: via,
	}
	if err := s.students.Upsert(ctx, st); err != nil {
		return nil, fmt.Errorf("upsert student: %w", err)
	}

	s.logger.Info("Student registered",
		zap.Int64("telegram_id", telegramID),
		zap.Int("tariff", st.Tariff),
	)
	return st, nil
}

// GetStudent ученик по telegram-идентификатору, nil если не регистрировался
func (s *UserService) GetStudent(ctx context.Context, telegramID int64) (*model.Student, error) {
	return s.students.GetByTelegramID(ctx, telegramID)
}

// GetInstructorByTelegramID определяет, пишет ли нам инструктор
func (s *UserService) GetInstructorByTelegramID(ctx context.Context, telegramID int64) (*model.Instructor, error) {
	return s.instructors.GetByTelegramID(ctx, telegramID)
}

// GetInstructorByName инструктор по имени из меню выбора
func (s *UserService) GetInstructorByName(ctx context.Context, name string) (*model.Instructor, error) {
	return s.instructors.GetByName(ctx, name)
}

// InstructorsByTransmission активные инструкторы с нужной коробкой передач
func (s *UserService) InstructorsByTransmission(ctx context.Context, t model.Transmission) ([]*model.Instructor, error) {
	return s.instructors.GetActiveByTransmission(ctx, t)
}

// AllInstructors все активные инструкторы
func (s *UserService) AllInstructors(ctx context.Context) ([]*model.Instructor, error) {
	return s.instructors.GetAllActive(ctx)
}

// IsAdmin проверка на администратора школы
func (s *UserService) IsAdmin(telegramID int64) bool {
	return s.adminID != 0 && telegramID == s.adminID
}

// EnsureInstructors создаёт стартовый список инструкторов, если
// таблица пуста. Телефоны и telegram_id затем правятся руками в БД.
func (s *UserService) EnsureInstructors(ctx context.Context) error {
	existing, err := s.instructors.GetAllActive(ctx)
	if err != nil {
		return fmt.Errorf("list instructors: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	seed := []*model.Instructor{
		{Name: "Олександр", Phone: "+380000000001", Transmission: model.TransmissionAutomatic, PricePerHour: 550, IsActive: true},
		{Name: "Віталій", Phone: "+380000000002", Transmission: model.TransmissionManual, PricePerHour: 490, IsActive: true},
		{Name: "Ірина", Phone: "+380000000003", Transmission: model.TransmissionAutomatic, PricePerHour: 550, IsActive: true},
	}
	for _, ins := range seed {
		if err := s.instructors.Create(ctx, ins); err != nil {
			return fmt.Errorf("seed instructor %s: %w", ins.Name, err)
		}
	}

	s.logger.Info("Seeded instructors", zap.Int("count", len(seed)))
	return nil
}
