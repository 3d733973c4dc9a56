package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/service"
	"go.uber.org/zap"
)

func newUserService(students *fakeStudentStore, instructors *fakeInstructorStore) *service.UserService {
	return service.NewUserService(students, instructors, 777, zap.NewNop())
}

func TestRegisterStudent_TariffFixedOnReRegistration(t *testing.T) {
	students := newFakeStudentStore()
	svc := newUserService(students, newFakeInstructorStore())

	st, err := svc.RegisterStudent(context.Background(), 100, "Тарас", "+380501112233", service.TariffBasic, "hl_main")
	require.NoError(t, err)
	require.Equal(t, service.TariffBasic, st.Tariff)

	// Повторная анкета меняет имя и телефон, но не тариф
	st, err = svc.RegisterStudent(context.Background(), 100, "Тарас Петренко", "+380509998877", service.TariffExtended, "hl_main")
	require.NoError(t, err)
	require.Equal(t, service.TariffBasic, st.Tariff)
	require.Equal(t, "Тарас Петренко", st.Name)

	stored, err := svc.GetStudent(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, service.TariffBasic, stored.Tariff)
	require.Equal(t, "+380509998877", stored.Phone)
}

func TestRegisterStudent_Validation(t *testing.T) {
	svc := newUserService(newFakeStudentStore(), newFakeInstructorStore())

	_, err := svc.RegisterStudent(context.Background(), 100, "  ", "+380501112233", service.TariffBasic, "")
	require.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.RegisterStudent(context.Background(), 100, "Тарас", "", service.TariffBasic, "")
	require.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.RegisterStudent(context.Background(), 100, "Тарас", "+380501112233", 123, "")
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestIsAdmin(t *testing.T) {
	svc := newUserService(newFakeStudentStore(), newFakeInstructorStore())
	require.True(t, svc.IsAdmin(777))
	require.False(t, svc.IsAdmin(100))

	none := service.NewUserService(newFakeStudentStore(), newFakeInstructorStore(), 0, zap.NewNop())
	require.False(t, none.IsAdmin(0))
}

func TestEnsureInstructors(t *testing.T) {
	instructors := newFakeInstructorStore()
	svc := newUserService(newFakeStudentStore(), instructors)

	require.NoError(t, svc.EnsureInstructors(context.Background()))
	seeded, err := svc.AllInstructors(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, seeded)

	// Сидовые инструкторы ещё не привязаны к Telegram: несколько строк
	// с telegram_id = 0 не должны конфликтовать между собой
	for _, ins := range seeded {
		require.Zero(t, ins.TelegramID)
	}

	// Повторный запуск не создаёт дубликатов
	require.NoError(t, svc.EnsureInstructors(context.Background()))
	again, err := svc.AllInstructors(context.Background())
	require.NoError(t, err)
	require.Len(t, again, len(seeded))

	byTransmission, err := svc.InstructorsByTransmission(context.Background(), model.TransmissionManual)
	require.NoError(t, err)
	for _, ins := range byTransmission {
		require.Equal(t, model.TransmissionManual, ins.Transmission)
	}
	require.NotEmpty(t, byTransmission)
}

func TestInstructorTelegramIDUnique(t *testing.T) {
	instructors := newFakeInstructorStore()
	ctx := context.Background()

	require.NoError(t, instructors.Create(ctx, &model.Instructor{Name: "Олександр", TelegramID: 9001, Transmission: model.TransmissionAutomatic, IsActive: true}))
	require.NoError(t, instructors.Create(ctx, &model.Instructor{Name: "Віталій", Transmission: model.TransmissionManual, IsActive: true}))
	require.NoError(t, instructors.Create(ctx, &model.Instructor{Name: "Ірина", Transmission: model.TransmissionAutomatic, IsActive: true}))

	// Привязанный telegram_id уникален
	err := instructors.Create(ctx, &model.Instructor{Name: "Петро", TelegramID: 9001, Transmission: model.TransmissionManual, IsActive: true})
	require.Error(t, err)
}
