package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/service"
)

func newAvailability(lessons *fakeLessonStore, blocks *fakeBlockStore) *service.AvailabilityService {
	return service.NewAvailabilityService(lessons, blocks, 7, 22, time.UTC)
}

func TestAvailableSlots_FullDayWhenEmpty(t *testing.T) {
	svc := newAvailability(newFakeLessonStore(), newFakeBlockStore())

	date := day(2026, time.September, 10)
	now := at(day(2026, time.September, 1), "12:00")

	slots, err := svc.AvailableSlots(context.Background(), 1, date, now)
	require.NoError(t, err)
	require.Len(t, slots, 15) // 07:00 .. 21:00
	require.Equal(t, "07:00", slots[0])
	require.Equal(t, "21:00", slots[len(slots)-1])
}

func TestAvailableSlots_PastDateEmpty(t *testing.T) {
	svc := newAvailability(newFakeLessonStore(), newFakeBlockStore())

	now := at(day(2026, time.September, 10), "12:00")
	slots, err := svc.AvailableSlots(context.Background(), 1, day(2026, time.September, 9), now)
	require.NoError(t, err)
	require.Empty(t, slots)
}

func TestAvailableSlots_TodayLeadTime(t *testing.T) {
	svc := newAvailability(newFakeLessonStore(), newFakeBlockStore())
	date := day(2026, time.September, 10)

	// 10:15 — неполный час округляется вверх, первый слот 12:00
	slots, err := svc.AvailableSlots(context.Background(), 1, date, at(date, "10:15"))
	require.NoError(t, err)
	require.Equal(t, "12:00", slots[0])

	// 10:00 ровно — первый слот 11:00
	slots, err = svc.AvailableSlots(context.Background(), 1, date, at(date, "10:00"))
	require.NoError(t, err)
	require.Equal(t, "11:00", slots[0])

	// 21:10 — до закрытия ничего не осталось
	slots, err = svc.AvailableSlots(context.Background(), 1, date, at(date, "21:10"))
	require.NoError(t, err)
	require.Empty(t, slots)
}

func TestAvailableSlots_EarlyMorningClampedToOpen(t *testing.T) {
	svc := newAvailability(newFakeLessonStore(), newFakeBlockStore())
	date := day(2026, time.September, 10)

	slots, err := svc.AvailableSlots(context.Background(), 1, date, at(date, "04:30"))
	require.NoError(t, err)
	require.Equal(t, "07:00", slots[0])
}

func TestAvailableSlots_LessonOccupiesSlots(t *testing.T) {
	lessons := newFakeLessonStore()
	svc := newAvailability(lessons, newFakeBlockStore())

	date := day(2026, time.September, 10)
	require.NoError(t, lessons.Create(context.Background(), &model.Lesson{
		InstructorID: 1, StudentTelegramID: 100,
		Date: date, Time: "10:00", Duration: model.Duration15h,
		Status: model.LessonStatusActive,
	}))

	now := at(day(2026, time.September, 9), "12:00")
	slots, err := svc.AvailableSlots(context.Background(), 1, date, now)
	require.NoError(t, err)

	// Полтора часа с 10:00 закрывают и 10:00, и 11:00
	require.NotContains(t, slots, "10:00")
	require.NotContains(t, slots, "11:00")
	require.Contains(t, slots, "09:00")
	require.Contains(t, slots, "12:00")
}

func TestAvailableSlots_BlockHidesSlots(t *testing.T) {
	blocks := newFakeBlockStore()
	svc := newAvailability(newFakeLessonStore(), blocks)

	date := day(2026, time.September, 10)
	require.NoError(t, blocks.Create(context.Background(), &model.ScheduleBlock{
		InstructorID: 1, Date: date,
		TimeStart: "14:00", TimeEnd: "16:00", BlockType: model.BlockTypeManual,
	}))

	now := at(day(2026, time.September, 9), "12:00")
	slots, err := svc.AvailableSlots(context.Background(), 1, date, now)
	require.NoError(t, err)

	// Интервал полуоткрытый: 16:00 уже свободен
	require.NotContains(t, slots, "14:00")
	require.NotContains(t, slots, "15:00")
	require.Contains(t, slots, "16:00")
}

func TestSlotFits_TwoSlotLesson(t *testing.T) {
	lessons := newFakeLessonStore()
	svc := newAvailability(lessons, newFakeBlockStore())

	date := day(2026, time.September, 10)
	now := at(day(2026, time.September, 9), "12:00")

	require.NoError(t, lessons.Create(context.Background(), &model.Lesson{
		InstructorID: 1, StudentTelegramID: 100,
		Date: date, Time: "11:00", Duration: model.Duration1h,
		Status: model.LessonStatusActive,
	}))

	// 10:00 свободен, но 11:00 занят — двухслотовое занятие не лезет
	fits, err := svc.SlotFits(context.Background(), 1, date, "10:00", 2, now)
	require.NoError(t, err)
	require.False(t, fits)

	// Часовое в 10:00 помещается
	fits, err = svc.SlotFits(context.Background(), 1, date, "10:00", 1, now)
	require.NoError(t, err)
	require.True(t, fits)
}

func TestSlotFits_LastSlotIgnoresHoursPastClose(t *testing.T) {
	svc := newAvailability(newFakeLessonStore(), newFakeBlockStore())

	date := day(2026, time.September, 10)
	now := at(day(2026, time.September, 9), "12:00")

	// Второй час выходит за закрытие и не проверяется
	fits, err := svc.SlotFits(context.Background(), 1, date, "21:00", 2, now)
	require.NoError(t, err)
	require.True(t, fits)
}

func TestNextDates_SkipsFullDays(t *testing.T) {
	lessons := newFakeLessonStore()
	blocks := newFakeBlockStore()
	svc := newAvailability(lessons, blocks)

	today := day(2026, time.September, 10)
	now := at(today, "23:30") // сегодня слотов уже нет

	// Завтра полностью заблокировано
	require.NoError(t, blocks.Create(context.Background(), &model.ScheduleBlock{
		InstructorID: 1, Date: today.AddDate(0, 0, 1),
		TimeStart: "07:00", TimeEnd: "22:00", BlockType: model.BlockTypeManual,
	}))

	dates, err := svc.NextDates(context.Background(), 1, now, 3)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	require.True(t, dates[0].Date.Equal(today.AddDate(0, 0, 2)))
	require.Equal(t, 15, dates[0].FreeSlots)
}
