package timegrid_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yshabas/avtoshkola_bot/internal/timegrid"
)

func TestMinutesOfDay(t *testing.T) {
	mins, err := timegrid.MinutesOfDay("07:00")
	require.NoError(t, err)
	require.Equal(t, 420, mins)

	mins, err = timegrid.MinutesOfDay("14:30")
	require.NoError(t, err)
	require.Equal(t, 870, mins)

	_, err = timegrid.MinutesOfDay("25:00")
	require.Error(t, err)

	_, err = timegrid.MinutesOfDay("abc")
	require.Error(t, err)
}

func TestFormatMinutes(t *testing.T) {
	require.Equal(t, "07:00", timegrid.FormatMinutes(420))
	require.Equal(t, "14:30", timegrid.FormatMinutes(870))
	require.Equal(t, "00:00", timegrid.FormatMinutes(0))
}

func TestOverlaps(t *testing.T) {
	// [10:00,11:00) и [10:30,11:30) пересекаются
	require.True(t, timegrid.Overlaps(600, 660, 630, 690))
	// смежные интервалы не пересекаются
	require.False(t, timegrid.Overlaps(600, 660, 660, 720))
	require.False(t, timegrid.Overlaps(660, 720, 600, 660))
	// вложенный интервал
	require.True(t, timegrid.Overlaps(600, 720, 630, 660))
	// не соприкасаются
	require.False(t, timegrid.Overlaps(600, 660, 720, 780))
}

func TestHourSlots(t *testing.T) {
	slots := timegrid.HourSlots(7, 10)
	require.Equal(t, []string{"07:00", "08:00", "09:00"}, slots)

	require.Empty(t, timegrid.HourSlots(18, 18))
	require.Empty(t, timegrid.HourSlots(19, 18))
}

func TestAt(t *testing.T) {
	date := time.Date(2024, 12, 13, 0, 0, 0, 0, time.UTC)
	at, err := timegrid.At(date, "14:30", time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 12, 13, 14, 30, 0, 0, time.UTC), at)
}

func TestWeekBounds(t *testing.T) {
	// 2024-12-13 — пятница
	friday := time.Date(2024, 12, 13, 15, 42, 0, 0, time.UTC)
	start, end := timegrid.WeekBounds(friday)
	require.Equal(t, time.Date(2024, 12, 9, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), end)

	// понедельник остаётся понедельником
	start, end = timegrid.WeekBounds(time.Date(2024, 12, 9, 0, 0, 0, 0, time.UTC))
	require.Equal(t, time.Date(2024, 12, 9, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), end)

	// воскресенье относится к своей же неделе
	start, _ = timegrid.WeekBounds(time.Date(2024, 12, 15, 23, 0, 0, 0, time.UTC))
	require.Equal(t, time.Date(2024, 12, 9, 0, 0, 0, 0, time.UTC), start)
}
