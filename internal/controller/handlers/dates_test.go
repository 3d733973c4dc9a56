package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yshabas/avtoshkola_bot/internal/model"
)

func TestParseOfferedDate(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, time.September, 6, 12, 0, 0, 0, loc)

	t.Run("день внутри окна", func(t *testing.T) {
		date, err := parseOfferedDate("08.09.2026", now, bookingWindowDays, loc)
		require.NoError(t, err)
		require.Equal(t, time.Date(2026, time.September, 8, 0, 0, 0, 0, loc), date)
	})

	t.Run("сегодня и последний день окна", func(t *testing.T) {
		_, err := parseOfferedDate("06.09.2026", now, bookingWindowDays, loc)
		require.NoError(t, err)
		_, err = parseOfferedDate("19.09.2026", now, bookingWindowDays, loc)
		require.NoError(t, err)
	})

	t.Run("вчера отклоняется", func(t *testing.T) {
		_, err := parseOfferedDate("05.09.2026", now, bookingWindowDays, loc)
		require.ErrorIs(t, err, errDateOutsideWindow)
	})

	t.Run("за границей окна отклоняется", func(t *testing.T) {
		_, err := parseOfferedDate("20.09.2026", now, bookingWindowDays, loc)
		require.ErrorIs(t, err, errDateOutsideWindow)
	})

	t.Run("произвольный текст", func(t *testing.T) {
		_, err := parseOfferedDate("завтра", now, bookingWindowDays, loc)
		require.Error(t, err)
		require.NotErrorIs(t, err, errDateOutsideWindow)
	})

	t.Run("окно блокировок шире", func(t *testing.T) {
		_, err := parseOfferedDate("05.10.2026", now, blockWindowDays, loc)
		require.NoError(t, err)
		_, err = parseOfferedDate("05.10.2026", now, bookingWindowDays, loc)
		require.ErrorIs(t, err, errDateOutsideWindow)
	})
}

func TestRescheduleConfirmText(t *testing.T) {
	req := &model.RescheduleRequest{
		OldDate:     time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
		OldTime:     "14:00",
		OldDuration: model.Duration1h,
	}
	text := rescheduleConfirmText(req, time.Date(2026, time.September, 11, 0, 0, 0, 0, time.UTC), "11:00")

	require.Contains(t, text, "10.09.2026 о 14:00")
	require.Contains(t, text, "11.09.2026 о 11:00")
	require.Contains(t, text, string(model.Duration1h))
}
