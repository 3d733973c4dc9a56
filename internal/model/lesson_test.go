package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yshabas/avtoshkola_bot/internal/model"
)

func TestDurationMinutes(t *testing.T) {
	require.Equal(t, 60, model.Duration1h.Minutes())
	require.Equal(t, 90, model.Duration15h.Minutes())
	require.Equal(t, 120, model.Duration2h.Minutes())
}

func TestDurationHours(t *testing.T) {
	require.Equal(t, 1.0, model.Duration1h.Hours())
	require.Equal(t, 1.5, model.Duration15h.Hours())
	require.Equal(t, 2.0, model.Duration2h.Hours())
}

func TestDurationSlotsOccupied(t *testing.T) {
	// 1.5 часа занимает два часовых слота, как и 2 часа
	require.Equal(t, 1, model.Duration1h.SlotsOccupied())
	require.Equal(t, 2, model.Duration15h.SlotsOccupied())
	require.Equal(t, 2, model.Duration2h.SlotsOccupied())
}

func TestDurationValid(t *testing.T) {
	require.True(t, model.Duration1h.Valid())
	require.True(t, model.Duration15h.Valid())
	require.True(t, model.Duration2h.Valid())
	require.False(t, model.Duration("3 години").Valid())
	require.False(t, model.Duration("").Valid())
}
