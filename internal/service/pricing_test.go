package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/service"
)

func TestLessonPrice(t *testing.T) {
	// Двойной тариф только за два часа, полтора идут по одинарному
	require.Equal(t, 490, service.LessonPrice(490, model.Duration1h))
	require.Equal(t, 490, service.LessonPrice(490, model.Duration15h))
	require.Equal(t, 980, service.LessonPrice(490, model.Duration2h))
	require.Equal(t, 1100, service.LessonPrice(550, model.Duration2h))

	// Без тарифа действует прайс по умолчанию
	require.Equal(t, 400, service.LessonPrice(0, model.Duration1h))
	require.Equal(t, 600, service.LessonPrice(0, model.Duration15h))
	require.Equal(t, 800, service.LessonPrice(0, model.Duration2h))
}
