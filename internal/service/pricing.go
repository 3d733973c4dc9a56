package service

import "github.com/yshabas/avtoshkola_bot/internal/model"

// Лимиты бронирования на одного ученика
const (
	DailyCapHours  = 2.0
	WeeklyCapHours = 6.0
)

// Прайс по умолчанию (грн), если у ученика не задан тариф
var fallbackPrices = map[model.Duration]int{
	model.Duration1h:  400,
	model.Duration15h: 600,
	model.Duration2h:  800,
}

// LessonPrice стоимость занятия. Двухчасовое занятие идёт по двойному
// тарифу, полуторачасовое — по одинарному.
func LessonPrice(tariff int, dur model.Duration) int {
	if tariff > 0 {
		if dur == model.Duration2h {
			return tariff * 2
		}
		return tariff
	}
	if price, ok := fallbackPrices[dur]; ok {
		return price
	}
	return fallbackPrices[model.Duration1h]
}
