package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/yshabas/avtoshkola_bot/internal/timegrid"
)

var errDateOutsideWindow = errors.New("date outside offered window")

// parseOfferedDate парсит дату из сообщения и проверяет окно записи.
// Клавиатура не ограничивает ввод: текстом можно прислать любую дату,
// поэтому прошедшие и слишком дальние дни отклоняются явно.
func parseOfferedDate(text string, now time.Time, days int, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(dateFormat, strings.TrimSpace(text), loc)
	if err != nil {
		return time.Time{}, err
	}
	today := timegrid.DateOnly(now.In(loc))
	if date.Before(today) || date.After(today.AddDate(0, 0, days-1)) {
		return time.Time{}, errDateOutsideWindow
	}
	return date, nil
}
