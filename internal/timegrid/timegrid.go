// Package timegrid часовая сетка рабочего дня: преобразование
// времени "HH:MM" в минуты и обратно, проверка пересечения
// полуоткрытых интервалов, перечисление часовых слотов.
package timegrid

import (
	"fmt"
	"time"
)

// MinutesOfDay переводит время "HH:MM" в минуты с начала суток
func MinutesOfDay(clock string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time %q: %w", clock, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", clock)
	}
	return h*60 + m, nil
}

// FormatMinutes переводит минуты с начала суток обратно в "HH:MM"
func FormatMinutes(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// Overlaps проверяет пересечение полуоткрытых интервалов [s1,e1) и [s2,e2).
// Этот предикат используется везде, где ищутся конфликты:
// занятие против занятия и занятие против блокировки.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// HourSlots перечисляет часовые слоты "HH:00" от from (включительно)
// до to (не включительно)
func HourSlots(from, to int) []string {
	var slots []string
	for h := from; h < to; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h))
	}
	return slots
}

// DateOnly обнуляет время, оставляя календарный день в той же зоне
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// At собирает момент времени из календарного дня и времени "HH:MM"
func At(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	mins, err := MinutesOfDay(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), mins/60, mins%60, 0, 0, loc), nil
}

// WeekBounds возвращает понедельник и воскресенье недели, содержащей date
func WeekBounds(date time.Time) (time.Time, time.Time) {
	d := DateOnly(date)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	start := d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}
