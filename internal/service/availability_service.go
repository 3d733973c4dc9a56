package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yshabas/avtoshkola_bot/internal/model"
	"github.com/yshabas/avtoshkola_bot/internal/timegrid"
)

// AvailabilityService считает свободные часовые слоты инструктора.
// Чистое чтение: никаких побочных эффектов.
type AvailabilityService struct {
	lessons   LessonStore
	blocks    BlockStore
	openHour  int
	closeHour int
	loc       *time.Location
}

func NewAvailabilityService(lessons LessonStore, blocks BlockStore, openHour, closeHour int, loc *time.Location) *AvailabilityService {
	return &AvailabilityService{
		lessons:   lessons,
		blocks:    blocks,
		openHour:  openHour,
		closeHour: closeHour,
		loc:       loc,
	}
}

// DateAvailability день с количеством свободных слотов
type DateAvailability struct {
	Date      time.Time
	FreeSlots int
}

// AvailableSlots возвращает свободные слоты "HH:00" инструктора на дату
// по возрастанию времени. На сегодняшний день занятие можно предложить
// не раньше чем через час: неполный остаток часа сдвигает начало
// на следующий целый час.
func (s *AvailabilityService) AvailableSlots(ctx context.Context, instructorID int64, date, now time.Time) ([]string, error) {
	nowLocal := now.In(s.loc)
	day := timegrid.DateOnly(date)
	today := timegrid.DateOnly(nowLocal)

	// Прошедшие дни не предлагаем
	if day.Before(today) {
		return nil, nil
	}

	startHour := s.openHour
	if day.Equal(today) {
		minHour := nowLocal.Hour() + 1
		if nowLocal.Minute() > 0 {
			minHour++
		}
		if minHour > startHour {
			startHour = minHour
		}
	}

	if startHour >= s.closeHour {
		return nil, nil
	}

	lessons, err := s.lessons.GetActiveByInstructorDate(ctx, instructorID, day)
	if err != nil {
		return nil, fmt.Errorf("get lessons: %w", err)
	}

	blocks, err := s.blocks.GetByInstructorDate(ctx, instructorID, day)
	if err != nil {
		return nil, fmt.Errorf("get blocks: %w", err)
	}

	// Часы, занятые занятиями: занятие с часа H на N слотов
	// закрывает часы H..H+N-1
	occupied := make(map[string]bool)
	for _, lesson := range lessons {
		startMins, err := timegrid.MinutesOfDay(lesson.Time)
		if err != nil {
			continue
		}
		for i := 0; i < lesson.Duration.SlotsOccupied(); i++ {
			occupied[timegrid.FormatMinutes((startMins/60+i)*60)] = true
		}
	}

	var free []string
	for _, slot := range timegrid.HourSlots(startHour, s.closeHour) {
		if occupied[slot] {
			continue
		}
		if s.insideBlock(blocks, slot) {
			continue
		}
		free = append(free, slot)
	}

	return free, nil
}

// SlotFits проверяет, что занятие заданной длительности можно начать
// в слоте timeStr: сам слот свободен, и для занятий на два слота
// свободен следующий час, если он ещё в рабочем окне.
func (s *AvailabilityService) SlotFits(ctx context.Context, instructorID int64, date time.Time, timeStr string, slots int, now time.Time) (bool, error) {
	free, err := s.AvailableSlots(ctx, instructorID, date, now)
	if err != nil {
		return false, err
	}

	freeSet := make(map[string]bool, len(free))
	for _, slot := range free {
		freeSet[slot] = true
	}

	if !freeSet[timeStr] {
		return false, nil
	}

	startMins, err := timegrid.MinutesOfDay(timeStr)
	if err != nil {
		return false, err
	}
	for i := 1; i < slots; i++ {
		hour := startMins/60 + i
		if hour >= s.closeHour {
			break
		}
		if !freeSet[timegrid.FormatMinutes(hour*60)] {
			return false, nil
		}
	}

	return true, nil
}

// NextDates дни ближайшего окна записи (days вперёд начиная с сегодня),
// в которых у инструктора есть хотя бы один свободный слот
func (s *AvailabilityService) NextDates(ctx context.Context, instructorID int64, now time.Time, days int) ([]DateAvailability, error) {
	today := timegrid.DateOnly(now.In(s.loc))

	var dates []DateAvailability
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i)
		slots, err := s.AvailableSlots(ctx, instructorID, day, now)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			dates = append(dates, DateAvailability{Date: day, FreeSlots: len(slots)})
		}
	}

	return dates, nil
}

// insideBlock попадает ли слот в какой-либо из интервалов блокировки
// [time_start, time_end)
func (s *AvailabilityService) insideBlock(blocks []*model.ScheduleBlock, slot string) bool {
	slotMins, err := timegrid.MinutesOfDay(slot)
	if err != nil {
		return false
	}

	for _, block := range blocks {
		start, err := timegrid.MinutesOfDay(block.TimeStart)
		if err != nil {
			continue
		}
		end, err := timegrid.MinutesOfDay(block.TimeEnd)
		if err != nil {
			continue
		}
		if slotMins >= start && slotMins < end {
			return true
		}
	}

	return false
}
