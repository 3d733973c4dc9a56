package model

import "time"

const BlockTypeManual = "blocked"

// ScheduleBlock интервал недоступности, объявленный инструктором.
// Интервал полуоткрытый: [TimeStart, TimeEnd).
type ScheduleBlock struct {
	ID           int64     `json:"id"`
	InstructorID int64     `json:"instructor_id"`
	Date         time.Time `json:"date"`
	TimeStart    string    `json:"time_start"` // "HH:MM"
	TimeEnd      string    `json:"time_end"`   // "HH:MM"
	BlockType    string    `json:"block_type"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}
