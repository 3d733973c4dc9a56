package model

import "time"

type Transmission string

const (
	TransmissionAutomatic Transmission = "Автомат"
	TransmissionManual    Transmission = "Механіка"
)

type Instructor struct {
	ID           int64        `json:"id"`
	TelegramID   int64        `json:"telegram_id"`
	Name         string       `json:"name"`
	Phone        string       `json:"phone"`
	Transmission Transmission `json:"transmission_type"`
	PricePerHour int          `json:"price_per_hour"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
}
