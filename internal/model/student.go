package model

import "time"

type Student struct {
	ID            int64     `json:"id"`
	TelegramID    int64     `json:"telegram_id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Tariff        int       `json:"tariff"` // грн/час, фиксируется при регистрации
	RegisteredVia string    `json:"registered_via"`
	CreatedAt     time.Time `json:"created_at"`
}
