// Package notify исходящие сообщения в Telegram вне диалогового
// контекста: подтверждения, напоминания, просьбы об оценке.
package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TelegramNotifier шлёт сообщения через go-telegram/bot
type TelegramNotifier struct {
	bot *bot.Bot
}

func NewTelegramNotifier(b *bot.Bot) *TelegramNotifier {
	return &TelegramNotifier{bot: b}
}

// SendText отправляет простое текстовое сообщение
func (n *TelegramNotifier) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

// SendChoice отправляет сообщение с reply-клавиатурой: каждая строка
// keyboard — ряд кнопок
func (n *TelegramNotifier) SendChoice(ctx context.Context, chatID int64, text string, keyboard [][]string) error {
	rows := make([][]models.KeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]models.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, models.KeyboardButton{Text: label})
		}
		rows = append(rows, buttons)
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
		ReplyMarkup: &models.ReplyKeyboardMarkup{
			Keyboard:       rows,
			ResizeKeyboard: true,
		},
	})
	if err != nil {
		return fmt.Errorf("send choice to %d: %w", chatID, err)
	}
	return nil
}
