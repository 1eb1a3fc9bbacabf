package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramNotifier is the optional second channel for the run summary.
type telegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(botToken string, chatID int64) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &telegramNotifier{bot: bot, chatID: chatID}, nil
}

// Send posts the summary to the configured chat.
func (n *telegramNotifier) Send(ctx context.Context, subject, body string) error {
	msg := tgbotapi.NewMessage(n.chatID, subject+"\n\n"+body)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
