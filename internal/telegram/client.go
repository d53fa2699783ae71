package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// SecretTokenHeader carries the webhook secret Telegram echoes back on
// every delivery when one was registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Client sends outbound messages through the Telegram Bot API.
type Client struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

func New(token string, logger *zap.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))

	return &Client{
		api:    api,
		logger: logger,
	}, nil
}

// Notify sends one HTML-formatted text message to a chat. Fire-and-forget:
// no retries, no delivery receipts.
func (c *Client) Notify(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := c.api.Send(msg); err != nil {
		c.logger.Error("failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
