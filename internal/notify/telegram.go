// Package notify sends chat messages back to Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const sendTimeout = 10 * time.Second

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("telegram bot token is not set")

// Sender delivers a text message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// TelegramSender sends messages through the Telegram Bot API.
type TelegramSender struct {
	token    func() string
	endpoint string
	client   *http.Client
}

// NewTelegramSender creates a sender. token is called on every send so a
// rotated secret takes effect immediately. An empty endpoint selects the
// public Bot API.
func NewTelegramSender(token func() string, endpoint string) *TelegramSender {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	return &TelegramSender{
		token:    token,
		endpoint: endpoint,
		client:   &http.Client{Timeout: sendTimeout},
	}
}

// SendMessage sends text to chatID.
func (s *TelegramSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	token := s.token()
	if token == "" {
		return ErrMissingToken
	}

	// Built by hand so sending does not cost an extra getMe round-trip.
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: s.client,
		Buffer: 100,
	}
	bot.SetAPIEndpoint(s.endpoint)

	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

// APIError returns the Telegram API error wrapped in err, if any.
func APIError(err error) (*tgbotapi.Error, bool) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
