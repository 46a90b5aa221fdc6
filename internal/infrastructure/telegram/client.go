package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"breakreminder/internal/domain/entity"
	"breakreminder/internal/pkg/logger"
)

const sendTimeout = 10 * time.Second

// Client sends alerts to one Telegram chat.
type Client struct {
	bot  *tele.Bot
	chat *tele.Chat
	log  logger.Logger
}

// NewClient creates a Telegram sender. apiURL overrides the Bot API endpoint
// and may be empty. The bot is created offline: no request is made until the
// first alert.
func NewClient(token string, chatID int64, apiURL string, log logger.Logger) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	b, err := tele.NewBot(tele.Settings{
		URL:     apiURL,
		Token:   token,
		Offline: true,
		Client:  &http.Client{Timeout: sendTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	log.Info("Successfully created Telegram bot client.")
	return &Client{bot: b, chat: &tele.Chat{ID: chatID}, log: log}, nil
}

// Fire sends the alert text. It returns when the send completes or ctx is
// done, whichever is first; an abandoned send is still bounded by the HTTP
// client timeout.
func (c *Client) Fire(ctx context.Context, alert entity.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sent := make(chan error, 1)
	go func() {
		_, err := c.bot.Send(c.chat, alert.Message())
		sent <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("telegram send to %d abandoned: %w", c.chat.ID, ctx.Err())
	case err := <-sent:
		if err != nil {
			return fmt.Errorf("telegram send to %d failed: %w", c.chat.ID, err)
		}
	}
	c.log.Debug("Successfully sent Telegram message.")
	return nil
}
