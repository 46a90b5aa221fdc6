package line

import (
	"context"
	"fmt"
	"time"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"breakreminder/internal/domain/entity"
	"breakreminder/internal/pkg/logger"
)

const pushTimeout = 10 * time.Second

// Client pushes alerts to one LINE user through the Messaging API.
type Client struct {
	bot *linebot.Client
	to  string
	log logger.Logger
}

// NewClient creates a LINE push client sending to the user id to.
func NewClient(channelSecret, channelToken, to string, log logger.Logger, options ...linebot.ClientOption) (*Client, error) {
	bot, err := linebot.New(channelSecret, channelToken, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE Bot client: %w", err)
	}
	log.Info("Successfully created LINE Bot client.")
	return &Client{bot: bot, to: to, log: log}, nil
}

// Fire sends the alert text as a push message.
func (c *Client) Fire(ctx context.Context, alert entity.Alert) error {
	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	_, err := c.bot.PushMessage(c.to, linebot.NewTextMessage(alert.Message())).WithContext(ctx).Do()
	if err != nil {
		return fmt.Errorf("LINE push to %s failed: %w", c.to, err)
	}
	c.log.Debug("Successfully sent push message.")
	return nil
}
