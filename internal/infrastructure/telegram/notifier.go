package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"countysales/internal/ports"
)

const apiBaseURL = "https://api.telegram.org"

// Notifier posts the county summaries to a Telegram chat via the bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *resty.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return newNotifier(apiBaseURL, botToken, chatID)
}

func newNotifier(baseURL, botToken, chatID string) *Notifier {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second)
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   client,
	}
}

// PublishSummary sends the summary as a plain-text message.
func (n *Notifier) PublishSummary(ctx context.Context, summary string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	res, err := n.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": n.chatID,
			"text":    "Real estate sales report\n\n" + summary,
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", n.botToken))
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("telegram error: %s", res.Status())
	}
	return nil
}
