package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketpulse/internal/ports"
)

// ErrDelivery marks a failed send; callers must treat the message as
// undelivered and keep the item eligible for retry.
var ErrDelivery = errors.New("telegram delivery failed")

// Notifier posts messages to one Telegram chat via the bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		apiBase:  "https://api.telegram.org",
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 20 * time.Second},
	}
}

// Deliver posts an HTML-formatted message with link previews disabled. When
// link is non-empty it is appended as a single link-styled action.
func (n *Notifier) Deliver(ctx context.Context, text string, link string) error {
	if n.botToken == "" || n.chatID == "" {
		return fmt.Errorf("%w: notifier misconfigured", ErrDelivery)
	}

	if link != "" {
		text = fmt.Sprintf("%s\n<a href=\"%s\">Details</a>", text, link)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: new request: %v", ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrDelivery, resp.Status)
	}

	return nil
}
