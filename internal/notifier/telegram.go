package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"momentumbot/internal/model"
)

const telegramBaseURL = "https://api.telegram.org"

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BaseURL  string
	BotToken string
	ChatID   string
	Client   *http.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string, timeout time.Duration) *TelegramNotifier {
	return &TelegramNotifier{
		BaseURL:  telegramBaseURL,
		BotToken: botToken,
		ChatID:   chatID,
		Client:   newHTTPClient(proxyURL, timeout),
	}
}

func (t *TelegramNotifier) Name() string { return "telegram" }

var markdownBold = regexp.MustCompile(`\*\*(.+?)\*\*`)

// toHTML converts the **bold** markers used in alert bodies into Telegram HTML.
func toHTML(s string) string {
	return markdownBold.ReplaceAllString(html.EscapeString(s), "<b>$1</b>")
}

// Notify sends a message to the configured chat.
func (t *TelegramNotifier) Notify(ctx context.Context, msg Message) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.BotToken)
	text := fmt.Sprintf("<b>%s</b>\n\n%s", html.EscapeString(msg.Title), toHTML(msg.Body))
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %v: %w", err, model.ErrDeliveryFailed)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		// The token is part of the URL; keep it out of logs.
		if uerr, ok := err.(*url.Error); ok {
			err = uerr.Err
		}
		return fmt.Errorf("telegram: send message: %v: %w", err, model.ErrDeliveryFailed)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram API error: status %d, body: %s: %w", resp.StatusCode, string(respBody), model.ErrDeliveryFailed)
	}
	log.Printf("[INFO] %s alert sent to Telegram", msg.Category.Label())
	return nil
}
