package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"momentumbot/internal/model"
)

// DiscordNotifier posts messages to a Discord webhook.
type DiscordNotifier struct {
	WebhookURL string
	BotName    string
	PlainText  bool // send {"content": ...} instead of an embed
	Client     *http.Client
}

// NewDiscordNotifier creates a notifier with a bounded request timeout.
func NewDiscordNotifier(webhookURL, botName, proxyURL string, timeout time.Duration) *DiscordNotifier {
	return &DiscordNotifier{
		WebhookURL: webhookURL,
		BotName:    botName,
		Client:     newHTTPClient(proxyURL, timeout),
	}
}

func (d *DiscordNotifier) Name() string { return "discord" }

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Timestamp   string         `json:"timestamp"`
	Footer      *discordFooter `json:"footer,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordPayload struct {
	Username string         `json:"username,omitempty"`
	Content  string         `json:"content,omitempty"`
	Embeds   []discordEmbed `json:"embeds,omitempty"`
}

func (d *DiscordNotifier) payload(msg Message) discordPayload {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	if d.PlainText {
		return discordPayload{
			Username: d.BotName,
			Content:  fmt.Sprintf("**%s**\n%s", msg.Title, msg.Body),
		}
	}
	embed := discordEmbed{
		Title:       msg.Title,
		Description: msg.Body,
		Color:       msg.Color,
		Timestamp:   ts.Format(time.RFC3339),
		Fields: []discordField{
			{Name: "Time (UTC)", Value: ts.Format("2006-01-02 15:04:05"), Inline: true},
		},
	}
	if d.BotName != "" {
		embed.Footer = &discordFooter{Text: d.BotName}
	}
	return discordPayload{Username: d.BotName, Embeds: []discordEmbed{embed}}
}

// Notify posts the message. Discord answers 204 No Content; any 2xx counts as delivered.
func (d *DiscordNotifier) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(d.payload(msg))
	if err != nil {
		return fmt.Errorf("discord: marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: create request: %v: %w", err, model.ErrDeliveryFailed)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("discord: send: %v: %w", err, model.ErrDeliveryFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord: status %d, body: %s: %w", resp.StatusCode, string(respBody), model.ErrDeliveryFailed)
	}
	log.Printf("[INFO] %s alert sent to Discord", msg.Category.Label())
	return nil
}
