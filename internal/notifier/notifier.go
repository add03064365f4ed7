// Package notifier delivers alert and status messages to chat endpoints.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"momentumbot/internal/model"
)

// Message is a single formatted notification.
type Message struct {
	Category  model.Category
	Title     string
	Body      string
	Color     int
	Timestamp time.Time
}

// Notifier delivers one message. Implementations do not retry.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
	Name() string
}

// LogNotifier writes messages to the process log. It stands in when no endpoint is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	log.Printf("[INFO] delivery skipped, no endpoint configured: [%s] %s\n%s", msg.Category, msg.Title, msg.Body)
	return nil
}

// Multi sends each message to every notifier in order and joins the failures.
type Multi []Notifier

func (m Multi) Name() string { return "multi" }

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
