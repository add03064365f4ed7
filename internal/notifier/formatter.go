package notifier

import (
	"fmt"
	"strings"
	"time"

	"momentumbot/internal/model"
)

const (
	ColorOversold   = 16711680 // red
	ColorOverbought = 32768    // green
	ColorInfo       = 3447003  // blue
)

// ColorFor maps a category to the embed color.
func ColorFor(c model.Category) int {
	label := c.Label()
	switch {
	case strings.Contains(label, "OVERSOLD"):
		return ColorOversold
	case strings.Contains(label, "OVERBOUGHT"):
		return ColorOverbought
	default:
		return ColorInfo
	}
}

// FormatAlert turns a classifier alert into a message.
func FormatAlert(alert *model.Alert, now time.Time) Message {
	return Message{
		Category:  alert.Category,
		Title:     "🚨 " + alert.Category.Label(),
		Body:      alert.Message,
		Color:     ColorFor(alert.Category),
		Timestamp: now.UTC(),
	}
}

// FormatStatus builds the periodic status update sent when no rule fires.
func FormatStatus(instrument string, snap model.Snapshot, now time.Time) Message {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**%s Status Update**\n", instrument))
	b.WriteString(fmt.Sprintf("Price: $%.4f\n", snap.Price))
	b.WriteString(fmt.Sprintf("RSI: %s\n", snap.RSI))
	b.WriteString(fmt.Sprintf("Stochastic: %s", snap.StochK))
	if snap.StochD.Usable() {
		b.WriteString(fmt.Sprintf(" (%%D %s)", snap.StochD))
	}
	return Message{
		Category:  model.CategoryStatus,
		Title:     "🚨 " + model.CategoryStatus.Label(),
		Body:      b.String(),
		Color:     ColorFor(model.CategoryStatus),
		Timestamp: now.UTC(),
	}
}
