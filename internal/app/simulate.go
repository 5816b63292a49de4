package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"sentiment-event-alerts/internal/alerting"
)

// SimulateAlert pushes a synthetic event through the configured notifier to
// verify delivery end to end.
func (a *App) SimulateAlert(ctx context.Context, eventType string, score, sentiment decimal.Decimal) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}
	if eventType != "min" && eventType != "max" {
		return errors.New("event type must be min or max")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	note := alerting.Notification{
		EventDate:     time.Now().UTC(),
		EventType:     eventType,
		Score:         score,
		Sentiment:     sentiment,
		Channels:      a.Config.Alerting.Channels,
		AdditionalMsg: "simulated event, not detected from data",
	}
	return notifier.Notify(ctx, note)
}
