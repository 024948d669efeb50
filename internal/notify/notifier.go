package notify

import (
	"context"
	"log/slog"
	"time"
)

// Notifier simulates delivery of an order notification. The delay stands in
// for a slow channel such as email or SMS.
type Notifier struct {
	Log   *slog.Logger
	Delay time.Duration
}

func NewNotifier(log *slog.Logger, delay time.Duration) *Notifier {
	return &Notifier{Log: log, Delay: delay}
}

func (n *Notifier) SendOrderNotification(ctx context.Context, event OrderCreated) error {
	n.Log.Info("sending order notification", "order_id", event.OrderID, "user_id", event.UserID)

	select {
	case <-time.After(n.Delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	n.Log.Info("order notification sent", "order_id", event.OrderID)
	return nil
}
