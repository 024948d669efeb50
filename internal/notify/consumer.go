package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader   *kafka.Reader
	notifier *Notifier
	log      *slog.Logger
}

func NewConsumer(brokers []string, groupID, topic string, n *Notifier, log *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
	})
	return &Consumer{reader: r, notifier: n, log: log}
}

// Run consumes order events until the context is cancelled. The offset is
// committed only after the notification handler returns, so a crash mid-send
// results in redelivery rather than a lost notification.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var event OrderCreated
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.Error("undecodable event, skipping", "error", err, "offset", msg.Offset)
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return err
			}
			continue
		}

		if err := c.notifier.SendOrderNotification(ctx, event); err != nil {
			c.log.Error("notification failed", "order_id", event.OrderID, "error", err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
