package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// LogFileName is the file inside the log directory events are appended to.
const LogFileName = "review.log"

// Consumer reads review.created events and appends one line per event to
// <LogDir>/review.log.
type Consumer struct {
	URL    string
	LogDir string
	Log    logrus.FieldLogger

	mu sync.Mutex // serializes file appends
}

// NewConsumer returns a consumer for the broker at url.
func NewConsumer(url, logDir string, log logrus.FieldLogger) *Consumer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Consumer{URL: url, LogDir: logDir, Log: log.WithField("component", "review-consumer")}
}

// Run connects to the broker, declares the durable review.created queue
// and consumes it, reconnecting with exponential backoff (capped at 30s)
// whenever the connection drops.  It returns ctx.Err() once ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(ReviewCreatedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, ReviewCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.HandleMessage(d.Body); err != nil {
			c.Log.WithError(err).Error("handle message failed")
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleMessage decodes one event body and appends its log line.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev ReviewCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ReviewID == 0 {
		return errors.New("event without review_id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.LogDir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders an event as a single human-readable log line.
func FormatLine(ev ReviewCreatedEvent) string {
	image := "no"
	if ev.ImageURL != "" {
		image = ev.ImageURL
	}
	return fmt.Sprintf("[%s] Review created | review_id=%d | user_id=%d | user=%q | station_id=%d | station=%q | rating=%d | image=%s\n",
		ev.CreatedAt, ev.ReviewID, ev.UserID, ev.Username, ev.StationID, ev.StationName, ev.Rating, image)
}
