// Package service holds application services that sit between handlers
// and infrastructure: review event publishing and the startup routine.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/eco-stations/internal/metrics"
	"github.com/iliyamo/eco-stations/internal/queue"
)

// ReviewPublisher sends review.created events to RabbitMQ.  Publishing
// is best effort: failures are logged and returned so callers can ignore
// them without interrupting the request.
type ReviewPublisher struct {
	URL     string
	Enabled bool
	Log     logrus.FieldLogger
}

// NewReviewPublisher returns a publisher; a disabled one does nothing.
func NewReviewPublisher(url string, enabled bool, log logrus.FieldLogger) *ReviewPublisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReviewPublisher{URL: url, Enabled: enabled, Log: log.WithField("component", "review-publisher")}
}

// PublishReviewCreated publishes ev to the durable review.created queue
// as a persistent JSON message.
func (p *ReviewPublisher) PublishReviewCreated(ctx context.Context, ev queue.ReviewCreatedEvent) error {
	if p == nil || !p.Enabled {
		return nil
	}
	err := p.publish(ctx, ev)
	metrics.EventPublished(err == nil)
	if err != nil {
		p.Log.WithError(err).WithField("review_id", ev.ReviewID).Warn("publish review event failed")
	}
	return err
}

func (p *ReviewPublisher) publish(ctx context.Context, ev queue.ReviewCreatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	timeout, err := dialTimeout(ctx)
	if err != nil {
		return err
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.ReviewCreatedQueue, true, false, false, false, nil); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",                       // default exchange
		queue.ReviewCreatedQueue, // routing key = queue name
		false,                    // mandatory
		false,                    // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}

// maxDialTimeout caps connecting and the AMQP handshake when ctx has no
// earlier deadline.
const maxDialTimeout = 5 * time.Second

func dialTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dl, ok := ctx.Deadline()
	if !ok {
		return maxDialTimeout, nil
	}
	left := time.Until(dl)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return min(left, maxDialTimeout), nil
}
