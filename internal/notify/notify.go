// Package notify delivers outbound notifications on a best-effort basis.
// Messages are queued in-process and drained by background workers so the
// request path never waits on downstream transport; a full queue or a failed
// send drops the message with a log line.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shubhanshu-a32/katelog/internal/domain/delivery"
)

// ErrQueueFull is returned when the dispatch queue cannot accept a message.
var ErrQueueFull = errors.New("notification queue full")

// Sender pushes one notification to the outbound transport.
type Sender interface {
	Send(ctx context.Context, n delivery.Notification) error
}

// Dispatcher implements delivery.Notifier with a bounded queue drained by
// background workers.
type Dispatcher struct {
	sender  Sender
	lg      *zap.Logger
	queue   chan delivery.Notification
	workers int
	g       *errgroup.Group
}

// NewDispatcher creates a Dispatcher. queueSize bounds how many undelivered
// notifications may pile up before new ones are dropped.
func NewDispatcher(sender Sender, lg *zap.Logger, queueSize, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		sender:  sender,
		lg:      lg,
		queue:   make(chan delivery.Notification, queueSize),
		workers: workers,
	}
}

// Start launches the worker goroutines. They exit when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.g, ctx = errgroup.WithContext(ctx)
	for range d.workers {
		d.g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case n := <-d.queue:
					if err := d.sender.Send(ctx, n); err != nil {
						d.lg.Warn("notification send failed",
							zap.String("recipient_id", n.RecipientID),
							zap.String("title", n.Title),
							zap.Error(err),
						)
					}
				}
			}
		})
	}
}

// Stop waits for the workers to exit. Queued but unsent messages are dropped;
// notifications are best-effort by contract.
func (d *Dispatcher) Stop() {
	if d.g != nil {
		_ = d.g.Wait()
	}
}

// Notify enqueues a notification without blocking.
func (d *Dispatcher) Notify(_ context.Context, n delivery.Notification) error {
	select {
	case d.queue <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

var _ delivery.Notifier = (*Dispatcher)(nil)

// KafkaSender publishes notifications as JSON messages keyed by recipient.
type KafkaSender struct {
	writer *kafka.Writer
}

// NewKafkaSender creates a KafkaSender writing to topic on the given brokers.
func NewKafkaSender(brokers []string, topic string) *KafkaSender {
	return &KafkaSender{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
	}
}

type kafkaPayload struct {
	RecipientID string    `json:"recipientId"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	SentAt      time.Time `json:"sentAt"`
}

// Send publishes one notification. Keying by recipient keeps a recipient's
// messages ordered within a partition.
func (s *KafkaSender) Send(ctx context.Context, n delivery.Notification) error {
	value, err := json.Marshal(kafkaPayload{
		RecipientID: n.RecipientID,
		Title:       n.Title,
		Body:        n.Body,
		SentAt:      n.SentAt,
	})
	if err != nil {
		return errors.Wrap(err, "marshal notification")
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.RecipientID),
		Value: value,
		Time:  n.SentAt,
	})
	if err != nil {
		return errors.Wrap(err, "write notification")
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (s *KafkaSender) Close() error {
	return s.writer.Close()
}

// LogSender logs notifications instead of sending them. Used when no broker
// is configured (local development, tests).
type LogSender struct {
	lg *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(lg *zap.Logger) *LogSender {
	return &LogSender{lg: lg}
}

func (s *LogSender) Send(_ context.Context, n delivery.Notification) error {
	s.lg.Info("notification",
		zap.String("recipient_id", n.RecipientID),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
	)
	return nil
}
