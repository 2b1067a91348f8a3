package messaging

import (
	"context"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	apperrors "github.com/allisson/slimtrack/internal/errors"
)

// Outcome is how a handler settles a delivery.
type Outcome int

const (
	// Ack removes the message from the queue.
	Ack Outcome = iota
	// Reject drops the message without requeue. Used for messages that can never succeed.
	Reject
	// Requeue returns the message to the queue for immediate redelivery.
	Requeue
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Reject:
		return "reject"
	case Requeue:
		return "requeue"
	default:
		return "unknown"
	}
}

// Handler processes one message body and decides its outcome.
type Handler func(ctx context.Context, body []byte) Outcome

// Subscription binds a durable queue to a routing key on a topic exchange.
type Subscription struct {
	Exchange    string
	Queue       string
	RoutingKey  string
	Prefetch    int
	ConsumerTag string
}

// ErrDeliveriesClosed is returned when the broker stops delivering, typically
// because the channel or connection was closed.
var ErrDeliveriesClosed = apperrors.New("delivery channel closed by broker")

// Consumer runs a receive loop over the deliveries of one subscription.
type Consumer struct {
	open   ChannelOpener
	logger *slog.Logger
}

// NewConsumer creates a Consumer. Each Consume call opens its own channel.
func NewConsumer(open ChannelOpener, logger *slog.Logger) *Consumer {
	return &Consumer{open: open, logger: logger}
}

// Consume declares the subscription topology and hands each delivery to handler
// until ctx is cancelled. Deliveries are processed one at a time; the message in
// flight when ctx is cancelled is settled before Consume returns. Unacknowledged
// prefetched messages go back to the queue when the channel closes.
func (c *Consumer) Consume(ctx context.Context, sub Subscription, handler Handler) error {
	ch, err := c.open()
	if err != nil {
		return err
	}
	defer func() {
		if !ch.IsClosed() {
			_ = ch.Close()
		}
	}()

	if err := setupTopology(ch, sub); err != nil {
		return err
	}

	deliveries, err := ch.ConsumeWithContext(ctx, sub.Queue, sub.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return apperrors.Wrapf(err, "failed to consume from %s", sub.Queue)
	}

	logger := c.logger.With(slog.String("queue", sub.Queue))
	logger.Info("consumer started", slog.String("routing_key", sub.RoutingKey))

	for {
		select {
		case <-ctx.Done():
			logger.Info("consumer stopped")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					logger.Info("consumer stopped")
					return nil
				}
				return apperrors.Wrapf(ErrDeliveriesClosed, "queue %s", sub.Queue)
			}

			outcome := handler(ctx, d.Body)
			if err := settle(d, outcome); err != nil {
				logger.Error("failed to settle delivery",
					slog.String("outcome", outcome.String()),
					slog.Any("error", err),
				)
			}
		}
	}
}

func setupTopology(ch Channel, sub Subscription) error {
	prefetch := sub.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}

	if err := ch.Qos(prefetch, 0, false); err != nil {
		return apperrors.Wrap(err, "failed to set prefetch")
	}
	if err := ch.ExchangeDeclare(sub.Exchange, ExchangeKind, true, false, false, false, nil); err != nil {
		return apperrors.Wrapf(err, "failed to declare exchange %s", sub.Exchange)
	}
	if _, err := ch.QueueDeclare(sub.Queue, true, false, false, false, nil); err != nil {
		return apperrors.Wrapf(err, "failed to declare queue %s", sub.Queue)
	}
	if err := ch.QueueBind(sub.Queue, sub.RoutingKey, sub.Exchange, false, nil); err != nil {
		return apperrors.Wrapf(err, "failed to bind queue %s", sub.Queue)
	}
	return nil
}

func settle(d amqp.Delivery, outcome Outcome) error {
	switch outcome {
	case Ack:
		return d.Ack(false)
	case Reject:
		return d.Reject(false)
	default:
		return d.Nack(false, true)
	}
}
