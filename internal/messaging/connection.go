// Package messaging provides the RabbitMQ transport of the order pipeline: an
// idempotent-declaring publisher and a prefetch-bounded consumer loop.
package messaging

import (
	"context"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	apperrors "github.com/allisson/slimtrack/internal/errors"
)

// ExchangeKind is the type of every exchange declared by this package.
const ExchangeKind = "topic"

// Channel is the subset of *amqp.Channel used by the publisher and consumer.
type Channel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	ConsumeWithContext(
		ctx context.Context,
		queue, consumer string,
		autoAck, exclusive, noLocal, noWait bool,
		args amqp.Table,
	) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// ChannelOpener opens a new channel on a live connection.
type ChannelOpener func() (Channel, error)

// Connection owns one AMQP connection shared by every publisher and consumer of the process.
type Connection struct {
	conn   *amqp.Connection
	logger *slog.Logger
}

// Dial connects to the broker at url.
func Dial(url string, logger *slog.Logger) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to connect to broker")
	}

	c := &Connection{conn: conn, logger: logger}
	go c.watch(conn.NotifyClose(make(chan *amqp.Error, 1)))

	return c, nil
}

func (c *Connection) watch(closed <-chan *amqp.Error) {
	if err, ok := <-closed; ok && err != nil {
		c.logger.Error("broker connection closed",
			slog.Int("code", err.Code),
			slog.String("reason", err.Reason),
		)
	}
}

// Channel opens a new channel. Channels are never shared between goroutines.
func (c *Connection) Channel() (Channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open channel")
	}
	return ch, nil
}

// IsClosed reports whether the underlying connection is gone.
func (c *Connection) IsClosed() bool {
	return c.conn.IsClosed()
}

// Close closes the connection and every channel opened on it.
func (c *Connection) Close() error {
	if c.conn.IsClosed() {
		return nil
	}
	return c.conn.Close()
}
