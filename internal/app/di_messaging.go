package app

import (
	"context"
	"fmt"

	"github.com/allisson/slimtrack/internal/messaging"
)

// AMQPConnection returns the process-wide broker connection.
func (c *Container) AMQPConnection() (*messaging.Connection, error) {
	return c.amqpConnection.get(func() (*messaging.Connection, error) {
		conn, err := messaging.Dial(c.config.AMQPURL, c.Logger())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to broker: %w", err)
		}
		return conn, nil
	})
}

// Publisher returns the publisher used by the outbox relay. It owns one channel.
func (c *Container) Publisher() (*messaging.Publisher, error) {
	return c.publisher.get(func() (*messaging.Publisher, error) {
		conn, err := c.AMQPConnection()
		if err != nil {
			return nil, err
		}
		return messaging.NewPublisher(conn.Channel, c.Logger()), nil
	})
}

// Consumer returns the consumer shared by the stage workers. Each Consume call
// opens its own channel.
func (c *Container) Consumer() (*messaging.Consumer, error) {
	return c.consumer.get(func() (*messaging.Consumer, error) {
		conn, err := c.AMQPConnection()
		if err != nil {
			return nil, err
		}
		return messaging.NewConsumer(conn.Channel, c.Logger()), nil
	})
}

// deferredPublisher resolves the container publisher on each call.
type deferredPublisher struct {
	container *Container
}

func (d deferredPublisher) PublishRaw(ctx context.Context, exchange, routingKey string, body []byte) error {
	publisher, err := d.container.Publisher()
	if err != nil {
		return err
	}
	return publisher.PublishRaw(ctx, exchange, routingKey, body)
}
