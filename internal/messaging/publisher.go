package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	apperrors "github.com/allisson/slimtrack/internal/errors"
)

// ContentTypeJSON is the content type of every published message.
const ContentTypeJSON = "application/json"

// Publisher publishes persistent JSON messages to topic exchanges.
// It is safe for concurrent use; publishes are serialized on one channel.
type Publisher struct {
	open     ChannelOpener
	logger   *slog.Logger
	mu       sync.Mutex
	ch       Channel
	declared map[string]bool
}

// NewPublisher creates a Publisher that opens its channel lazily.
func NewPublisher(open ChannelOpener, logger *slog.Logger) *Publisher {
	return &Publisher{
		open:     open,
		logger:   logger,
		declared: make(map[string]bool),
	}
}

// Publish JSON-encodes event and publishes it to exchange with routingKey.
func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event")
	}
	return p.PublishRaw(ctx, exchange, routingKey, body)
}

// PublishRaw publishes an already encoded JSON body. The exchange is declared
// durable on first use; a declaration that conflicts with the broker's existing
// exchange closes the channel and is returned as an error.
func (p *Publisher) PublishRaw(ctx context.Context, exchange, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	if !p.declared[exchange] {
		if err := ch.ExchangeDeclare(exchange, ExchangeKind, true, false, false, false, nil); err != nil {
			return apperrors.Wrapf(err, "failed to declare exchange %s", exchange)
		}
		p.declared[exchange] = true
	}

	err = ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  ContentTypeJSON,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    uuid.NewString(),
		Body:         body,
	})
	if err != nil {
		return apperrors.Wrapf(err, "failed to publish %s", routingKey)
	}

	p.logger.Debug("message published",
		slog.String("exchange", exchange),
		slog.String("routing_key", routingKey),
	)
	return nil
}

// channel returns the current channel, reopening it after the broker closed it.
// Must be called with p.mu held.
func (p *Publisher) channel() (Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	ch, err := p.open()
	if err != nil {
		return nil, err
	}

	p.ch = ch
	p.declared = make(map[string]bool)
	return ch, nil
}

// Close closes the publisher channel.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		return nil
	}
	return p.ch.Close()
}
