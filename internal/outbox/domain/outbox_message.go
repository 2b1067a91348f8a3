// Package domain defines the transactional outbox record relayed to the broker.
package domain

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/allisson/slimtrack/internal/errors"
)

// MaxErrorMessageLength bounds OutboxMessage.ErrorMessage, in characters.
const MaxErrorMessageLength = 2000

// OutboxMessage is a pending broker message written in the same transaction as
// the state change it announces. Only the relay mutates it after creation.
type OutboxMessage struct {
	ID           uuid.UUID
	EventType    string
	Payload      string
	Published    bool
	CreatedAt    time.Time
	PublishedAt  *time.Time
	RetryCount   int
	ErrorMessage *string
}

// ListFilter selects a page of outbox rows, oldest first. A nil Published matches every row.
type ListFilter struct {
	Published *bool
	Offset    int
	Limit     int
}

// NewOutboxMessage serializes event as the payload of a new unpublished message.
// eventType doubles as the routing key.
func NewOutboxMessage(eventType string, event any) (*OutboxMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal outbox payload")
	}

	return &OutboxMessage{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(payload),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MarkPublished records a successful publish.
func (m *OutboxMessage) MarkPublished(now time.Time) {
	m.Published = true
	m.PublishedAt = &now
	m.ErrorMessage = nil
}

// MarkFailed records a failed publish attempt.
func (m *OutboxMessage) MarkFailed(err error) {
	m.RetryCount++
	msg := truncateRunes(strings.ToValidUTF8(err.Error(), string(utf8.RuneError)), MaxErrorMessageLength)
	m.ErrorMessage = &msg
}

// truncateRunes cuts s to at most n runes without splitting one.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Exhausted reports whether the relay stopped retrying this message.
func (m *OutboxMessage) Exhausted(maxRetries int) bool {
	return !m.Published && m.RetryCount >= maxRetries
}
