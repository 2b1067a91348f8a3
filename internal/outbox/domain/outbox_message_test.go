package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboxMessage(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		msg, err := NewOutboxMessage("order.created", map[string]string{"orderId": "abc"})

		require.NoError(t, err)
		assert.Equal(t, "order.created", msg.EventType)
		assert.JSONEq(t, `{"orderId":"abc"}`, msg.Payload)
		assert.False(t, msg.Published)
		assert.Nil(t, msg.PublishedAt)
		assert.Zero(t, msg.RetryCount)
		assert.NotZero(t, msg.CreatedAt)
	})

	t.Run("Error_UnsupportedPayload", func(t *testing.T) {
		_, err := NewOutboxMessage("order.created", make(chan int))
		assert.Error(t, err)
	})
}

func TestOutboxMessage_Lifecycle(t *testing.T) {
	msg, err := NewOutboxMessage("order.processing", struct{}{})
	require.NoError(t, err)

	msg.MarkFailed(errors.New("connection refused"))
	assert.Equal(t, 1, msg.RetryCount)
	require.NotNil(t, msg.ErrorMessage)
	assert.Equal(t, "connection refused", *msg.ErrorMessage)
	assert.False(t, msg.Exhausted(5))

	now := time.Now().UTC()
	msg.MarkPublished(now)
	assert.True(t, msg.Published)
	assert.Equal(t, &now, msg.PublishedAt)
	assert.Nil(t, msg.ErrorMessage)
	assert.False(t, msg.Exhausted(1))
}

func TestOutboxMessage_Exhausted(t *testing.T) {
	msg := &OutboxMessage{}
	for range 5 {
		msg.MarkFailed(errors.New("boom"))
	}

	assert.True(t, msg.Exhausted(5))
	assert.False(t, msg.Exhausted(6))
}

func TestOutboxMessage_MarkFailedTruncates(t *testing.T) {
	msg := &OutboxMessage{}
	msg.MarkFailed(errors.New(strings.Repeat("x", MaxErrorMessageLength+10)))

	require.NotNil(t, msg.ErrorMessage)
	assert.Len(t, *msg.ErrorMessage, MaxErrorMessageLength)
}

func TestOutboxMessage_MarkFailedKeepsValidUTF8(t *testing.T) {
	t.Run("MultiByteText", func(t *testing.T) {
		msg := &OutboxMessage{}
		msg.MarkFailed(errors.New("x" + strings.Repeat("é", 1500)))

		require.NotNil(t, msg.ErrorMessage)
		got := *msg.ErrorMessage
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, MaxErrorMessageLength, utf8.RuneCountInString(got))
		assert.Equal(t, "x"+strings.Repeat("é", MaxErrorMessageLength-1), got)
	})

	t.Run("ShortMultiByteTextUntouched", func(t *testing.T) {
		msg := &OutboxMessage{}
		msg.MarkFailed(errors.New(strings.Repeat("é", 1200)))

		require.NotNil(t, msg.ErrorMessage)
		assert.Equal(t, strings.Repeat("é", 1200), *msg.ErrorMessage)
	})

	t.Run("InvalidBytesReplaced", func(t *testing.T) {
		msg := &OutboxMessage{}
		msg.MarkFailed(errors.New("broker said \xff\xfe"))

		require.NotNil(t, msg.ErrorMessage)
		assert.True(t, utf8.ValidString(*msg.ErrorMessage))
		assert.Equal(t, "broker said \uFFFD", *msg.ErrorMessage)
	})
}
