package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "Received", StatusReceived.String())
	assert.Equal(t, "OutForDelivery", StatusOutForDelivery.String())
	assert.Equal(t, "Cancelled", StatusCancelled.String())
	assert.Equal(t, "42", Status(42).String())
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusReceived.IsTerminal())
	assert.False(t, StatusOutForDelivery.IsTerminal())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{name: "Success_ReceivedToProcessing", from: StatusReceived, to: StatusProcessing, want: true},
		{name: "Success_InTransitToOutForDelivery", from: StatusInTransit, to: StatusOutForDelivery, want: true},
		{name: "Success_OutForDeliveryToDelivered", from: StatusOutForDelivery, to: StatusDelivered, want: true},
		{name: "Success_ProcessingToCancelled", from: StatusProcessing, to: StatusCancelled, want: true},
		{name: "Error_SkipStage", from: StatusReceived, to: StatusInTransit, want: false},
		{name: "Error_Backwards", from: StatusInTransit, to: StatusProcessing, want: false},
		{name: "Error_Same", from: StatusProcessing, to: StatusProcessing, want: false},
		{name: "Error_FromDelivered", from: StatusDelivered, to: StatusCancelled, want: false},
		{name: "Error_FromCancelled", from: StatusCancelled, to: StatusReceived, want: false},
		{name: "Error_UnknownTarget", from: StatusReceived, to: Status(99), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	t.Run("Success_Integer", func(t *testing.T) {
		s, err := ParseStatus("3")
		require.NoError(t, err)
		assert.Equal(t, StatusInTransit, s)
	})

	t.Run("Success_Name", func(t *testing.T) {
		s, err := ParseStatus("Delivered")
		require.NoError(t, err)
		assert.Equal(t, StatusDelivered, s)
	})

	t.Run("Error_UnknownInteger", func(t *testing.T) {
		_, err := ParseStatus("0")
		assert.Error(t, err)
	})

	t.Run("Error_UnknownName", func(t *testing.T) {
		_, err := ParseStatus("Lost")
		assert.Error(t, err)
	})
}
