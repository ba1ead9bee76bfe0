package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Cancellable(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{StatusPending, true},
		{StatusPaid, true},
		{StatusShipped, false},
		{StatusDelivered, false},
		{StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Cancellable())
		})
	}
}

func TestInsufficientStockError_Message(t *testing.T) {
	err := &InsufficientStockError{
		ProductID:   "P001",
		ProductName: "Blue Mug",
		Available:   2,
		Requested:   5,
	}

	assert.Equal(t, "insufficient stock for Blue Mug: available 2, requested 5", err.Error())
}
