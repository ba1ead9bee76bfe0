package events

import (
	"encoding/json"
	"time"

	"storefront/internal/model"
)

// Event types published to the order stream.
const (
	TypeOrderPlaced    = "OrderPlaced"
	TypeOrderCancelled = "OrderCancelled"
)

// Envelope wraps every published event with routing metadata. Consumers
// dedupe on EventID.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// ItemQty is one line of an order payload.
type ItemQty struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderPlacedPayload announces a committed order placement.
type OrderPlacedPayload struct {
	OrderID string    `json:"order_id"`
	UserID  string    `json:"user_id"`
	Items   []ItemQty `json:"items"`
	Total   string    `json:"total"`
	Status  string    `json:"status"`
}

// OrderCancelledPayload announces a committed cancellation.
type OrderCancelledPayload struct {
	OrderID     string     `json:"order_id"`
	UserID      string     `json:"user_id"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// Publisher emits order lifecycle events after their transaction has
// committed. Publishing never influences transaction outcomes.
type Publisher interface {
	OrderPlaced(order *model.Order)
	OrderCancelled(order *model.Order)
}

// NopPublisher discards all events. Used in tests and when no broker is
// configured.
type NopPublisher struct{}

func (NopPublisher) OrderPlaced(*model.Order)    {}
func (NopPublisher) OrderCancelled(*model.Order) {}

func itemQuantities(items []model.OrderLineItem) []ItemQty {
	out := make([]ItemQty, len(items))
	for i, item := range items {
		out[i] = ItemQty{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return out
}
