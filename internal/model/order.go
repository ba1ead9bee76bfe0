package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// Cancellable reports whether an order in this status may still be
// cancelled. Delivered and already-cancelled orders are terminal.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusPaid
}

// PaymentMethod is how the customer chose to pay.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

// DeliveryInfo is the address snapshot captured with an order.
type DeliveryInfo struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
}

// OrderLineItem is one product+quantity entry within an order. Name and
// unit price are copied from the product at order time so historical
// orders do not change when the catalogue does.
type OrderLineItem struct {
	ProductID   string          `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
}

// Order is a placed customer order. Status is the only field mutated
// after creation.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        string          `json:"userId" db:"user_id"`
	Items         []OrderLineItem `json:"items"`
	Delivery      DeliveryInfo    `json:"delivery" db:"delivery"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	Total         decimal.Decimal `json:"total" db:"total"`
	Status        OrderStatus     `json:"status" db:"status"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	CancelledAt   *time.Time      `json:"cancelledAt,omitempty" db:"cancelled_at"`
}

// OrderDraft is the input to order placement: what the customer wants to
// buy, where to deliver it, and the totals computed at checkout time.
type OrderDraft struct {
	UserID        string          `json:"userId"`
	Items         []DraftLineItem `json:"items"`
	Delivery      DeliveryInfo    `json:"delivery"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
}

// DraftLineItem identifies a requested product and quantity. Prices are
// never taken from the draft; they are read from the catalogue inside
// the placement transaction.
type DraftLineItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
