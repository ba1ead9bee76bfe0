package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue browsing.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderService defines operations for order placement and management.
type OrderService interface {
	// PlaceOrder validates stock for every line item, creates the order
	// and decrements inventory, all inside one atomic transaction.
	// Returns the new order's identifier.
	PlaceOrder(ctx context.Context, draft *model.OrderDraft) (uuid.UUID, error)

	// CancelOrder restores the stock an order decremented and marks the
	// order cancelled, all inside one atomic transaction.
	CancelOrder(ctx context.Context, orderID uuid.UUID) error

	// GetByID retrieves an order with its line items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
}
