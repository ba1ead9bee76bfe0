package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDsTx retrieves multiple products inside a transaction. This
	// is the read phase of an order transaction: every product an order
	// references is read here before any write is issued.
	GetByIDsTx(ctx context.Context, tx pgx.Tx, ids []string) ([]model.Product, error)

	// UpdateStock applies computed stock changes within the provided
	// transaction (write phase).
	UpdateStock(ctx context.Context, tx pgx.Tx, changes []model.StockChange) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a serializable transaction. Concurrent transactions
	// touching the same rows fail at commit with a serialization error
	// rather than both succeeding.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts an order and its line items within the
	// provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order by its ID along with its items.
	// Returns nil when the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIDTx retrieves an order inside a transaction.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// UpdateStatus updates an order's status within the provided
	// transaction. cancelledAt is recorded when non-nil.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, cancelledAt *time.Time) error

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
}
