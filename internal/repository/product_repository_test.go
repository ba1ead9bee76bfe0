package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	createSchema(t, pool)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// createSchema creates the necessary database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(50) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(10, 2) NOT NULL CHECK (price >= 0),
			category VARCHAR(100) NOT NULL,
			stock INTEGER NOT NULL CHECK (stock >= 0),
			is_available BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			delivery JSONB NOT NULL DEFAULT '{}',
			subtotal DECIMAL(10, 2) NOT NULL,
			discount DECIMAL(10, 2) NOT NULL DEFAULT 0,
			total DECIMAL(10, 2) NOT NULL,
			status VARCHAR(20) NOT NULL,
			payment_method VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			cancelled_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id VARCHAR(50) NOT NULL,
			product_name VARCHAR(255) NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price DECIMAL(10, 2) NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
	`

	_, err := pool.Exec(ctx, schema)
	require.NoError(t, err)
}

// seedProducts inserts test products into the database.
func seedProducts(t *testing.T, pool *pgxpool.Pool, products []model.Product) {
	ctx := context.Background()

	query := `
		INSERT INTO products (id, name, price, category, stock, is_available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, p := range products {
		_, err := pool.Exec(ctx, query, p.ID, p.Name, p.Price, p.Category, p.Stock, p.IsAvailable, p.CreatedAt)
		require.NoError(t, err)
	}
}

func testCatalogue(now time.Time) []model.Product {
	return []model.Product{
		{ID: "P001", Name: "Product A", Price: decimal.NewFromInt(10), Category: "Cat1", Stock: 5, IsAvailable: true, CreatedAt: now},
		{ID: "P002", Name: "Product B", Price: decimal.NewFromInt(20), Category: "Cat2", Stock: 3, IsAvailable: true, CreatedAt: now},
		{ID: "P003", Name: "Product C", Price: decimal.NewFromInt(30), Category: "Cat1", Stock: 0, IsAvailable: false, CreatedAt: now},
		{ID: "P004", Name: "Product D", Price: decimal.NewFromInt(40), Category: "Cat3", Stock: 8, IsAvailable: true, CreatedAt: now},
		{ID: "P005", Name: "Product E", Price: decimal.NewFromInt(50), Category: "Cat2", Stock: 1, IsAvailable: true, CreatedAt: now},
	}
}

func TestProductRepository_GetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewProductRepository(pool, logger)

	seedProducts(t, pool, testCatalogue(time.Now()))

	tests := []struct {
		name     string
		limit    int
		offset   int
		expected int
	}{
		{
			name:     "Get all products",
			limit:    10,
			offset:   0,
			expected: 5,
		},
		{
			name:     "Get first page",
			limit:    2,
			offset:   0,
			expected: 2,
		},
		{
			name:     "Get last page",
			limit:    2,
			offset:   4,
			expected: 1,
		},
		{
			name:     "Offset beyond results",
			limit:    10,
			offset:   10,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			products, err := repo.GetAll(ctx, tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Len(t, products, tt.expected)

			// Verify products are ordered by name
			for i := 1; i < len(products); i++ {
				assert.LessOrEqual(t, products[i-1].Name, products[i].Name)
			}
		})
	}
}

func TestProductRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewProductRepository(pool, logger)

	seedProducts(t, pool, testCatalogue(time.Now()))

	tests := []struct {
		name      string
		id        string
		expectNil bool
	}{
		{
			name:      "Product exists",
			id:        "P001",
			expectNil: false,
		},
		{
			name:      "Product does not exist",
			id:        "P999",
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			product, err := repo.GetByID(ctx, tt.id)

			require.NoError(t, err)

			if tt.expectNil {
				assert.Nil(t, product)
			} else {
				require.NotNil(t, product)
				assert.Equal(t, "P001", product.ID)
				assert.Equal(t, "Product A", product.Name)
				assert.True(t, product.Price.Equal(decimal.NewFromInt(10)))
				assert.Equal(t, 5, product.Stock)
				assert.True(t, product.IsAvailable)
			}
		})
	}
}

func TestProductRepository_GetByIDsTx(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewProductRepository(pool, logger)

	seedProducts(t, pool, testCatalogue(time.Now()))

	tests := []struct {
		name     string
		ids      []string
		expected int
	}{
		{
			name:     "Get multiple products",
			ids:      []string{"P001", "P002", "P003"},
			expected: 3,
		},
		{
			name:     "Some products do not exist",
			ids:      []string{"P001", "P999"},
			expected: 1,
		},
		{
			name:     "No products exist",
			ids:      []string{"P998", "P999"},
			expected: 0,
		},
		{
			name:     "Empty ID list",
			ids:      []string{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			tx, err := pool.Begin(ctx)
			require.NoError(t, err)
			defer tx.Rollback(ctx)

			products, err := repo.GetByIDsTx(ctx, tx, tt.ids)

			require.NoError(t, err)
			assert.Len(t, products, tt.expected)
		})
	}
}

func TestProductRepository_UpdateStock(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewProductRepository(pool, logger)
	ctx := context.Background()

	seedProducts(t, pool, testCatalogue(time.Now()))

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)

	changes := []model.StockChange{
		{ProductID: "P001", NewStock: 0, IsAvailable: false},
		{ProductID: "P002", NewStock: 10, IsAvailable: true},
	}

	require.NoError(t, repo.UpdateStock(ctx, tx, changes))
	require.NoError(t, tx.Commit(ctx))

	p1, err := repo.GetByID(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, 0, p1.Stock)
	assert.False(t, p1.IsAvailable)

	p2, err := repo.GetByID(ctx, "P002")
	require.NoError(t, err)
	assert.Equal(t, 10, p2.Stock)
	assert.True(t, p2.IsAvailable)
}

func TestProductRepository_UpdateStock_RolledBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewProductRepository(pool, logger)
	ctx := context.Background()

	seedProducts(t, pool, testCatalogue(time.Now()))

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)

	changes := []model.StockChange{
		{ProductID: "P001", NewStock: 0, IsAvailable: false},
	}

	require.NoError(t, repo.UpdateStock(ctx, tx, changes))
	require.NoError(t, tx.Rollback(ctx))

	// The rollback discards the stock change.
	p1, err := repo.GetByID(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, 5, p1.Stock)
	assert.True(t, p1.IsAvailable)
}
