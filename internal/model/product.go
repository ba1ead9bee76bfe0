package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalogue product with live inventory.
type Product struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Category    string          `json:"category" db:"category"`
	Stock       int             `json:"stock" db:"stock"`
	IsAvailable bool            `json:"isAvailable" db:"is_available"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// StockChange is one product's computed inventory update, applied during
// the write phase of an order transaction.
type StockChange struct {
	ProductID   string
	NewStock    int
	IsAvailable bool
}
