package service

import (
	"storefront/internal/model"
)

// stockDirection selects whether a stock plan reserves inventory
// (placement) or returns it (cancellation).
type stockDirection int

const (
	stockDecrement stockDirection = iota
	stockIncrement
)

// stockPolicy selects how a plan treats products missing from the
// catalogue. Placement is strict: the whole order aborts. Cancellation
// is lenient: a product deleted since the order was placed is skipped
// and the rest of the stock is still restored.
type stockPolicy int

const (
	policyStrict stockPolicy = iota
	policyLenient
)

// planStockChanges is the shared read-verify-compute step of both order
// transactions. It takes the product documents already read inside the
// transaction plus the requested quantities, and produces the stock
// writes to apply. No I/O happens here; the caller owns the read phase
// before and the write phase after.
//
// For decrements every requested quantity is checked against current
// stock, and any shortfall fails the whole plan. For increments stock
// only grows, so a positive quantity always leaves the product
// available again.
func planStockChanges(
	products []model.Product,
	items []model.DraftLineItem,
	dir stockDirection,
	policy stockPolicy,
) ([]model.StockChange, error) {
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// The same product may appear in several line items; stock is
	// checked and updated against the combined quantity.
	wanted := make(map[string]int, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if _, seen := wanted[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		wanted[item.ProductID] += item.Quantity
	}

	changes := make([]model.StockChange, 0, len(order))
	for _, id := range order {
		product, ok := byID[id]
		if !ok {
			if policy == policyLenient {
				continue
			}
			return nil, model.ErrProductNotFound
		}

		qty := wanted[id]
		switch dir {
		case stockDecrement:
			if product.Stock < qty {
				return nil, &model.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.Stock,
					Requested:   qty,
				}
			}
			newStock := product.Stock - qty
			changes = append(changes, model.StockChange{
				ProductID:   product.ID,
				NewStock:    newStock,
				IsAvailable: newStock > 0,
			})
		case stockIncrement:
			changes = append(changes, model.StockChange{
				ProductID:   product.ID,
				NewStock:    product.Stock + qty,
				IsAvailable: true,
			})
		}
	}

	return changes, nil
}
