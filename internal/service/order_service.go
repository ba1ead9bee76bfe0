package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// retryBackoff is the base delay between conflict retries; attempt n
// waits n times this long.
const retryBackoff = 50 * time.Millisecond

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	publisher   events.Publisher
	maxRetries  int
	txTimeout   time.Duration
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	publisher events.Publisher,
	cfg config.OrderConfig,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		maxRetries:  cfg.MaxRetries,
		txTimeout:   cfg.Timeout,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder validates stock for every line item, creates the order and
// decrements inventory inside one serializable transaction. On any
// failure nothing is written; on a serialization conflict the whole
// transaction is retried from its read phase.
func (s *orderService) PlaceOrder(ctx context.Context, draft *model.OrderDraft) (uuid.UUID, error) {
	if err := s.validateDraft(draft); err != nil {
		return uuid.Nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var order *model.Order
	err := s.runOrderTx(ctx, "place_order", func(ctx context.Context) error {
		placed, txErr := s.placeOrderTx(ctx, draft)
		if txErr != nil {
			return txErr
		}
		order = placed
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.publisher.OrderPlaced(order)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", order.UserID).
		Int("item_count", len(order.Items)).
		Str("status", string(order.Status)).
		Msg("order placed")

	return order.ID, nil
}

// placeOrderTx runs one attempt of the placement transaction. The store
// forbids reads after the first write, so the body is structured as an
// explicit read phase, validation, then a write phase.
func (s *orderService) placeOrderTx(ctx context.Context, draft *model.OrderDraft) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Read phase: every referenced product, before any write.
	ids := distinctProductIDs(draft.Items)
	products, err := s.productRepo.GetByIDsTx(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Validation phase: all quantities against current stock.
	changes, err := planStockChanges(products, draft.Items, stockDecrement, policyStrict)
	if err != nil {
		return nil, err
	}

	// Write phase: order document first, then the stock decrements.
	order = buildOrder(draft, products)
	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err = s.productRepo.UpdateStock(ctx, tx, changes); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	return order, nil
}

// CancelOrder restores the exact quantities the order decremented and
// marks it cancelled, inside one serializable transaction.
func (s *orderService) CancelOrder(ctx context.Context, orderID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var cancelled *model.Order
	err := s.runOrderTx(ctx, "cancel_order", func(ctx context.Context) error {
		order, txErr := s.cancelOrderTx(ctx, orderID)
		if txErr != nil {
			return txErr
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return err
	}

	s.publisher.OrderCancelled(cancelled)

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("user_id", cancelled.UserID).
		Msg("order cancelled")

	return nil
}

func (s *orderService) cancelOrderTx(ctx context.Context, orderID uuid.UUID) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Read phase: the order, then every product it references.
	order, err = s.orderRepo.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if !order.Status.Cancellable() {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("status", string(order.Status)).
			Msg("order not cancellable")
		return nil, model.ErrOrderNotCancellable
	}

	items := lineItemQuantities(order.Items)
	products, err := s.productRepo.GetByIDsTx(ctx, tx, distinctProductIDs(items))
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	// Write phase: restore stock for products still in the catalogue.
	// Products deleted since placement are skipped; their quantities
	// have nowhere to go back to.
	changes, err := planStockChanges(products, items, stockIncrement, policyLenient)
	if err != nil {
		return nil, err
	}
	if skipped := len(distinctProductIDs(items)) - len(changes); skipped > 0 {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Int("skipped_products", skipped).
			Msg("some products no longer exist, stock not restored for them")
	}

	if err = s.productRepo.UpdateStock(ctx, tx, changes); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	now := time.Now().UTC()
	if err = s.orderRepo.UpdateStatus(ctx, tx, orderID, model.StatusCancelled, &now); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	order.Status = model.StatusCancelled
	order.CancelledAt = &now

	return order, nil
}

// GetByID retrieves an order with its line items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// ListByUser retrieves a user's orders, newest first.
func (s *orderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// runOrderTx executes fn with a bounded retry loop around serialization
// conflicts. Conflicts mean the store aborted the whole attempt, so
// rerunning from the read phase is safe; exhausted retries and deadline
// expiry surface as the timeout-class store error so callers can apply
// their own retry or fallback policy.
func (s *orderService) runOrderTx(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		lastErr = fn(ctx)
		switch {
		case lastErr == nil:
			return nil
		case errors.Is(lastErr, context.DeadlineExceeded):
			s.logger.Error().Str("op", op).Msg("store operation timed out")
			return model.ErrStoreUnavailable
		case repository.IsConflict(lastErr):
			s.logger.Warn().
				Str("op", op).
				Int("attempt", attempt).
				Msg("transaction conflict, retrying")
		default:
			return lastErr
		}

		select {
		case <-ctx.Done():
			return model.ErrStoreUnavailable
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}

	s.logger.Error().
		Str("op", op).
		Int("attempts", s.maxRetries).
		Err(lastErr).
		Msg("transaction conflict retries exhausted")

	return model.ErrStoreUnavailable
}

// validateDraft validates the order draft.
func (s *orderService) validateDraft(draft *model.OrderDraft) error {
	if draft == nil {
		return fmt.Errorf("order draft is nil")
	}

	if draft.UserID == "" {
		return fmt.Errorf("user ID is required")
	}

	if len(draft.Items) == 0 {
		return model.ErrEmptyOrder
	}

	for i, item := range draft.Items {
		if item.ProductID == "" {
			return fmt.Errorf("item %d: product ID is required", i)
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	if draft.PaymentMethod != model.PaymentCOD && draft.PaymentMethod != model.PaymentOnline {
		return fmt.Errorf("unknown payment method: %s", draft.PaymentMethod)
	}

	if draft.Subtotal.IsNegative() || draft.Discount.IsNegative() || draft.Total.IsNegative() {
		return fmt.Errorf("order totals cannot be negative")
	}

	return nil
}

// buildOrder assembles the order document from the draft and the
// products read in the transaction. Name and unit price are copied from
// the catalogue so the order is immune to later catalogue edits.
// Payment is simulated: cash on delivery starts pending, anything else
// is treated as already paid.
func buildOrder(draft *model.OrderDraft, products []model.Product) *model.Order {
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]model.OrderLineItem, len(draft.Items))
	for i, item := range draft.Items {
		product := byID[item.ProductID]
		items[i] = model.OrderLineItem{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
		}
	}

	status := model.StatusPaid
	if draft.PaymentMethod == model.PaymentCOD {
		status = model.StatusPending
	}

	return &model.Order{
		ID:            uuid.New(),
		UserID:        draft.UserID,
		Items:         items,
		Delivery:      draft.Delivery,
		Subtotal:      draft.Subtotal,
		Discount:      draft.Discount,
		Total:         draft.Total,
		Status:        status,
		PaymentMethod: draft.PaymentMethod,
		CreatedAt:     time.Now().UTC(),
	}
}

// distinctProductIDs preserves first-appearance order.
func distinctProductIDs(items []model.DraftLineItem) []string {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

// lineItemQuantities converts stored line items back into the quantity
// pairs the stock planner consumes. Restoration uses the quantities
// recorded at placement, never the current cart.
func lineItemQuantities(items []model.OrderLineItem) []model.DraftLineItem {
	out := make([]model.DraftLineItem, len(items))
	for i, item := range items {
		out[i] = model.DraftLineItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return out
}
