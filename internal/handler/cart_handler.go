package handler

import (
	"encoding/json"
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// CartHandler handles cart snapshot requests.
type CartHandler struct {
	store  cart.Store
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(store cart.Store, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		store:  store,
		logger: logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	items, err := h.store.Load(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Put handles PUT /api/cart requests, replacing the stored snapshot.
func (h *CartHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	var items []cart.Item
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if err := h.store.Save(r.Context(), userID, items); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
