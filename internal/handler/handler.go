package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// StockDetails carries the shortfall information the UI needs to let the
// user adjust quantities.
type StockDetails struct {
	ProductID string `json:"productId"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps a service error to an HTTP response.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		logger.Warn().
			Str("product_id", stockErr.ProductID).
			Int("available", stockErr.Available).
			Int("requested", stockErr.Requested).
			Msg("insufficient stock")
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: stockErr.Error(),
			Code:  model.ErrCodeInsufficientStock,
			Details: StockDetails{
				ProductID: stockErr.ProductID,
				Available: stockErr.Available,
				Requested: stockErr.Requested,
			},
		})
		return
	}

	status := http.StatusInternalServerError
	message := "internal error"
	code := model.ErrCodeInternalError

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		message = domainErr.Message
		code = domainErr.Code
		switch domainErr.Code {
		case model.ErrCodeProductNotFound, model.ErrCodeInvalidQuantity, model.ErrCodeEmptyOrder:
			status = http.StatusBadRequest
		case model.ErrCodeOrderNotFound:
			status = http.StatusNotFound
		case model.ErrCodeOrderNotCancellable:
			status = http.StatusConflict
		case model.ErrCodeStoreUnavailable:
			status = http.StatusServiceUnavailable
		}
	} else if isRequestError(err) {
		status = http.StatusBadRequest
		message = err.Error()
		code = model.ErrCodeMissingField
	}

	logger.Error().Err(err).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// isRequestError spots draft validation failures that carry their
// message in plain text.
func isRequestError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "required") ||
		strings.Contains(msg, "nil") ||
		strings.Contains(msg, "negative") ||
		strings.Contains(msg, "payment method")
}
