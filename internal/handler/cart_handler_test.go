package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartStore is a mock implementation of cart.Store.
type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) Save(ctx context.Context, userID string, items []cart.Item) error {
	args := m.Called(ctx, userID, items)
	return args.Error(0)
}

func (m *MockCartStore) Load(ctx context.Context, userID string) ([]cart.Item, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.Item), args.Error(1)
}

func TestCartHandler_Get(t *testing.T) {
	logger := zerolog.Nop()

	items := []cart.Item{
		{ProductID: "P001", Name: "Product 1", Price: decimal.NewFromInt(10), Quantity: 2},
	}

	tests := []struct {
		name           string
		userID         string
		mockItems      []cart.Item
		mockError      error
		expectedStatus int
		expectStore    bool
	}{
		{
			name:           "Success",
			userID:         "user-1",
			mockItems:      items,
			expectedStatus: http.StatusOK,
			expectStore:    true,
		},
		{
			name:           "Missing user identity",
			userID:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Empty cart",
			userID:         "user-1",
			mockItems:      []cart.Item{},
			expectedStatus: http.StatusOK,
			expectStore:    true,
		},
		{
			name:           "Store unavailable",
			userID:         "user-1",
			mockError:      fmt.Errorf("%w: connection refused", model.ErrStoreUnavailable),
			expectedStatus: http.StatusServiceUnavailable,
			expectStore:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(MockCartStore)
			handler := NewCartHandler(mockStore, logger)

			if tt.expectStore {
				mockStore.On("Load", mock.Anything, tt.userID).Return(tt.mockItems, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			serve, setHeaders := asUser(tt.userID, handler.Get)
			setHeaders(req)
			w := httptest.NewRecorder()

			serve(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectStore {
				mockStore.AssertExpectations(t)
			}
		})
	}
}

func TestCartHandler_Put(t *testing.T) {
	logger := zerolog.Nop()

	items := []cart.Item{
		{ProductID: "P001", Name: "Product 1", Price: decimal.NewFromInt(10), Quantity: 2},
	}

	tests := []struct {
		name           string
		userID         string
		requestBody    interface{}
		mockError      error
		expectedStatus int
		expectStore    bool
	}{
		{
			name:           "Success",
			userID:         "user-1",
			requestBody:    items,
			expectedStatus: http.StatusNoContent,
			expectStore:    true,
		},
		{
			name:           "Missing user identity",
			userID:         "",
			requestBody:    items,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid JSON",
			userID:         "user-1",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Store unavailable",
			userID:         "user-1",
			requestBody:    items,
			mockError:      fmt.Errorf("%w: connection refused", model.ErrStoreUnavailable),
			expectedStatus: http.StatusServiceUnavailable,
			expectStore:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(MockCartStore)
			handler := NewCartHandler(mockStore, logger)

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			if tt.expectStore {
				mockStore.On("Save", mock.Anything, tt.userID, mock.AnythingOfType("[]cart.Item")).
					Return(tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPut, "/api/cart", bytes.NewBuffer(body))
			serve, setHeaders := asUser(tt.userID, handler.Put)
			setHeaders(req)
			w := httptest.NewRecorder()

			serve(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectStore {
				mockStore.AssertExpectations(t)
			}
		})
	}
}
