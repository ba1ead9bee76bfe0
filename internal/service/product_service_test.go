package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetAll(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	catalogue := []model.Product{
		testProduct("P001", 5),
		testProduct("P002", 0),
	}

	tests := []struct {
		name           string
		limit          int
		offset         int
		expectedLimit  int
		expectedOffset int
		mockProducts   []model.Product
		mockError      error
		expectError    bool
	}{
		{
			name:           "Success",
			limit:          20,
			offset:         10,
			expectedLimit:  20,
			expectedOffset: 10,
			mockProducts:   catalogue,
		},
		{
			name:           "Zero limit defaults to 10",
			limit:          0,
			offset:         0,
			expectedLimit:  10,
			expectedOffset: 0,
			mockProducts:   catalogue,
		},
		{
			name:           "Limit clamped to 100",
			limit:          500,
			offset:         0,
			expectedLimit:  100,
			expectedOffset: 0,
			mockProducts:   catalogue,
		},
		{
			name:           "Negative offset clamped to zero",
			limit:          10,
			offset:         -5,
			expectedLimit:  10,
			expectedOffset: 0,
			mockProducts:   catalogue,
		},
		{
			name:           "Repository error",
			limit:          10,
			offset:         0,
			expectedLimit:  10,
			expectedOffset: 0,
			mockError:      errors.New("database error"),
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := NewProductService(mockRepo, logger)

			mockRepo.On("GetAll", mock.Anything, tt.expectedLimit, tt.expectedOffset).
				Return(tt.mockProducts, tt.mockError)

			got, err := service.GetAll(ctx, tt.limit, tt.offset)

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.mockProducts, got)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	product := testProduct("P001", 5)

	tests := []struct {
		name        string
		productID   string
		mockProduct *model.Product
		mockError   error
		expectedErr error
		skipMock    bool
	}{
		{
			name:        "Success",
			productID:   "P001",
			mockProduct: &product,
		},
		{
			name:        "Empty ID",
			productID:   "",
			expectedErr: model.ErrProductNotFound,
			skipMock:    true,
		},
		{
			name:        "Product not found",
			productID:   "MISSING",
			mockProduct: nil,
			expectedErr: model.ErrProductNotFound,
		},
		{
			name:      "Repository error",
			productID: "P001",
			mockError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := NewProductService(mockRepo, logger)

			if !tt.skipMock {
				mockRepo.On("GetByID", mock.Anything, tt.productID).
					Return(tt.mockProduct, tt.mockError)
			}

			got, err := service.GetByID(ctx, tt.productID)

			if tt.mockProduct != nil {
				require.NoError(t, err)
				assert.Equal(t, tt.mockProduct, got)
			} else {
				require.Error(t, err)
				assert.Nil(t, got)
				if tt.expectedErr != nil {
					assert.Equal(t, tt.expectedErr, err)
				}
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
