package handler

import (
	"context"
	"errors"
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

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, sessionID string) (*model.BasketView, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BasketView), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, sessionID string, productID int64, count int) (*model.BasketView, error) {
	args := m.Called(ctx, sessionID, productID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BasketView), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, sessionID string, productID int64, count int) (*model.BasketView, error) {
	args := m.Called(ctx, sessionID, productID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BasketView), args.Error(1)
}

func basketWithKettle(count int) *model.BasketView {
	price := decimal.NewFromInt(100)
	total := price.Mul(decimal.NewFromInt(int64(count)))
	return &model.BasketView{
		Items: []model.BasketItem{
			{ID: 7, Title: "Kettle", Available: true, Price: price, Count: count, TotalPrice: total},
		},
		TotalCount: count,
		TotalPrice: total,
	}
}

func TestCartHandler_Get(t *testing.T) {
	mockService := new(MockCartService)
	handler := NewCartHandler(mockService, zerolog.Nop())

	mockService.On("Get", mock.Anything, testSession).Return(basketWithKettle(2), nil)

	w := httptest.NewRecorder()
	handler.Get(w, newRequest(http.MethodGet, "/basket", nil, ""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"items": [{"id":7,"title":"Kettle","available":true,"price":100,"count":2,"totalPrice":200}],
		"totalCount": 2,
		"totalPrice": 200
	}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestCartHandler_Get_NoSession(t *testing.T) {
	mockService := new(MockCartService)
	handler := NewCartHandler(mockService, zerolog.Nop())

	mockService.On("Get", mock.Anything, "").Return(nil, cart.ErrNoSession)

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest(http.MethodGet, "/basket", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

func TestCartHandler_Add(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.BasketView
		mockError      error
		expectedStatus int
		expectService  bool
		expectedFields map[string]string
	}{
		{
			name:           "Success",
			body:           `{"id":7,"count":2}`,
			mockReturn:     basketWithKettle(2),
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Unknown product",
			body:           `{"id":7,"count":2}`,
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Non-positive count",
			body:           `{"id":7,"count":2}`,
			mockError:      model.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Missing count",
			body:           `{"id":7}`,
			expectedStatus: http.StatusBadRequest,
			expectedFields: map[string]string{"count": "is required"},
		},
		{
			name:           "Count above limit",
			body:           `{"id":7,"count":2147483648}`,
			expectedStatus: http.StatusBadRequest,
			expectedFields: map[string]string{"count": "must be at most 2147483647"},
		},
		{
			name:           "Missing id",
			body:           `{"count":1}`,
			expectedStatus: http.StatusBadRequest,
			expectedFields: map[string]string{"id": "is required"},
		},
		{
			name:           "Invalid JSON",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Store failure",
			body:           `{"id":7,"count":2}`,
			mockError:      errors.New("redis unavailable"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCartService)
			handler := NewCartHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Add", mock.Anything, testSession, int64(7), 2).Return(tt.mockReturn, tt.mockError)
			}

			w := httptest.NewRecorder()
			handler.Add(w, newRequest(http.MethodPost, "/basket", []byte(tt.body), ""))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedFields != nil {
				resp := decodeError(t, w)
				assert.Equal(t, model.ErrCodeValidation, resp.Error)
				assert.Equal(t, tt.expectedFields, resp.Fields)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestCartHandler_Remove(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		body           string
		expectedCount  int
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Partial removal",
			body:           `{"id":7,"count":1}`,
			expectedCount:  1,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Omitted count removes entry",
			body:           `{"id":7}`,
			expectedCount:  0,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Negative count",
			body:           `{"id":7,"count":-1}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid JSON",
			body:           `{"id":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCartService)
			handler := NewCartHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Remove", mock.Anything, testSession, int64(7), tt.expectedCount).
					Return(basketWithKettle(1), nil)
			}

			w := httptest.NewRecorder()
			handler.Remove(w, newRequest(http.MethodDelete, "/basket", []byte(tt.body), ""))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
