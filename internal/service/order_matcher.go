package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// OrderMatcher finds the order a cart submission should reuse, or creates it.
// It reports whether the returned order was newly created.
type OrderMatcher interface {
	Match(ctx context.Context, tx pgx.Tx, profileID int64, total decimal.Decimal) (*model.Order, bool, error)
}

// TotalCostMatcher identifies an order by its owner and total cost. Two
// different carts with the same total for the same profile resolve to the
// same order until that order is paid.
type TotalCostMatcher struct {
	orders repository.OrderRepository
}

// NewTotalCostMatcher creates a matcher backed by orders.
func NewTotalCostMatcher(orders repository.OrderRepository) *TotalCostMatcher {
	return &TotalCostMatcher{orders: orders}
}

// Match returns the oldest unpaid order of profileID with the given total,
// creating one when none exists.
func (m *TotalCostMatcher) Match(ctx context.Context, tx pgx.Tx, profileID int64, total decimal.Decimal) (*model.Order, bool, error) {
	existing, err := m.orders.FindByOwnerAndTotal(ctx, tx, profileID, total)
	if err != nil {
		return nil, false, err
	}
	if existing != nil && !existing.Status.IsTerminal() {
		return existing, false, nil
	}

	order := &model.Order{
		OwnerProfileID: profileID,
		TotalCost:      total,
		Status:         model.OrderStatusNew,
	}
	if err := m.orders.Create(ctx, tx, order); err != nil {
		return nil, false, fmt.Errorf("failed to create order: %w", err)
	}

	return order, true, nil
}
