package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity a cart entry or order line may hold.
// It matches the INTEGER quantity column.
const MaxQuantity = math.MaxInt32

// BasketItemRequest is the POST/DELETE /basket payload. Count is optional on
// DELETE, where an omitted count removes the whole entry.
type BasketItemRequest struct {
	ProductID int64 `json:"id" validate:"required,gt=0"`
	Count     *int  `json:"count" validate:"omitempty,max=2147483647"`
}

// BasketItem is a cart entry joined with live catalogue data.
type BasketItem struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Available  bool            `json:"available"`
	Price      decimal.Decimal `json:"price"`
	Count      int             `json:"count"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// BasketView is the rendered cart.
type BasketView struct {
	Items      []BasketItem    `json:"items"`
	TotalCount int             `json:"totalCount"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}
