package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalogue view the checkout pipeline needs.
type Product struct {
	ID           int64           `json:"id" db:"id"`
	Title        string          `json:"title" db:"title"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Available    bool            `json:"available" db:"available"`
	FreeDelivery bool            `json:"freeDelivery" db:"free_delivery"`
	CreatedAt    time.Time       `json:"date" db:"created_at"`
}
