package model

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/money"
)

// OrderStatus is the payment lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = ""
	OrderStatusAwaitingPayment OrderStatus = "Awaiting payment"
	OrderStatusPaid            OrderStatus = "Paid"
)

// CanTransitionTo reports whether an order in status s may move to next.
// Paid is terminal; marking an order paid has no precondition besides
// the order existing.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch next {
	case OrderStatusAwaitingPayment:
		return s == OrderStatusNew || s == OrderStatusAwaitingPayment
	case OrderStatusPaid:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions leave s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid
}

// Order represents a customer order.
type Order struct {
	ID             int64           `db:"id"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
	OwnerProfileID int64           `db:"profile_id"`
	FullName       string          `db:"full_name"`
	Phone          string          `db:"phone"`
	Email          string          `db:"email"`
	DeliveryType   string          `db:"delivery_type"`
	PaymentType    string          `db:"payment_type"`
	TotalCost      decimal.Decimal `db:"total_cost"`
	Status         OrderStatus     `db:"status"`
	City           string          `db:"city"`
	Address        string          `db:"address"`
}

// OrderLineItem is a quantified product reference inside a finalised order.
type OrderLineItem struct {
	OrderID   int64 `db:"order_id"`
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}

// DeliveryTypeExpress is the delivery type that always carries the express fee.
const DeliveryTypeExpress = "express"

// DeliveryFees is the flat surcharge table applied when an order is finalised.
type DeliveryFees struct {
	Express       decimal.Decimal
	Standard      decimal.Decimal
	FreeThreshold decimal.Decimal
}

// DefaultDeliveryFees returns the storefront's delivery fee table.
func DefaultDeliveryFees() DeliveryFees {
	return DeliveryFees{
		Express:       money.New(500),
		Standard:      money.New(200),
		FreeThreshold: money.New(2000),
	}
}

// Apply returns total with the delivery surcharge for deliveryType added.
func (f DeliveryFees) Apply(total decimal.Decimal, deliveryType string) decimal.Decimal {
	switch {
	case deliveryType == DeliveryTypeExpress:
		return total.Add(f.Express)
	case total.LessThan(f.FreeThreshold):
		return total.Add(f.Standard)
	default:
		return total
	}
}

// SubmitCartLine is one element of the POST /orders payload.
type SubmitCartLine struct {
	ProductID int64           `json:"id" validate:"required,gt=0"`
	Count     int             `json:"count" validate:"required,gt=0,max=2147483647"`
	Price     decimal.Decimal `json:"price"`
}

// SubmitResult is returned after a cart has been turned into an order.
type SubmitResult struct {
	OrderID           int64   `json:"orderId"`
	DroppedProductIDs []int64 `json:"droppedProductIds,omitempty"`
}

// FinalizeOrderRequest is the POST /order/{id} payload.
type FinalizeOrderRequest struct {
	FullName     string              `json:"fullName" validate:"required"`
	Phone        string              `json:"phone" validate:"required"`
	Email        string              `json:"email" validate:"required,email"`
	DeliveryType string              `json:"deliveryType" validate:"required"`
	City         string              `json:"city" validate:"required"`
	Address      string              `json:"address" validate:"required"`
	PaymentType  string              `json:"paymentType" validate:"required"`
	Products     []OrderProductCount `json:"products" validate:"omitempty,dive"`
}

// OrderProductCount is a product id with the quantity being ordered.
type OrderProductCount struct {
	ProductID int64 `json:"id" validate:"required,gt=0"`
	Count     int   `json:"count" validate:"required,gt=0,max=2147483647"`
}

// OrderDetail is the rendered order with its products.
type OrderDetail struct {
	ID           int64           `json:"id"`
	CreatedAt    time.Time       `json:"createdAt"`
	FullName     string          `json:"fullName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	DeliveryType string          `json:"deliveryType"`
	PaymentType  string          `json:"paymentType"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	Status       OrderStatus     `json:"status"`
	City         string          `json:"city"`
	Address      string          `json:"address"`
	Products     []OrderProduct  `json:"products"`
}

// OrderProduct is a product row inside an OrderDetail.
type OrderProduct struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
	Count     int             `json:"count"`
}
