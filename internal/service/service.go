package service

import (
	"context"

	"storefront/internal/model"
)

// ProductService is the catalogue collaborator used by the cart and checkout.
type ProductService interface {
	// FindProductsByID retrieves the products with the given ids. Unknown ids
	// are absent from the result.
	FindProductsByID(ctx context.Context, ids []int64) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)
}

// CartService defines operations on the session cart.
type CartService interface {
	// Get renders the cart of a session.
	Get(ctx context.Context, sessionID string) (*model.BasketView, error)

	// Add puts count units of a product into the session cart.
	Add(ctx context.Context, sessionID string, productID int64, count int) (*model.BasketView, error)

	// Remove takes a product out of the session cart.
	Remove(ctx context.Context, sessionID string, productID int64, count int) (*model.BasketView, error)
}

// CheckoutService turns carts into orders and drives their status.
type CheckoutService interface {
	// SubmitCart creates or reuses the order for the session cart of a profile.
	SubmitCart(ctx context.Context, profileID int64, sessionID string, lines []model.SubmitCartLine) (*model.SubmitResult, error)

	// FinalizeOrder records delivery and payment details, applies the
	// delivery surcharge and persists line items. Orders owned by another
	// profile are reported as not found.
	FinalizeOrder(ctx context.Context, profileID, orderID int64, sessionID string, req *model.FinalizeOrderRequest) (*model.OrderDetail, error)

	// MarkPaid moves an order of profileID to Paid.
	MarkPaid(ctx context.Context, profileID, orderID int64) error

	// GetOrderDetail renders an order of profileID with its product quantities.
	GetOrderDetail(ctx context.Context, profileID, orderID int64, sessionID string) (*model.OrderDetail, error)

	// ListOrders renders the orders of a profile, newest first.
	ListOrders(ctx context.Context, profileID int64) ([]model.OrderDetail, error)
}
