package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductRepository defines catalogue lookups and maintenance.
type ProductRepository interface {
	// FindByIDs retrieves the products whose ids are in ids. Unknown ids are
	// silently absent from the result.
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// GetByID retrieves a single product by its ID, nil when absent.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Upsert inserts or updates products keyed by id and returns how many rows were written.
	Upsert(ctx context.Context, products []model.Product) (int, error)

	// Delete removes a product. Products referenced by an order cannot be
	// deleted and yield model.ErrProductInUse.
	Delete(ctx context.Context, id int64) error
}

// OrderRepository defines the interface for order data access operations.
// Mutating methods run inside the transaction handle they are given.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// FindByOwnerAndTotal returns the oldest order of profileID whose total
	// equals total, nil when there is none.
	FindByOwnerAndTotal(ctx context.Context, tx pgx.Tx, profileID int64, total decimal.Decimal) (*model.Order, error)

	// Create inserts order and fills in its ID and timestamps.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// ReplaceProducts sets the order's product set to exactly productIDs.
	ReplaceProducts(ctx context.Context, tx pgx.Tx, orderID int64, productIDs []int64) error

	// GetByID retrieves an order by its ID, nil when absent.
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// GetByIDTx is GetByID inside tx.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error)

	// Update writes the order's recipient, delivery, payment, total and status fields.
	Update(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateLineItems inserts the line items that do not exist yet for their
	// (order, product) pair and returns how many were inserted. Existing
	// pairs keep their quantity.
	CreateLineItems(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) (int, error)

	// UpdateStatus sets the status of an order, model.ErrOrderNotFound when absent.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.OrderStatus) error

	// ListByOwner returns the orders of a profile, newest first.
	ListByOwner(ctx context.Context, profileID int64) ([]model.Order, error)

	// ProductIDsByOrder returns the product set of each requested order.
	ProductIDsByOrder(ctx context.Context, orderIDs []int64) (map[int64][]int64, error)

	// LineItemsByOrder returns the persisted line items of each requested order.
	LineItemsByOrder(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderLineItem, error)
}
