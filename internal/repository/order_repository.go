package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const orderColumns = `id, created_at, updated_at, profile_id, full_name, phone, email,
		delivery_type, payment_type, total_cost, status, city, address`

func scanOrder(row pgx.Row, order *model.Order) error {
	return row.Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.OwnerProfileID,
		&order.FullName,
		&order.Phone,
		&order.Email,
		&order.DeliveryType,
		&order.PaymentType,
		&order.TotalCost,
		&order.Status,
		&order.City,
		&order.Address,
	)
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// FindByOwnerAndTotal returns the oldest unpaid order of the profile with the
// given total.
func (r *orderRepository) FindByOwnerAndTotal(ctx context.Context, tx pgx.Tx, profileID int64, total decimal.Decimal) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE profile_id = $1 AND total_cost = $2 AND status <> $3
		ORDER BY id
		LIMIT 1
	`

	var order model.Order
	if err := scanOrder(tx.QueryRow(ctx, query, profileID, total, model.OrderStatusPaid), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().
			Err(err).
			Int64("profile_id", profileID).
			Str("total_cost", total.StringFixed(2)).
			Msg("failed to query order by owner and total")
		return nil, fmt.Errorf("failed to query order by owner and total: %w", err)
	}

	return &order, nil
}

// Create inserts a new order within the provided transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (profile_id, full_name, phone, email, delivery_type,
			payment_type, total_cost, status, city, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		order.OwnerProfileID,
		order.FullName,
		order.Phone,
		order.Email,
		order.DeliveryType,
		order.PaymentType,
		order.TotalCost,
		order.Status,
		order.City,
		order.Address,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("profile_id", order.OwnerProfileID).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Int64("order_id", order.ID).
		Int64("profile_id", order.OwnerProfileID).
		Msg("order created successfully")

	return nil
}

// ReplaceProducts sets the product set of an order within the provided transaction.
func (r *orderRepository) ReplaceProducts(ctx context.Context, tx pgx.Tx, orderID int64, productIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM order_products WHERE order_id = $1`, orderID); err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to clear order products")
		return fmt.Errorf("failed to clear order products: %w", err)
	}

	if len(productIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_products (order_id, product_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`

	if _, err := tx.Exec(ctx, query, orderID, productIDs); err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrProductNotFound
		}
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to link order products")
		return fmt.Errorf("failed to link order products: %w", err)
	}

	r.logger.Debug().
		Int64("order_id", orderID).
		Int("count", len(productIDs)).
		Msg("order products replaced")

	return nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.getByID(ctx, r.pool, id)
}

// GetByIDTx retrieves an order by its ID within the provided transaction.
func (r *orderRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error) {
	return r.getByID(ctx, tx, id)
}

func (r *orderRepository) getByID(ctx context.Context, q rowQuerier, id int64) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	if err := scanOrder(q.QueryRow(ctx, query, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("order_id", id).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return &order, nil
}

// Update writes the mutable fields of an order within the provided transaction.
func (r *orderRepository) Update(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET full_name = $2,
		    phone = $3,
		    email = $4,
		    delivery_type = $5,
		    payment_type = $6,
		    total_cost = $7,
		    status = $8,
		    city = $9,
		    address = $10,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := tx.QueryRow(ctx, query,
		order.ID,
		order.FullName,
		order.Phone,
		order.Email,
		order.DeliveryType,
		order.PaymentType,
		order.TotalCost,
		order.Status,
		order.City,
		order.Address,
	).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrOrderNotFound
		}
		r.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}

// CreateLineItems inserts line items that are not yet recorded for their order.
func (r *orderRepository) CreateLineItems(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO order_line_items (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id, product_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.OrderID, item.ProductID, item.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	created := 0
	for i := range items {
		tag, err := results.Exec()
		if err != nil {
			if isForeignKeyViolation(err) {
				return created, model.ErrProductNotFound
			}
			r.logger.Error().
				Err(err).
				Int64("order_id", items[i].OrderID).
				Int64("product_id", items[i].ProductID).
				Msg("failed to create order line item")
			return created, fmt.Errorf("failed to create order line item: %w", err)
		}
		created += int(tag.RowsAffected())
	}

	r.logger.Debug().
		Int("requested", len(items)).
		Int("created", created).
		Msg("order line items created")

	return created, nil
}

// UpdateStatus sets the status of an order within the provided transaction.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.OrderStatus) error {
	tag, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	r.logger.Debug().
		Int64("order_id", id).
		Str("status", string(status)).
		Msg("order status updated")

	return nil
}

// ListByOwner returns every order of a profile, newest first.
func (r *orderRepository) ListByOwner(ctx context.Context, profileID int64) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE profile_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		r.logger.Error().Err(err).Int64("profile_id", profileID).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		var order model.Order
		if err := scanOrder(rows, &order); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// ProductIDsByOrder returns the product set of each requested order.
func (r *orderRepository) ProductIDsByOrder(ctx context.Context, orderIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT order_id, product_id
		FROM order_products
		WHERE order_id = ANY($1)
		ORDER BY order_id, product_id
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order products")
		return nil, fmt.Errorf("failed to query order products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID, productID int64
		if err := rows.Scan(&orderID, &productID); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order product row")
			return nil, fmt.Errorf("failed to scan order product: %w", err)
		}
		result[orderID] = append(result[orderID], productID)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order product rows")
		return nil, fmt.Errorf("error iterating order products: %w", err)
	}

	return result, nil
}

// LineItemsByOrder returns the persisted line items of each requested order.
func (r *orderRepository) LineItemsByOrder(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderLineItem, error) {
	result := make(map[int64][]model.OrderLineItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT order_id, product_id, quantity
		FROM order_line_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order line items")
		return nil, fmt.Errorf("failed to query order line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderLineItem
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line item row")
			return nil, fmt.Errorf("failed to scan order line item: %w", err)
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line item rows")
		return nil, fmt.Errorf("error iterating order line items: %w", err)
	}

	return result, nil
}
