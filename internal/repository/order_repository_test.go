package repository

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupOrderTestDB creates a test database with a seeded catalogue.
func setupOrderTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	pool, cleanup := setupTestDB(t)
	seedProducts(t, pool, testCatalog())
	return pool, cleanup
}

// inTx runs fn inside a committed transaction.
func inTx(t *testing.T, repo OrderRepository, fn func(tx pgx.Tx)) {
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	fn(tx)

	require.NoError(t, tx.Commit(ctx))
}

func createOrder(t *testing.T, repo OrderRepository, profileID int64, total decimal.Decimal) *model.Order {
	order := &model.Order{OwnerProfileID: profileID, TotalCost: total}
	inTx(t, repo, func(tx pgx.Tx) {
		require.NoError(t, repo.Create(context.Background(), tx, order))
	})
	return order
}

func TestOrderRepository_BeginTx(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)

	require.NoError(t, err)
	require.NotNil(t, tx)

	// Rollback to cleanup
	err = tx.Rollback(ctx)
	assert.NoError(t, err)
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := createOrder(t, repo, 7, decimal.NewFromInt(200))

	assert.NotZero(t, order.ID)
	assert.False(t, order.CreatedAt.IsZero())

	retrieved, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, order.ID, retrieved.ID)
	assert.Equal(t, int64(7), retrieved.OwnerProfileID)
	assert.True(t, retrieved.TotalCost.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, model.OrderStatusNew, retrieved.Status)
	assert.Empty(t, retrieved.FullName)

	missing, err := repo.GetByID(ctx, order.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderRepository_FindByOwnerAndTotal(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	first := createOrder(t, repo, 7, decimal.NewFromInt(200))
	createOrder(t, repo, 7, decimal.NewFromInt(200))
	createOrder(t, repo, 8, decimal.NewFromInt(300))

	paid := createOrder(t, repo, 9, decimal.NewFromInt(500))
	inTx(t, repo, func(tx pgx.Tx) {
		require.NoError(t, repo.UpdateStatus(ctx, tx, paid.ID, model.OrderStatusPaid))
	})
	paidOlder := createOrder(t, repo, 10, decimal.NewFromInt(500))
	inTx(t, repo, func(tx pgx.Tx) {
		require.NoError(t, repo.UpdateStatus(ctx, tx, paidOlder.ID, model.OrderStatusPaid))
	})
	unpaid := createOrder(t, repo, 10, decimal.NewFromInt(500))

	tests := []struct {
		name       string
		profileID  int64
		total      decimal.Decimal
		expectedID int64
	}{
		{name: "oldest match wins", profileID: 7, total: decimal.RequireFromString("200.00"), expectedID: first.ID},
		{name: "different owner", profileID: 8, total: decimal.NewFromInt(200)},
		{name: "different total", profileID: 7, total: decimal.NewFromInt(300)},
		{name: "paid order is skipped", profileID: 9, total: decimal.NewFromInt(500)},
		{name: "unpaid order after a paid one", profileID: 10, total: decimal.NewFromInt(500), expectedID: unpaid.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := repo.BeginTx(ctx)
			require.NoError(t, err)
			defer func() { _ = tx.Rollback(ctx) }()

			found, err := repo.FindByOwnerAndTotal(ctx, tx, tt.profileID, tt.total)
			require.NoError(t, err)

			if tt.expectedID == 0 {
				assert.Nil(t, found)
				return
			}
			require.NotNil(t, found)
			assert.Equal(t, tt.expectedID, found.ID)
		})
	}
}

func TestOrderRepository_ReplaceProducts(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := createOrder(t, repo, 7, decimal.NewFromInt(350))

	inTx(t, repo, func(tx pgx.Tx) {
		require.NoError(t, repo.ReplaceProducts(ctx, tx, order.ID, []int64{1, 2}))
	})
	inTx(t, repo, func(tx pgx.Tx) {
		require.NoError(t, repo.ReplaceProducts(ctx, tx, order.ID, []int64{2, 3}))
	})

	products, err := repo.ProductIDsByOrder(ctx, []int64{order.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, products[order.ID])

	t.Run("unknown product", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback(ctx) }()

		err = repo.ReplaceProducts(ctx, tx, order.ID, []int64{99})
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestOrderRepository_Update(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := createOrder(t, repo, 7, decimal.NewFromInt(200))

	inTx(t, repo, func(tx pgx.Tx) {
		loaded, err := repo.GetByIDTx(ctx, tx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)

		loaded.FullName = "Ada Lovelace"
		loaded.Phone = "+441234"
		loaded.Email = "ada@example.com"
		loaded.DeliveryType = "standard"
		loaded.PaymentType = "online"
		loaded.City = "London"
		loaded.Address = "12 St James's Square"
		loaded.TotalCost = decimal.NewFromInt(400)
		loaded.Status = model.OrderStatusAwaitingPayment
		require.NoError(t, repo.Update(ctx, tx, loaded))
	})

	retrieved, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, "Ada Lovelace", retrieved.FullName)
	assert.Equal(t, "London", retrieved.City)
	assert.Equal(t, model.OrderStatusAwaitingPayment, retrieved.Status)
	assert.True(t, retrieved.TotalCost.Equal(decimal.NewFromInt(400)))
	assert.False(t, retrieved.UpdatedAt.Before(retrieved.CreatedAt))

	t.Run("missing order", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback(ctx) }()

		err = repo.Update(ctx, tx, &model.Order{ID: order.ID + 100})
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

func TestOrderRepository_CreateLineItems(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := createOrder(t, repo, 7, decimal.NewFromInt(450))

	items := []model.OrderLineItem{
		{OrderID: order.ID, ProductID: 1, Quantity: 2},
		{OrderID: order.ID, ProductID: 2, Quantity: 1},
	}

	inTx(t, repo, func(tx pgx.Tx) {
		created, err := repo.CreateLineItems(ctx, tx, items)
		require.NoError(t, err)
		assert.Equal(t, 2, created)
	})

	// A repeated finalisation keeps the original quantities.
	inTx(t, repo, func(tx pgx.Tx) {
		created, err := repo.CreateLineItems(ctx, tx, []model.OrderLineItem{
			{OrderID: order.ID, ProductID: 1, Quantity: 5},
			{OrderID: order.ID, ProductID: 3, Quantity: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, created)
	})

	lineItems, err := repo.LineItemsByOrder(ctx, []int64{order.ID})
	require.NoError(t, err)
	assert.Equal(t, []model.OrderLineItem{
		{OrderID: order.ID, ProductID: 1, Quantity: 2},
		{OrderID: order.ID, ProductID: 2, Quantity: 1},
		{OrderID: order.ID, ProductID: 3, Quantity: 1},
	}, lineItems[order.ID])

	t.Run("unknown product", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback(ctx) }()

		_, err = repo.CreateLineItems(ctx, tx, []model.OrderLineItem{{OrderID: order.ID, ProductID: 99, Quantity: 1}})
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("empty input", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback(ctx) }()

		created, err := repo.CreateLineItems(ctx, tx, nil)
		require.NoError(t, err)
		assert.Zero(t, created)
	})
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	order := createOrder(t, repo, 7, decimal.NewFromInt(200))

	for range 2 {
		inTx(t, repo, func(tx pgx.Tx) {
			require.NoError(t, repo.UpdateStatus(ctx, tx, order.ID, model.OrderStatusPaid))
		})
	}

	retrieved, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, model.OrderStatusPaid, retrieved.Status)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	err = repo.UpdateStatus(ctx, tx, order.ID+100, model.OrderStatusPaid)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderRepository_ListByOwner(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	older := createOrder(t, repo, 7, decimal.NewFromInt(100))
	newer := createOrder(t, repo, 7, decimal.NewFromInt(250))
	createOrder(t, repo, 8, decimal.NewFromInt(700))

	orders, err := repo.ListByOwner(ctx, 7)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)

	orders, err = repo.ListByOwner(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderRepository_TransactionRollback(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	order := &model.Order{OwnerProfileID: 7, TotalCost: decimal.NewFromInt(100)}
	require.NoError(t, repo.Create(ctx, tx, order))

	require.NoError(t, tx.Rollback(ctx))

	// Verify order was not persisted
	retrieved, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, retrieved)
}

func TestOrderRepository_ErrorPaths(t *testing.T) {
	pool, cleanup := setupOrderTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	order := createOrder(t, repo, 7, decimal.NewFromInt(100))

	// Close the pool to simulate database errors
	pool.Close()
	ctx := context.Background()

	t.Run("BeginTx with closed pool", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.Error(t, err)
		assert.Nil(t, tx)
	})

	t.Run("GetByID with closed pool", func(t *testing.T) {
		retrieved, err := repo.GetByID(ctx, order.ID)
		require.Error(t, err)
		assert.Nil(t, retrieved)
	})

	t.Run("ListByOwner with closed pool", func(t *testing.T) {
		orders, err := repo.ListByOwner(ctx, 7)
		require.Error(t, err)
		assert.Nil(t, orders)
	})

	t.Run("LineItemsByOrder with closed pool", func(t *testing.T) {
		items, err := repo.LineItemsByOrder(ctx, []int64{order.ID})
		require.Error(t, err)
		assert.Nil(t, items)
	})
}
