package service

import (
	"context"
	"fmt"
	"slices"

	"storefront/internal/cart"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/money"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo repository.OrderRepository
	products  ProductService
	carts     cart.Store
	matcher   OrderMatcher
	fees      model.DeliveryFees
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewCheckoutService creates a new checkout service. A nil matcher falls
// back to matching on owner and total cost.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	products ProductService,
	carts cart.Store,
	matcher OrderMatcher,
	fees model.DeliveryFees,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CheckoutService {
	if matcher == nil {
		matcher = NewTotalCostMatcher(orderRepo)
	}
	return &checkoutService{
		orderRepo: orderRepo,
		products:  products,
		carts:     carts,
		matcher:   matcher,
		fees:      fees,
		metrics:   m,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// SubmitCart resolves the submitted products, then finds or creates the
// order for the cart total and resets its product set.
func (s *checkoutService) SubmitCart(ctx context.Context, profileID int64, sessionID string, lines []model.SubmitCartLine) (*model.SubmitResult, error) {
	if len(lines) == 0 {
		return nil, model.ErrEmptyOrder
	}

	requested := make([]int64, 0, len(lines))
	for i, line := range lines {
		if line.Count <= 0 || line.Count > model.MaxQuantity {
			s.logger.Warn().
				Int("line_index", i).
				Int64("product_id", line.ProductID).
				Int("count", line.Count).
				Msg("invalid quantity")
			return nil, model.ErrInvalidQuantity
		}
		if !slices.Contains(requested, line.ProductID) {
			requested = append(requested, line.ProductID)
		}
	}

	products, err := s.products.FindProductsByID(ctx, requested)
	if err != nil {
		return nil, err
	}

	resolved := make(map[int64]bool, len(products))
	for _, p := range products {
		resolved[p.ID] = true
	}

	productIDs := make([]int64, 0, len(resolved))
	var dropped []int64
	for _, id := range requested {
		if resolved[id] {
			productIDs = append(productIDs, id)
		} else {
			dropped = append(dropped, id)
		}
	}

	if len(productIDs) == 0 {
		s.logger.Warn().Ints64("product_ids", requested).Msg("no submitted product exists")
		return nil, model.ErrProductNotFound
	}
	if len(dropped) > 0 {
		s.logger.Warn().Ints64("product_ids", dropped).Msg("dropping unknown products from submission")
	}

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	total := submissionTotal(c, lines, resolved)

	// Start transaction
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to submit cart: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, created, err := s.matcher.Match(ctx, tx, profileID, total)
	if err != nil {
		s.logger.Error().Err(err).Int64("profile_id", profileID).Msg("failed to match order")
		return nil, fmt.Errorf("failed to submit cart: %w", err)
	}

	if err = s.orderRepo.ReplaceProducts(ctx, tx, order.ID, productIDs); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to set order products")
		return nil, fmt.Errorf("failed to submit cart: %w", err)
	}

	// Commit transaction
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to submit cart: %w", err)
	}

	s.metrics.IncCheckout(metrics.EventSubmitted)
	s.logger.Info().
		Int64("order_id", order.ID).
		Int64("profile_id", profileID).
		Bool("created", created).
		Str("total_cost", total.StringFixed(money.Scale)).
		Int("product_count", len(productIDs)).
		Msg("cart submitted")

	return &model.SubmitResult{OrderID: order.ID, DroppedProductIDs: dropped}, nil
}

// submissionTotal is the session cart total. A submission without a stored
// cart is priced from its own lines.
func submissionTotal(c *cart.Cart, lines []model.SubmitCartLine, resolved map[int64]bool) decimal.Decimal {
	if c.Len() > 0 {
		return money.Round(c.TotalPrice())
	}

	amounts := make([]decimal.Decimal, 0, len(lines))
	for _, line := range lines {
		if resolved[line.ProductID] {
			amounts = append(amounts, money.LineTotal(line.Price, line.Count))
		}
	}
	return money.Round(money.Sum(amounts...))
}

// FinalizeOrder updates the order and its line items in one transaction and
// clears the session cart once it has committed.
func (s *checkoutService) FinalizeOrder(ctx context.Context, profileID, orderID int64, sessionID string, req *model.FinalizeOrderRequest) (*model.OrderDetail, error) {
	if req == nil {
		return nil, fmt.Errorf("finalize request is nil")
	}

	// Start transaction
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Concurrent finalisations of one order are not serialised here.
	order, err := s.orderRepo.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize order: %w", err)
	}
	if !s.ownedBy(order, profileID) {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if !order.Status.CanTransitionTo(model.OrderStatusAwaitingPayment) {
		s.logger.Warn().
			Int64("order_id", orderID).
			Str("status", string(order.Status)).
			Msg("order cannot be finalized")
		err = model.ErrInvalidTransition
		return nil, err
	}

	// The surcharge is applied once, on the first finalisation.
	if order.Status == model.OrderStatusNew {
		order.TotalCost = s.fees.Apply(order.TotalCost, req.DeliveryType)
	}
	order.FullName = req.FullName
	order.Phone = req.Phone
	order.Email = req.Email
	order.DeliveryType = req.DeliveryType
	order.PaymentType = req.PaymentType
	order.City = req.City
	order.Address = req.Address
	order.Status = model.OrderStatusAwaitingPayment

	if err = s.orderRepo.Update(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to update order")
		return nil, fmt.Errorf("failed to finalize order: %w", err)
	}

	items := make([]model.OrderLineItem, 0, len(req.Products))
	for _, p := range req.Products {
		if p.Count <= 0 || p.Count > model.MaxQuantity {
			err = model.ErrInvalidQuantity
			return nil, err
		}
		items = append(items, model.OrderLineItem{OrderID: orderID, ProductID: p.ProductID, Quantity: p.Count})
	}

	created, err := s.orderRepo.CreateLineItems(ctx, tx, items)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("order_id", orderID).
			Int("item_count", len(items)).
			Msg("failed to create order line items")
		return nil, fmt.Errorf("failed to finalize order: %w", err)
	}

	// Commit transaction
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to finalize order: %w", err)
	}

	if clearErr := s.carts.Clear(ctx, sessionID); clearErr != nil {
		s.logger.Warn().Err(clearErr).Int64("order_id", orderID).Msg("failed to clear cart after finalizing order")
	}

	s.metrics.IncCheckout(metrics.EventFinalized)
	s.logger.Info().
		Int64("order_id", orderID).
		Str("delivery_type", order.DeliveryType).
		Str("total_cost", order.TotalCost.StringFixed(money.Scale)).
		Int("line_items_created", created).
		Msg("order finalized")

	details, buildErr := s.buildDetails(ctx, []model.Order{*order}, nil)
	if buildErr != nil {
		s.logger.Warn().Err(buildErr).Int64("order_id", orderID).Msg("order finalized but its products could not be loaded")
		detail := newOrderDetail(*order)
		return &detail, nil
	}
	return &details[0], nil
}

// MarkPaid sets the order status to Paid. Paying an already paid order succeeds.
func (s *checkoutService) MarkPaid(ctx context.Context, profileID, orderID int64) error {
	// Start transaction
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	if !s.ownedBy(order, profileID) {
		err = model.ErrOrderNotFound
		return err
	}

	if err = s.orderRepo.UpdateStatus(ctx, tx, orderID, model.OrderStatusPaid); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to commit transaction")
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	s.metrics.IncCheckout(metrics.EventPaid)
	s.logger.Info().Int64("order_id", orderID).Msg("order marked paid")

	return nil
}

// GetOrderDetail renders one order. Before line items exist, quantities come
// from the session cart.
func (s *checkoutService) GetOrderDetail(ctx context.Context, profileID, orderID int64, sessionID string) (*model.OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if !s.ownedBy(order, profileID) {
		return nil, model.ErrOrderNotFound
	}

	var c *cart.Cart
	if sessionID != "" {
		if c, err = s.carts.Load(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
	}

	details, err := s.buildDetails(ctx, []model.Order{*order}, c)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ownedBy reports whether order exists and belongs to profileID. Orders of
// other profiles are indistinguishable from missing ones.
func (s *checkoutService) ownedBy(order *model.Order, profileID int64) bool {
	if order == nil {
		return false
	}
	if order.OwnerProfileID != profileID {
		s.logger.Warn().
			Int64("order_id", order.ID).
			Int64("profile_id", profileID).
			Msg("order belongs to another profile")
		return false
	}
	return true
}

// ListOrders renders every order of a profile from its persisted line items.
func (s *checkoutService) ListOrders(ctx context.Context, profileID int64) ([]model.OrderDetail, error) {
	orders, err := s.orderRepo.ListByOwner(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return s.buildDetails(ctx, orders, nil)
}

// buildDetails renders orders with their products. Quantities come from the
// order's line items when it has any, otherwise from c, otherwise zero.
func (s *checkoutService) buildDetails(ctx context.Context, orders []model.Order, c *cart.Cart) ([]model.OrderDetail, error) {
	details := make([]model.OrderDetail, 0, len(orders))
	if len(orders) == 0 {
		return details, nil
	}

	orderIDs := make([]int64, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}

	productSets, err := s.orderRepo.ProductIDsByOrder(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get order products: %w", err)
	}
	lineItems, err := s.orderRepo.LineItemsByOrder(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get order line items: %w", err)
	}

	productIDsByOrder := make(map[int64][]int64, len(orders))
	var allIDs []int64
	for _, id := range orderIDs {
		ids := slices.Clone(productSets[id])
		for _, item := range lineItems[id] {
			ids = append(ids, item.ProductID)
		}
		slices.Sort(ids)
		ids = slices.Compact(ids)
		productIDsByOrder[id] = ids
		allIDs = append(allIDs, ids...)
	}
	slices.Sort(allIDs)
	allIDs = slices.Compact(allIDs)

	products, err := s.products.FindProductsByID(ctx, allIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, o := range orders {
		counts := make(map[int64]int, len(lineItems[o.ID]))
		for _, item := range lineItems[o.ID] {
			counts[item.ProductID] = item.Quantity
		}
		fromCart := len(lineItems[o.ID]) == 0 && c != nil

		detail := newOrderDetail(o)
		for _, pid := range productIDsByOrder[o.ID] {
			p, ok := byID[pid]
			if !ok {
				continue
			}
			count := counts[pid]
			if fromCart {
				count = c.Quantity(pid)
			}
			detail.Products = append(detail.Products, model.OrderProduct{
				ID:        p.ID,
				Title:     p.Title,
				Price:     p.Price,
				Available: p.Available,
				Count:     count,
			})
		}
		details = append(details, detail)
	}

	return details, nil
}

func newOrderDetail(o model.Order) model.OrderDetail {
	return model.OrderDetail{
		ID:           o.ID,
		CreatedAt:    o.CreatedAt,
		FullName:     o.FullName,
		Email:        o.Email,
		Phone:        o.Phone,
		DeliveryType: o.DeliveryType,
		PaymentType:  o.PaymentType,
		TotalCost:    o.TotalCost,
		Status:       o.Status,
		City:         o.City,
		Address:      o.Address,
		Products:     []model.OrderProduct{},
	}
}
