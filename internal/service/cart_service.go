package service

import (
	"context"
	"fmt"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/money"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	carts    cart.Store
	products ProductService
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(carts cart.Store, products ProductService, logger zerolog.Logger) CartService {
	return &cartService{
		carts:    carts,
		products: products,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// Get renders the cart of a session.
func (s *cartService) Get(ctx context.Context, sessionID string) (*model.BasketView, error) {
	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return s.view(ctx, c)
}

// Add snapshots the current catalogue price on first insert.
func (s *cartService) Add(ctx context.Context, sessionID string, productID int64, count int) (*model.BasketView, error) {
	if count <= 0 || count > model.MaxQuantity {
		s.logger.Warn().
			Int64("product_id", productID).
			Int("count", count).
			Msg("invalid quantity")
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if err := c.Add(product.ID, count, product.Price); err != nil {
		return nil, err
	}

	if err := s.carts.Save(ctx, sessionID, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	s.logger.Debug().
		Int64("product_id", productID).
		Int("count", count).
		Int("quantity", c.Quantity(productID)).
		Msg("product added to cart")

	return s.view(ctx, c)
}

// Remove applies the cart's removal rule; count zero drops the entry.
func (s *cartService) Remove(ctx context.Context, sessionID string, productID int64, count int) (*model.BasketView, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	c.Remove(productID, count)

	if err := s.carts.Save(ctx, sessionID, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	s.logger.Debug().
		Int64("product_id", productID).
		Int("count", count).
		Int("quantity", c.Quantity(productID)).
		Msg("product removed from cart")

	return s.view(ctx, c)
}

// view joins cart entries with live catalogue titles and availability.
// Prices stay the stored snapshots.
func (s *cartService) view(ctx context.Context, c *cart.Cart) (*model.BasketView, error) {
	products, err := s.products.FindProductsByID(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	view := &model.BasketView{
		Items:      make([]model.BasketItem, 0, c.Len()),
		TotalCount: c.TotalCount(),
		TotalPrice: money.Round(c.TotalPrice()),
	}
	for id, item := range c.All() {
		p := byID[id]
		view.Items = append(view.Items, model.BasketItem{
			ID:         id,
			Title:      p.Title,
			Available:  p.Available,
			Price:      item.Price,
			Count:      item.Quantity,
			TotalPrice: money.LineTotal(item.Price, item.Quantity),
		})
	}

	return view, nil
}
