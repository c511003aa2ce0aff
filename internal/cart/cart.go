// Package cart implements the session-scoped shopping cart: its data shape,
// the add/remove rules and the stores that persist it per session.
package cart

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strconv"

	"storefront/internal/model"
	"storefront/internal/money"

	"github.com/shopspring/decimal"
)

// Item is one cart entry. Price is the unit price captured when the product
// was first added and is not refreshed from the catalogue afterwards.
type Item struct {
	Quantity int             `json:"count"`
	Price    decimal.Decimal `json:"price"`
}

// Cart maps product ids to entries. The zero value is an empty cart.
type Cart struct {
	items map[int64]Item
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{items: make(map[int64]Item)}
}

// Add puts quantity units of productID in the cart. An existing entry keeps
// its original price and has its quantity incremented. The resulting
// quantity may not exceed model.MaxQuantity.
func (c *Cart) Add(productID int64, quantity int, unitPrice decimal.Decimal) error {
	if quantity <= 0 || quantity > model.MaxQuantity {
		return model.ErrInvalidQuantity
	}
	if c.items == nil {
		c.items = make(map[int64]Item)
	}

	item, ok := c.items[productID]
	if !ok {
		item = Item{Price: unitPrice}
	}
	if item.Quantity > model.MaxQuantity-quantity {
		return model.ErrInvalidQuantity
	}
	item.Quantity += quantity
	c.items[productID] = item
	return nil
}

// Remove takes productID out of the cart. Only a request for exactly one
// unit on an entry holding more than one decrements; any other quantity,
// including zero for "not given", drops the entry.
func (c *Cart) Remove(productID int64, quantity int) {
	item, ok := c.items[productID]
	if !ok {
		return
	}
	if quantity == 1 && item.Quantity > 1 {
		item.Quantity--
		c.items[productID] = item
		return
	}
	delete(c.items, productID)
}

// Quantity returns the stored quantity for productID, zero when absent.
func (c *Cart) Quantity(productID int64) int {
	return c.items[productID].Quantity
}

// Len returns the number of distinct products.
func (c *Cart) Len() int {
	return len(c.items)
}

// ProductIDs returns the product ids in ascending order.
func (c *Cart) ProductIDs() []int64 {
	return slices.Sorted(maps.Keys(c.items))
}

// All yields entries in ascending product id order.
func (c *Cart) All() iter.Seq2[int64, Item] {
	return func(yield func(int64, Item) bool) {
		for _, id := range c.ProductIDs() {
			if !yield(id, c.items[id]) {
				return
			}
		}
	}
}

// TotalCount is the sum of all quantities.
func (c *Cart) TotalCount() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of price times quantity over all entries.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(money.LineTotal(item.Price, item.Quantity))
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	clear(c.items)
}

// MarshalJSON encodes the cart keyed by product id strings:
// {"7": {"count": 2, "price": 100}}.
func (c *Cart) MarshalJSON() ([]byte, error) {
	out := make(map[string]Item, len(c.items))
	for id, item := range c.items {
		out[strconv.FormatInt(id, 10)] = item
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the layout written by MarshalJSON. Entries with a
// quantity outside 1..model.MaxQuantity are discarded.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw map[string]Item
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.items = make(map[int64]Item, len(raw))
	for key, item := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q in cart: %w", key, err)
		}
		if item.Quantity <= 0 || item.Quantity > model.MaxQuantity {
			continue
		}
		c.items[id] = item
	}
	return nil
}
