package cart

import (
	"context"
	"errors"
)

// Store persists carts per session. Load never fails for an unknown session;
// it returns an empty cart, which is only written once it is saved.
//
// Stores do not serialise concurrent writers for the same session: two
// requests racing on one cart can lose an update.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// ErrNoSession is returned when a store is called without a session id.
var ErrNoSession = errors.New("cart: session id is required")
