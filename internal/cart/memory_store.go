package cart

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps carts in process memory. It suits single-instance and
// development deployments; carts are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

// NewMemoryStore creates an empty in-memory cart store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

// Load returns a copy of the cart for sessionID, or an empty cart.
func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	s.mu.RLock()
	data, ok := s.carts[sessionID]
	s.mu.RUnlock()

	c := New()
	if !ok {
		return c, nil
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Save stores a snapshot of c so later mutations by the caller do not leak in.
func (s *MemoryStore) Save(ctx context.Context, sessionID string, c *Cart) error {
	if sessionID == "" {
		return ErrNoSession
	}
	if c == nil || c.Len() == 0 {
		return s.Clear(ctx, sessionID)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.carts[sessionID] = data
	s.mu.Unlock()
	return nil
}

// Clear drops the cart for sessionID.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}

	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
	return nil
}
