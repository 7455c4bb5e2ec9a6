package cart

import (
	"context"
	"log"
	"sync"
)

// Manager hands out one Cart per session, rehydrating from the snapshot store
// on first access. Carts are kept live for the process lifetime; the snapshot
// store is what survives restarts.
type Manager struct {
	store  SnapshotStore
	logger *log.Logger

	mu    sync.Mutex
	carts map[string]*Cart
}

func NewManager(store SnapshotStore, logger *log.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logger,
		carts:  make(map[string]*Cart),
	}
}

func (m *Manager) Get(ctx context.Context, sessionID string) *Cart {
	m.mu.Lock()
	c, ok := m.carts[sessionID]
	if !ok {
		c = New(sessionID, m.store, m.logger)
		m.carts[sessionID] = c
	}
	m.mu.Unlock()

	// Rehydrate is once-per-cart; a concurrent Get for a brand-new session
	// blocks here until the snapshot load is done instead of seeing an empty
	// cart.
	c.Rehydrate(ctx)
	return c
}
