package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
)

var ErrBadQuantity = errors.New("quantity must be a positive integer")

// SnapshotStore persists the serialized line items of one session's cart.
// Load returns (nil, nil) when no snapshot exists and an error when the
// stored payload cannot be decoded.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, items []LineItem) error
	Load(ctx context.Context, sessionID string) ([]LineItem, error)
	Delete(ctx context.Context, sessionID string) error
}

// Cart holds what one shopper session intends to buy, ordered by insertion.
// Every mutation is written through to the SnapshotStore; a failed write is
// logged and the cart keeps operating in memory for the rest of the session.
type Cart struct {
	sessionID string
	store     SnapshotStore
	logger    *log.Logger

	loadOnce sync.Once

	mu    sync.Mutex
	items []LineItem
}

func New(sessionID string, store SnapshotStore, logger *log.Logger) *Cart {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Cart{sessionID: sessionID, store: store, logger: logger}
}

// Rehydrate loads the persisted snapshot, once per Cart instance; concurrent
// callers block until the load completes, later calls are no-ops. A corrupt or
// unreadable snapshot is discarded and the cart starts empty; the caller never
// sees the failure.
func (c *Cart) Rehydrate(ctx context.Context) {
	c.loadOnce.Do(func() {
		items, err := c.store.Load(ctx, c.sessionID)
		if err != nil {
			c.logger.Printf("discarding unreadable cart snapshot session=%s: %v", c.sessionID, err)
			if err := c.store.Delete(ctx, c.sessionID); err != nil {
				c.logger.Printf("delete cart snapshot session=%s: %v", c.sessionID, err)
			}
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		c.items = items
	})
}

// AddItem merges quantity into an existing line for the same product, or
// appends a new line. Repeated adds accumulate.
func (c *Cart) AddItem(ctx context.Context, snap ProductSnapshot, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("add item %s: %w", snap.ProductID, ErrBadQuantity)
	}

	c.mu.Lock()
	merged := false
	for i := range c.items {
		if c.items[i].ProductID == snap.ProductID {
			c.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.items = append(c.items, LineItem{
			ProductID: snap.ProductID,
			Name:      snap.Name,
			UnitPrice: snap.UnitPrice,
			Quantity:  quantity,
			ImageURL:  snap.ImageURL,
		})
	}
	items := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, items)
	return nil
}

// SetQuantity replaces the line's quantity outright. Zero or negative removes
// the line.
func (c *Cart) SetQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(ctx, productID)
		return
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = quantity
			break
		}
	}
	items := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, items)
}

// RemoveItem deletes the line if present. Absent is a no-op, not an error.
func (c *Cart) RemoveItem(ctx context.Context, productID string) {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	items := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, items)
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()

	c.persist(ctx, nil)
}

// Totals recomputes count and total from the current line items.
func (c *Cart) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()

	var t Totals
	for _, it := range c.items {
		t.Count += it.Quantity
		t.Total += it.UnitPrice * float64(it.Quantity)
	}
	return t
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Cart) SessionID() string {
	return c.sessionID
}

func (c *Cart) snapshotLocked() []LineItem {
	if len(c.items) == 0 {
		return nil
	}
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// persist writes the snapshot through to the store. Failures are logged only:
// a storage hiccup must not surface to the shopper mid-session.
func (c *Cart) persist(ctx context.Context, items []LineItem) {
	if err := c.store.Save(ctx, c.sessionID, items); err != nil {
		c.logger.Printf("persist cart session=%s: %v", c.sessionID, err)
	}
}
