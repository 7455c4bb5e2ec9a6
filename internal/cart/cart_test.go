package cart

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

type fakeStore struct {
	saved   map[string][]LineItem
	loadErr error
	saveErr error

	saves   int
	deletes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string][]LineItem)}
}

func (f *fakeStore) Save(ctx context.Context, sessionID string, items []LineItem) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := make([]LineItem, len(items))
	copy(cp, items)
	f.saved[sessionID] = cp
	return nil
}

func (f *fakeStore) Load(ctx context.Context, sessionID string) ([]LineItem, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.saved[sessionID], nil
}

func (f *fakeStore) Delete(ctx context.Context, sessionID string) error {
	f.deletes++
	delete(f.saved, sessionID)
	return nil
}

func snapshot(id string, price float64) ProductSnapshot {
	return ProductSnapshot{ProductID: id, Name: "product " + id, UnitPrice: price}
}

func TestAddItemMergesQuantities(t *testing.T) {
	ctx := context.Background()
	c := New("s1", newFakeStore(), nil)

	for _, q := range []int{1, 2, 4} {
		if err := c.AddItem(ctx, snapshot("p1", 10), q); err != nil {
			t.Fatalf("add item: %v", err)
		}
	}

	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(items))
	}
	if items[0].Quantity != 7 {
		t.Fatalf("expected accumulated quantity 7, got %d", items[0].Quantity)
	}
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	c := New("s1", store, nil)

	for _, q := range []int{0, -3} {
		if err := c.AddItem(ctx, snapshot("p1", 10), q); !errors.Is(err, ErrBadQuantity) {
			t.Fatalf("quantity %d: expected ErrBadQuantity, got %v", q, err)
		}
	}
	if store.saves != 0 {
		t.Fatalf("rejected add must not persist, saves=%d", store.saves)
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()
	c := New("s1", newFakeStore(), nil)

	for _, id := range []string{"p3", "p1", "p2"} {
		if err := c.AddItem(ctx, snapshot(id, 1), 1); err != nil {
			t.Fatalf("add item: %v", err)
		}
	}
	// merging must not reorder
	if err := c.AddItem(ctx, snapshot("p3", 1), 1); err != nil {
		t.Fatalf("add item: %v", err)
	}

	var got []string
	for _, it := range c.Items() {
		got = append(got, it.ProductID)
	}
	want := []string{"p3", "p1", "p2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order mismatch: got %v want %v", got, want)
	}
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()

	build := func() *Cart {
		c := New("s1", newFakeStore(), nil)
		_ = c.AddItem(ctx, snapshot("p1", 10), 2)
		_ = c.AddItem(ctx, snapshot("p2", 5), 3)
		return c
	}

	removed := build()
	removed.RemoveItem(ctx, "p2")

	zeroed := build()
	zeroed.SetQuantity(ctx, "p2", 0)

	if !reflect.DeepEqual(removed.Items(), zeroed.Items()) {
		t.Fatalf("setQuantity(0) and removeItem diverge:\n%+v\n%+v", removed.Items(), zeroed.Items())
	}
	if got := zeroed.Totals().Count; got != 2 {
		t.Fatalf("count should drop by the removed line's quantity, got %d", got)
	}
}

func TestSetQuantityReplacesOutright(t *testing.T) {
	ctx := context.Background()
	c := New("s1", newFakeStore(), nil)
	_ = c.AddItem(ctx, snapshot("p1", 10), 5)

	c.SetQuantity(ctx, "p1", 2)

	if got := c.Items()[0].Quantity; got != 2 {
		t.Fatalf("expected quantity replaced to 2, got %d", got)
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	c := New("s1", newFakeStore(), nil)
	_ = c.AddItem(ctx, snapshot("p1", 10), 1)

	c.RemoveItem(ctx, "nope")

	if len(c.Items()) != 1 {
		t.Fatalf("removing an absent product must not change the cart")
	}
}

func TestTotalsRecomputedAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	c := New("s1", newFakeStore(), nil)

	_ = c.AddItem(ctx, snapshot("p1", 10), 2)
	_ = c.AddItem(ctx, snapshot("p2", 5), 1)

	if got := c.Totals(); got.Count != 3 || math.Abs(got.Total-25) > 1e-9 {
		t.Fatalf("totals after add: %+v", got)
	}

	c.SetQuantity(ctx, "p1", 1)
	if got := c.Totals(); got.Count != 2 || math.Abs(got.Total-15) > 1e-9 {
		t.Fatalf("totals after setQuantity: %+v", got)
	}

	c.RemoveItem(ctx, "p2")
	if got := c.Totals(); got.Count != 1 || math.Abs(got.Total-10) > 1e-9 {
		t.Fatalf("totals after remove: %+v", got)
	}

	c.Clear(ctx)
	if got := c.Totals(); got.Count != 0 || got.Total != 0 {
		t.Fatalf("totals after clear: %+v", got)
	}
}

func TestEveryMutationWritesThrough(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	c := New("s1", store, nil)

	_ = c.AddItem(ctx, snapshot("p1", 10), 1)
	c.SetQuantity(ctx, "p1", 3)
	c.RemoveItem(ctx, "p1")
	c.Clear(ctx)

	if store.saves != 4 {
		t.Fatalf("expected 4 write-throughs, got %d", store.saves)
	}
}

func TestRehydrateRestoresItems(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	first := New("s1", store, nil)
	_ = first.AddItem(ctx, snapshot("p1", 10), 2)

	second := New("s1", store, nil)
	second.Rehydrate(ctx)

	if !reflect.DeepEqual(first.Items(), second.Items()) {
		t.Fatalf("rehydrated cart differs:\n%+v\n%+v", first.Items(), second.Items())
	}
}

func TestRehydrateDiscardsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.saved["s1"] = []LineItem{{ProductID: "stale", Quantity: 1}}
	store.loadErr = errors.New("decode cart snapshot: unexpected end of JSON input")

	c := New("s1", store, nil)
	c.Rehydrate(ctx)

	if len(c.Items()) != 0 {
		t.Fatalf("corrupt snapshot must fall back to an empty cart")
	}
	if store.deletes != 1 {
		t.Fatalf("corrupt snapshot must be discarded, deletes=%d", store.deletes)
	}
}

func TestPersistFailureKeepsCartUsable(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.saveErr = errors.New("storage quota exceeded")

	c := New("s1", store, nil)
	if err := c.AddItem(ctx, snapshot("p1", 10), 2); err != nil {
		t.Fatalf("persist failure must not surface: %v", err)
	}

	if got := c.Totals(); got.Count != 2 {
		t.Fatalf("cart must keep operating in memory, totals=%+v", got)
	}
}

// gatedStore blocks Load until released so tests can hold a rehydrate
// mid-flight.
type gatedStore struct {
	*fakeStore
	inLoad  chan struct{}
	release chan struct{}
}

func (g *gatedStore) Load(ctx context.Context, sessionID string) ([]LineItem, error) {
	close(g.inLoad)
	<-g.release
	return g.fakeStore.Load(ctx, sessionID)
}

func TestManagerConcurrentFirstAccessWaitsForRehydrate(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{
		fakeStore: newFakeStore(),
		inLoad:    make(chan struct{}),
		release:   make(chan struct{}),
	}
	store.saved["s1"] = []LineItem{{ProductID: "p1", UnitPrice: 10, Quantity: 2}}

	m := NewManager(store, nil)

	first := make(chan []LineItem)
	go func() { first <- m.Get(ctx, "s1").Items() }()
	<-store.inLoad // first Get is mid-rehydrate

	second := make(chan []LineItem)
	go func() { second <- m.Get(ctx, "s1").Items() }()

	close(store.release)

	for _, ch := range []chan []LineItem{first, second} {
		items := <-ch
		if len(items) != 1 || items[0].ProductID != "p1" {
			t.Fatalf("every Get must observe the rehydrated snapshot, got %+v", items)
		}
	}
}

func TestManagerReturnsSameCartPerSession(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newFakeStore(), nil)

	a := m.Get(ctx, "s1")
	b := m.Get(ctx, "s1")
	other := m.Get(ctx, "s2")

	if a != b {
		t.Fatalf("same session must share one cart")
	}
	if a == other {
		t.Fatalf("different sessions must not share a cart")
	}
}
