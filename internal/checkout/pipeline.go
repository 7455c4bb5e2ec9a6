package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/boywithalo/marketplacen2/internal/cart"
	"github.com/boywithalo/marketplacen2/internal/metrics"
	"github.com/boywithalo/marketplacen2/internal/order"
)

const DefaultTaxRate = 0.08

var ErrEmptyCart = errors.New("cart is empty")

// Catalog is the slice of the product store the pipeline needs: read a stock
// counter, write it back. The decrement between the two calls is deliberately
// not synchronized; see AtomicCatalog.
type Catalog interface {
	Stock(ctx context.Context, productID string) (int, error)
	SetStock(ctx context.Context, productID string, stock int) error
}

// AtomicCatalog is the hardening extension point. A catalog that also
// implements it gets its decrement-with-floor primitive used instead of the
// racy read-then-write, with no change to the pipeline's contract.
type AtomicCatalog interface {
	DecrementStockWithFloor(ctx context.Context, productID string, quantity int) (int, error)
}

// OrderStore durably records orders. Create is the only write the pipeline
// treats as fatal.
type OrderStore interface {
	Create(ctx context.Context, o *order.Order) error
}

// Publisher announces committed orders. Publish failures are swallowed like
// stock failures: the order is already durable.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, o *order.Order) error
}

type Options struct {
	// TaxRate nil means DefaultTaxRate. A zero-rate jurisdiction sets an
	// explicit 0.
	TaxRate   *float64
	Publisher Publisher
	Metrics   *metrics.Metrics
	Logger    *log.Logger
}

// Pipeline turns a cart into a durable order and decrements inventory.
//
// Commit order is deliberate: the order record is the durable intent and is
// written first; stock adjustment is a best-effort side effect afterwards.
// Only a failure to persist the order fails the checkout.
type Pipeline struct {
	orders    OrderStore
	catalog   Catalog
	publisher Publisher
	metrics   *metrics.Metrics
	taxRate   float64
	logger    *log.Logger
}

func NewPipeline(orders OrderStore, catalog Catalog, opts Options) *Pipeline {
	rate := DefaultTaxRate
	if opts.TaxRate != nil {
		rate = *opts.TaxRate
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Pipeline{
		orders:    orders,
		catalog:   catalog,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		taxRate:   rate,
		logger:    logger,
	}
}

// Commit runs the checkout for one cart. On success the cart is cleared and
// the order id returned; stock adjustment outcomes ride along in the Result.
// On order-persist failure the cart is left untouched so the shopper can
// retry, and no stock mutation has been attempted.
func (p *Pipeline) Commit(ctx context.Context, c *cart.Cart, in Input) (*Result, error) {
	items := c.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	o := p.buildOrder(items, in)
	if err := p.orders.Create(ctx, o); err != nil {
		p.countCheckout("error")
		return nil, fmt.Errorf("create order: %w", err)
	}

	adjustments := p.adjustStock(ctx, items)
	for _, a := range adjustments {
		if a.Failed() {
			// Non-fatal: the order is recorded, the shopper is not blocked
			// on inventory bookkeeping.
			p.logger.Printf("stock adjustment failed order=%s product=%s qty=%d: %v",
				o.ID, a.ProductID, a.Requested, a.Err)
			if p.metrics != nil {
				p.metrics.StockAdjustFailures.Inc()
			}
		}
	}

	if p.publisher != nil {
		if err := p.publisher.PublishOrderPlaced(ctx, o); err != nil {
			p.logger.Printf("publish OrderPlaced order=%s: %v", o.ID, err)
			if p.metrics != nil {
				p.metrics.OrderEventPublishFails.Inc()
			}
		}
	}

	c.Clear(ctx)
	p.countCheckout("ok")

	return &Result{OrderID: o.ID, Adjustments: adjustments}, nil
}

func (p *Pipeline) buildOrder(items []cart.LineItem, in Input) *order.Order {
	userID := in.UserID
	if userID == "" {
		userID = "guest"
	}

	o := &order.Order{
		UserID:        userID,
		Customer:      in.Customer,
		Shipping:      in.Shipping,
		PaymentMethod: in.PaymentMethod,
		Status:        order.StatusProcessing,
		CreatedAt:     time.Now().UTC(),
	}

	var subtotal float64
	for _, it := range items {
		lineSubtotal := it.UnitPrice * float64(it.Quantity)
		subtotal += lineSubtotal
		o.Items = append(o.Items, order.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  roundCents(lineSubtotal),
		})
	}

	o.Subtotal = roundCents(subtotal)
	o.Tax = roundCents(subtotal * p.taxRate)
	o.Total = roundCents(subtotal * (1 + p.taxRate))
	return o
}

// adjustStock decrements inventory per line item, fanning out so one failing
// item never blocks the others. Results come back in line-item order.
func (p *Pipeline) adjustStock(ctx context.Context, items []cart.LineItem) []StockAdjustment {
	adjustments := make([]StockAdjustment, len(items))

	var wg sync.WaitGroup
	for i, it := range items {
		wg.Add(1)
		go func(i int, it cart.LineItem) {
			defer wg.Done()
			adjustments[i] = p.decrement(ctx, it.ProductID, it.Quantity)
		}(i, it)
	}
	wg.Wait()

	return adjustments
}

func (p *Pipeline) decrement(ctx context.Context, productID string, quantity int) StockAdjustment {
	adj := StockAdjustment{ProductID: productID, Requested: quantity}

	if ac, ok := p.catalog.(AtomicCatalog); ok {
		adj.Remaining, adj.Err = ac.DecrementStockWithFloor(ctx, productID, quantity)
		return adj
	}

	// Read-then-write with a floor at zero. Two concurrent checkouts can read
	// the same value and under-decrement (lost update); stock still never goes
	// negative. Swap in an AtomicCatalog to close the window.
	current, err := p.catalog.Stock(ctx, productID)
	if err != nil {
		adj.Err = fmt.Errorf("read stock: %w", err)
		return adj
	}

	next := current - quantity
	if next < 0 {
		next = 0
	}
	if err := p.catalog.SetStock(ctx, productID, next); err != nil {
		adj.Err = fmt.Errorf("write stock: %w", err)
		return adj
	}

	adj.Remaining = next
	return adj
}

func (p *Pipeline) countCheckout(result string) {
	if p.metrics != nil {
		p.metrics.Checkouts.WithLabelValues(result).Inc()
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
