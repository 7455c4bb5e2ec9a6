package checkout

// StockAdjustment is the outcome of one line item's stock decrement. The
// pipeline collects these so the swallow of non-fatal failures is an explicit,
// inspectable branch instead of a lost exception.
type StockAdjustment struct {
	ProductID string
	Requested int
	Remaining int
	Err       error
}

func (a StockAdjustment) Failed() bool {
	return a.Err != nil
}

// Result is returned once the order is durably recorded, regardless of how
// the per-item stock adjustments went.
type Result struct {
	OrderID     string
	Adjustments []StockAdjustment
}
