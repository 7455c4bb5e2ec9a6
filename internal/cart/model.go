package cart

// ProductSnapshot is the slice of catalog fields captured when a product is
// added. It is not re-checked against the catalog until checkout.
type ProductSnapshot struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// LineItem is one product plus its intended quantity. Quantity is always >= 1;
// a line that would drop to zero is removed instead.
type LineItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// Totals are derived from the line items and recomputed on every read.
type Totals struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}
