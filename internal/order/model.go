package order

import "time"

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Shipping struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type Item struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// Order is immutable once created; only Status changes afterwards, and only
// through an administrative transition.
type Order struct {
	ID            string    `json:"orderId"`
	UserID        string    `json:"userId"`
	Customer      Customer  `json:"customer"`
	Shipping      Shipping  `json:"shipping"`
	Items         []Item    `json:"items"`
	PaymentMethod string    `json:"paymentMethod"`
	Subtotal      float64   `json:"subtotal"`
	Tax           float64   `json:"tax"`
	Total         float64   `json:"total"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}
