package events

import "time"

// OrderPlaced is emitted after an order has been durably recorded. Downstream
// consumers (fulfilment, notifications) key off orderId; the field names are
// part of the contract.
type OrderPlaced struct {
	EventType string            `json:"eventType"`
	OrderID   string            `json:"orderId"`
	UserID    string            `json:"userId"`
	Total     float64           `json:"total"`
	Items     []OrderPlacedItem `json:"items"`
	Timestamp time.Time         `json:"timestamp"`
}

type OrderPlacedItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
