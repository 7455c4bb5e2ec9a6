package order

import "fmt"

type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus validates an externally supplied status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// CanTransition reports whether an administrative status change is allowed.
// Orders only move out of processing; re-asserting processing is a no-op.
// Cancelling does not restock: there is no compensating stock action.
func CanTransition(from, to Status) bool {
	if from != StatusProcessing {
		return false
	}
	switch to {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}
