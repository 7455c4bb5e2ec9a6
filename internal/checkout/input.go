package checkout

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/boywithalo/marketplacen2/internal/order"
)

// Payment methods are recorded on the order but never charged.
const (
	PaymentCredit = "credit"
	PaymentPayPal = "paypal"
)

var ErrValidation = errors.New("invalid checkout input")

// Input is the shopper/shipping form handed to the pipeline. Callers must
// run Validate before Commit; validation failures never reach the pipeline.
type Input struct {
	UserID        string         `json:"userId"`
	Customer      order.Customer `json:"customer"`
	Shipping      order.Shipping `json:"shipping"`
	PaymentMethod string         `json:"paymentMethod"`
}

func (in Input) Validate() error {
	var missing []string
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	require("customer.name", in.Customer.Name)
	require("customer.email", in.Customer.Email)
	require("shipping.address", in.Shipping.Address)
	require("shipping.city", in.Shipping.City)
	require("shipping.state", in.Shipping.State)
	require("shipping.zipCode", in.Shipping.ZipCode)
	require("shipping.country", in.Shipping.Country)
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}

	if _, err := mail.ParseAddress(in.Customer.Email); err != nil {
		return fmt.Errorf("%w: malformed email", ErrValidation)
	}

	switch in.PaymentMethod {
	case PaymentCredit, PaymentPayPal:
	default:
		return fmt.Errorf("%w: unsupported payment method %q", ErrValidation, in.PaymentMethod)
	}

	return nil
}
