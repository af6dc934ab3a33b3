package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shippable is implemented by items that can be sent to a customer.
type Shippable interface {
	Item
	ShippingCost() decimal.Decimal
	Weight() decimal.Decimal
}

// Perishable is implemented by items with a shelf life. IsExpired is
// evaluated against the wall clock on every call.
type Perishable interface {
	Item
	ExpirationDate() time.Time
	IsExpired() bool
	IsExpiredAt(now time.Time) bool
}
