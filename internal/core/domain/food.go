package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var foodShippingRate = decimal.NewFromInt(50)

// Food is both shippable and perishable.
type Food struct {
	product
	expirationDate time.Time
	weight         decimal.Decimal
}

// NewFood builds a Food item. Only the calendar date of expirationDate is kept.
func NewFood(id uuid.UUID, name string, category *Category, price decimal.Decimal, expirationDate time.Time, weight decimal.Decimal) (*Food, error) {
	if err := validateProduct(id, name, category, price); err != nil {
		return nil, err
	}
	if expirationDate.IsZero() {
		return nil, fmt.Errorf("%w: expiration date is required", ErrInvalidArgument)
	}
	if err := validateWeight(weight); err != nil {
		return nil, err
	}

	return &Food{
		product:        product{id: id, name: name, category: category, price: price},
		expirationDate: dateOf(expirationDate),
		weight:         weight,
	}, nil
}

// ExpirationDate returns the expiry as midnight UTC of the calendar date.
func (f *Food) ExpirationDate() time.Time {
	return f.expirationDate
}

func (f *Food) IsExpired() bool {
	return f.IsExpiredAt(time.Now())
}

// IsExpiredAt reports whether the expiration date falls strictly before the
// calendar date of now.
func (f *Food) IsExpiredAt(now time.Time) bool {
	return f.expirationDate.Before(dateOf(now))
}

func (f *Food) Weight() decimal.Decimal {
	return f.weight
}

// ShippingCost is 50 per kilogram.
func (f *Food) ShippingCost() decimal.Decimal {
	return f.weight.Mul(foodShippingRate)
}

func (f *Food) ProductDetails() string {
	return fmt.Sprintf("Food: %s, Expires: %s", f.name, f.expirationDate.Format(dateLayout))
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return t, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
