package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	electronicsBaseShipping   = decimal.NewFromInt(79)
	electronicsHeavySurcharge = decimal.NewFromInt(49)
	electronicsHeavyThreshold = decimal.RequireFromString("5.0")
)

// Electronics is a shippable item with a warranty.
type Electronics struct {
	product
	warrantyMonths int
	weight         decimal.Decimal
}

func NewElectronics(id uuid.UUID, name string, category *Category, price decimal.Decimal, warrantyMonths int, weight decimal.Decimal) (*Electronics, error) {
	if err := validateProduct(id, name, category, price); err != nil {
		return nil, err
	}
	if warrantyMonths < 0 {
		return nil, fmt.Errorf("%w: warranty months cannot be negative", ErrInvalidArgument)
	}
	if err := validateWeight(weight); err != nil {
		return nil, err
	}

	return &Electronics{
		product:        product{id: id, name: name, category: category, price: price},
		warrantyMonths: warrantyMonths,
		weight:         weight,
	}, nil
}

func (e *Electronics) WarrantyMonths() int {
	return e.warrantyMonths
}

func (e *Electronics) Weight() decimal.Decimal {
	return e.weight
}

// ShippingCost is a flat 79, plus 49 for anything heavier than 5 kg.
func (e *Electronics) ShippingCost() decimal.Decimal {
	cost := electronicsBaseShipping
	if e.weight.GreaterThan(electronicsHeavyThreshold) {
		cost = cost.Add(electronicsHeavySurcharge)
	}
	return cost
}

func (e *Electronics) ProductDetails() string {
	return fmt.Sprintf("Electronics: %s, Warranty: %d months", e.name, e.warrantyMonths)
}
