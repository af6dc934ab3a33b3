package domain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a sellable catalog entry. Identity, name and category are fixed at
// construction; the price may change.
type Item interface {
	ID() uuid.UUID
	Name() string
	Category() *Category
	Price() decimal.Decimal
	// SetPrice replaces the price without validation.
	SetPrice(price decimal.Decimal)
	ProductDetails() string
}

// IsNil reports whether item is nil, including a typed nil variant pointer
// whose methods would panic.
func IsNil(item Item) bool {
	switch it := item.(type) {
	case nil:
		return true
	case *Electronics:
		return it == nil
	case *Food:
		return it == nil
	}
	return false
}

// product holds the fields every variant shares.
type product struct {
	id       uuid.UUID
	name     string
	category *Category

	mu    sync.RWMutex
	price decimal.Decimal
}

func validateProduct(id uuid.UUID, name string, category *Category, price decimal.Decimal) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if category == nil {
		return fmt.Errorf("%w: category is required", ErrInvalidArgument)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidArgument)
	}
	return nil
}

func (p *product) ID() uuid.UUID {
	return p.id
}

func (p *product) Name() string {
	return p.name
}

func (p *product) Category() *Category {
	return p.category
}

func (p *product) Price() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.price
}

func (p *product) SetPrice(price decimal.Decimal) {
	p.mu.Lock()
	p.price = price
	p.mu.Unlock()
}

func validateWeight(weight decimal.Decimal) error {
	if weight.IsNegative() {
		return fmt.Errorf("%w: weight cannot be negative", ErrInvalidArgument)
	}
	return nil
}
