package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceChange is a point-in-time record of an item's changed price, handed to
// downstream publishers. Version increases with every price update made
// through the registry, so two changes to the same price stay distinct.
type PriceChange struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Version   uint64          `json:"version"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	ChangedAt time.Time       `json:"changed_at"`
}

func NewPriceChange(item Item, version uint64, at time.Time) PriceChange {
	return PriceChange{
		ItemID:    item.ID(),
		Version:   version,
		Name:      item.Name(),
		Category:  item.Category().Name(),
		Price:     item.Price(),
		ChangedAt: at,
	}
}
