package port

import (
	"context"

	"github.com/rl1809/catalog/internal/core/domain"
)

type PricePublisher interface {
	// Publish delivers a price change downstream. It returns false without error
	// when the same item/price pair was already delivered.
	Publish(ctx context.Context, change domain.PriceChange) (bool, error)
}
