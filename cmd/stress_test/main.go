package main

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/catalog/internal/core/domain"
	"github.com/rl1809/catalog/internal/core/service"
	"github.com/rl1809/catalog/internal/logging"
)

const (
	registryName   = "stress"
	workers        = 50
	itemsPerWorker = 200
	removeEvery    = 4
)

var categoryNames = []string{"electronics", "ELECTRONICS", "dairy", " Dairy ", "bakery"}

func main() {
	logger := logging.NewDefault()
	defer logger.Sync()
	logging.SetDefault(logger)

	registry := service.GetInstance(registryName)
	registry.Clear()

	var added, removed, updated, duplicates atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			for i := 0; i < itemsPerWorker; i++ {
				item, err := newItem(w, i)
				if err != nil {
					logger.Error("failed to build item", zap.Error(err))
					continue
				}
				if err := registry.Add(item); err != nil {
					logger.Error("failed to add item", zap.Error(err))
					continue
				}
				added.Add(1)

				// Same identity again must be rejected.
				if registry.Add(item) != nil {
					duplicates.Add(1)
				}

				if err := registry.UpdatePrice(item.ID(), decimal.NewFromInt(int64(w*itemsPerWorker+i))); err == nil {
					updated.Add(1)
				}

				if i%removeEvery == 0 {
					registry.Remove(item.ID())
					removed.Add(1)
				}

				_ = registry.ChangedItems()
				_ = registry.ShippableItems()
			}
		}(w)
	}

	wg.Wait()
	elapsed := time.Since(start)

	wantLen := int(added.Load() - removed.Load())
	groups := registry.GroupByCategory()
	grouped := 0
	for _, items := range groups {
		grouped += len(items)
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Workers:          %d\n", workers)
	fmt.Printf("Added:            %d\n", added.Load())
	fmt.Printf("Duplicates:       %d\n", duplicates.Load())
	fmt.Printf("Price Updates:    %d\n", updated.Load())
	fmt.Printf("Removed:          %d\n", removed.Load())
	fmt.Printf("Categories:       %d\n", len(groups))
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	check("registry size", registry.Len() == wantLen,
		fmt.Sprintf("expected %d items, got %d", wantLen, registry.Len()))
	check("duplicate rejection", duplicates.Load() == added.Load(),
		fmt.Sprintf("expected %d rejected duplicates, got %d", added.Load(), duplicates.Load()))
	check("changed set", len(registry.ChangedItems()) == wantLen,
		fmt.Sprintf("expected %d changed items, got %d", wantLen, len(registry.ChangedItems())))
	check("grouping", grouped == wantLen,
		fmt.Sprintf("expected %d grouped items, got %d", wantLen, grouped))
	check("category dedup", len(groups) == 3,
		fmt.Sprintf("expected 3 categories, got %d", len(groups)))
}

func newItem(w, i int) (domain.Item, error) {
	category, err := domain.CategoryOf(categoryNames[(w+i)%len(categoryNames)])
	if err != nil {
		return nil, err
	}
	price := decimal.NewFromInt(int64(i))
	weight := decimal.NewFromInt(int64(i % 10))

	if i%2 == 0 {
		return domain.NewElectronics(uuid.New(), fmt.Sprintf("device-%d-%d", w, i), category, price, 12, weight)
	}
	return domain.NewFood(uuid.New(), fmt.Sprintf("food-%d-%d", w, i), category, price,
		time.Now().AddDate(0, 0, i%3-1), weight)
}

func check(name string, ok bool, detail string) {
	if ok {
		fmt.Printf("PASS: %s\n", name)
		return
	}
	fmt.Printf("FAIL: %s: %s\n", name, detail)
}
