package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/catalog/internal/core/domain"
	"github.com/rl1809/catalog/internal/logging"
	"github.com/rl1809/catalog/internal/port"
)

var ErrFeedClosed = errors.New("price feed closed")

type PublishOutcome string

const (
	OutcomePublished PublishOutcome = "published"
	OutcomeSkipped   PublishOutcome = "skipped"
	OutcomeFailed    PublishOutcome = "failed"
)

// PriceFeed forwards a registry's changed prices to a publisher. Collect
// snapshots new price versions onto a bounded queue; workers drain it.
type PriceFeed struct {
	registry  *Registry
	publisher port.PricePublisher
	queue     chan domain.PriceChange
	done      chan struct{}
	now       func() time.Time
	observe   func(PublishOutcome)

	mu     sync.Mutex
	queued map[uuid.UUID]uint64 // latest version handed to the queue per item
}

type PriceFeedOption func(*PriceFeed)

// WithPublishObserver registers fn to be called once per processed change.
func WithPublishObserver(fn func(PublishOutcome)) PriceFeedOption {
	return func(f *PriceFeed) {
		f.observe = fn
	}
}

// WithClock overrides the time source stamped on collected changes.
func WithClock(now func() time.Time) PriceFeedOption {
	return func(f *PriceFeed) {
		f.now = now
	}
}

func NewPriceFeed(registry *Registry, publisher port.PricePublisher, queueSize int, opts ...PriceFeedOption) *PriceFeed {
	f := &PriceFeed{
		registry:  registry,
		publisher: publisher,
		queue:     make(chan domain.PriceChange, queueSize),
		done:      make(chan struct{}),
		now:       time.Now,
		observe:   func(PublishOutcome) {},
		queued:    make(map[uuid.UUID]uint64),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Collect enqueues a PriceChange for every changed item whose latest version
// was not queued yet and returns how many were queued. It blocks while the
// queue is full.
func (f *PriceFeed) Collect(ctx context.Context) (int, error) {
	changes := f.registry.PriceChanges(f.now())
	f.prune(changes)

	queued := 0
	for _, change := range changes {
		if !f.claim(change) {
			continue
		}
		select {
		case f.queue <- change:
			queued++
		case <-f.done:
			f.release(change)
			return queued, ErrFeedClosed
		case <-ctx.Done():
			f.release(change)
			return queued, fmt.Errorf("collect price changes: %w", ctx.Err())
		}
	}
	return queued, nil
}

// claim marks change as queued unless the same or a newer version already is.
func (f *PriceFeed) claim(change domain.PriceChange) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if v, ok := f.queued[change.ItemID]; ok && v >= change.Version {
		return false
	}
	f.queued[change.ItemID] = change.Version
	return true
}

// release forgets change so the next Collect queues it again.
func (f *PriceFeed) release(change domain.PriceChange) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queued[change.ItemID] == change.Version {
		delete(f.queued, change.ItemID)
	}
}

// prune drops bookkeeping for items that left the changed set.
func (f *PriceFeed) prune(changes []domain.PriceChange) {
	live := make(map[uuid.UUID]struct{}, len(changes))
	for _, c := range changes {
		live[c.ItemID] = struct{}{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.queued {
		if _, ok := live[id]; !ok {
			delete(f.queued, id)
		}
	}
}

// Run calls Collect every interval until ctx is cancelled.
func (f *PriceFeed) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case <-ticker.C:
			n, err := f.Collect(ctx)
			if err != nil {
				if !errors.Is(err, ErrFeedClosed) && !errors.Is(err, context.Canceled) {
					logging.L().Warn("price feed collect failed", zap.Error(err))
				}
				continue
			}
			if n > 0 {
				logging.L().Debug("price changes queued", zap.Int("count", n))
			}
		}
	}
}

// Work publishes queued changes until the queue is closed. A change that
// fails to publish is queued again by the next Collect.
func (f *PriceFeed) Work(id int) {
	log := logging.L().With(zap.Int("worker", id))
	for change := range f.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		published, err := f.publisher.Publish(ctx, change)
		cancel()

		switch {
		case err != nil:
			log.Error("failed to publish price change",
				zap.Stringer("item_id", change.ItemID), zap.Error(err))
			f.release(change)
			f.observe(OutcomeFailed)
		case published:
			log.Info("published price change",
				zap.Stringer("item_id", change.ItemID), zap.Stringer("price", change.Price),
				zap.Uint64("version", change.Version))
			f.observe(OutcomePublished)
		default:
			f.observe(OutcomeSkipped)
		}
	}
}

func (f *PriceFeed) Queue() <-chan domain.PriceChange {
	return f.queue
}

// Close stops collection and closes the queue so workers exit. Call it after
// Run has returned.
func (f *PriceFeed) Close() {
	close(f.done)
	close(f.queue)
}
