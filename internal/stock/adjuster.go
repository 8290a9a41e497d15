// Package stock applies stock movements to the catalog. Sales hand their lines
// to the adjuster once the sale is committed; failed movements land in the
// outbox and are replayed on a schedule.
package stock

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"apexpos/backend/internal/domain"
	"apexpos/backend/internal/logging"
	"apexpos/backend/internal/store"
)

const jobTimeout = 15 * time.Second

// Line is one product movement; Quantity is always positive.
type Line struct {
	ProductID string
	Quantity  int
}

// Repository is what the adjuster needs from storage.
type Repository interface {
	store.StockStore
	store.AdjustmentOutbox
}

type Adjuster struct {
	repo Repository
	pool *ants.Pool
	log  zerolog.Logger
	wg   sync.WaitGroup
	now  func() time.Time
}

func New(repo Repository, workers int, logger zerolog.Logger) (*Adjuster, error) {
	if workers < 1 {
		workers = 1
	}
	a := &Adjuster{
		repo: repo,
		log:  logger.With().Str("component", "stock").Logger(),
		now:  func() time.Time { return time.Now().UTC() },
	}
	pool, err := ants.NewPool(workers,
		ants.WithNonblocking(true),
		ants.WithLogger(logging.PoolLogger{Log: a.log}),
		ants.WithPanicHandler(func(p interface{}) {
			a.log.Error().Interface("panic", p).Msg("stock job panicked")
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create stock worker pool")
	}
	a.pool = pool
	return a, nil
}

// Adjust adds delta to a product's stock. Negative results are allowed.
func (a *Adjuster) Adjust(ctx context.Context, productID string, delta int) (*domain.Product, error) {
	return a.repo.IncrementStock(ctx, productID, delta)
}

// DecrementClamped removes qty from a product, never going below zero.
func (a *Adjuster) DecrementClamped(ctx context.Context, productID string, qty int) (*domain.Product, error) {
	return a.repo.DecrementStockClamped(ctx, productID, qty)
}

// Reserve takes every line out of stock or none of them. When a line cannot
// be covered the lines already taken are put back and the returned error
// wraps store.ErrInsufficientStock.
func (a *Adjuster) Reserve(ctx context.Context, lines []Line) error {
	taken := make([]Line, 0, len(lines))
	for _, line := range lines {
		if _, err := a.repo.DecrementStockIfAvailable(ctx, line.ProductID, line.Quantity); err != nil {
			a.Restore(context.WithoutCancel(ctx), "", taken)
			return errors.Wrapf(err, "reserve %s", line.ProductID)
		}
		taken = append(taken, line)
	}
	return nil
}

// Restore puts lines back into stock. Lines that cannot be restored are
// queued in the outbox under saleID.
func (a *Adjuster) Restore(ctx context.Context, saleID string, lines []Line) {
	for _, line := range lines {
		a.apply(ctx, saleID, line.ProductID, line.Quantity)
	}
}

// SubmitSale schedules the decrements for a committed sale. Lines are
// applied one after another on a pool worker; the caller does not wait.
// When every worker is busy the lines go to the outbox instead.
func (a *Adjuster) SubmitSale(saleID string, lines []Line) {
	if len(lines) == 0 {
		return
	}
	lines = append([]Line(nil), lines...)

	a.wg.Add(1)
	err := a.pool.Submit(func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		for _, line := range lines {
			a.apply(ctx, saleID, line.ProductID, -line.Quantity)
		}
	})
	if err == nil {
		return
	}
	a.log.Warn().Err(err).Str("sale_id", saleID).Msg("stock pool rejected job, queueing lines")
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		for _, line := range lines {
			a.enqueue(ctx, saleID, line.ProductID, -line.Quantity, err)
		}
	}()
}

func (a *Adjuster) apply(ctx context.Context, saleID string, productID string, delta int) {
	_, err := a.repo.IncrementStock(ctx, productID, delta)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		a.log.Warn().Str("sale_id", saleID).Str("product_id", productID).Int("delta", delta).
			Msg("stock adjustment skipped, product no longer exists")
	default:
		a.log.Error().Err(err).Str("sale_id", saleID).Str("product_id", productID).Int("delta", delta).
			Msg("stock adjustment failed, queueing for retry")
		a.enqueue(ctx, saleID, productID, delta, err)
	}
}

func (a *Adjuster) enqueue(ctx context.Context, saleID string, productID string, delta int, cause error) {
	now := a.now()
	err := a.repo.EnqueueAdjustment(context.WithoutCancel(ctx), domain.PendingAdjustment{
		SaleID:    saleID,
		ProductID: productID,
		Delta:     delta,
		Attempts:  1,
		LastError: cause.Error(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		a.log.Error().Err(err).Str("sale_id", saleID).Str("product_id", productID).Int("delta", delta).
			Msg("stock adjustment lost, outbox unavailable")
	}
}

// ReplayPending retries up to limit queued adjustments, oldest first, and
// reports how many were applied.
func (a *Adjuster) ReplayPending(ctx context.Context, limit int) (int, error) {
	pending, err := a.repo.ListPendingAdjustments(ctx, limit)
	if err != nil {
		return 0, errors.Wrap(err, "list pending adjustments")
	}

	applied := 0
	for _, adj := range pending {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		_, err := a.repo.IncrementStock(ctx, adj.ProductID, adj.Delta)
		switch {
		case err == nil:
			applied++
		case errors.Is(err, store.ErrNotFound):
			a.log.Warn().Str("adjustment_id", adj.ID).Str("product_id", adj.ProductID).
				Msg("dropping queued adjustment for missing product")
		default:
			adj.Attempts++
			adj.LastError = err.Error()
			adj.UpdatedAt = a.now()
			if saveErr := a.repo.SavePendingAdjustment(ctx, adj); saveErr != nil {
				a.log.Error().Err(saveErr).Str("adjustment_id", adj.ID).Msg("record retry attempt failed")
			}
			continue
		}
		if err := a.repo.DeletePendingAdjustment(ctx, adj.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			a.log.Error().Err(err).Str("adjustment_id", adj.ID).Msg("remove applied adjustment failed")
		}
	}
	return applied, nil
}

// Wait blocks until every submitted sale job has finished.
func (a *Adjuster) Wait() {
	a.wg.Wait()
}

// Close drains submitted jobs and stops the pool.
func (a *Adjuster) Close() {
	a.Wait()
	a.pool.Release()
}
