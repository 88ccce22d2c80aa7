package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/telforge/phonegen/internal/domain"
	"github.com/telforge/phonegen/internal/domain/plan"
)

const releaseGrace = 3 * time.Second

// Dispatcher fans a plan's offset space out over a bounded worker pool and
// collects per-partition line slices in partition order. The pool is shared
// across requests; one Dispatcher serves the whole process.
type Dispatcher struct {
	pool   *ants.Pool
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher backed by a pool of size workers.
func NewDispatcher(size int, logger *zap.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(size, ants.WithPanicHandler(func(v any) {
		logger.Error("enumeration worker panic", zap.Any("panic", v))
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Dispatcher{pool: pool, logger: logger}, nil
}

// Run enumerates the plan across workers contiguous partitions and returns
// their line slices indexed by partition ordinal, independent of completion
// order. If any partition fails, the whole run fails with a PartitionError
// naming the partition and no partial results are returned; retrying the
// identical plan is safe because enumeration is pure.
func (d *Dispatcher) Run(ctx context.Context, p plan.Plan, workers int) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parts := Split(p.Total(), workers)
	results := make([][]string, len(parts))
	errs := make([]error, len(parts))

	var wg sync.WaitGroup
	for _, part := range parts {
		part := part // per-iteration copy; go.mod declares go 1.21 (pre-1.22 loop semantics)
		wg.Add(1)
		task := func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[part.Ordinal] = fmt.Errorf("panic: %v", r)
				}
			}()

			if err := ctx.Err(); err != nil {
				errs[part.Ordinal] = err
				return
			}

			lines, err := p.Slice(part.Start, part.End)
			if err != nil {
				errs[part.Ordinal] = err
				return
			}
			results[part.Ordinal] = lines
		}

		if err := d.pool.Submit(task); err != nil {
			// Balance the WaitGroup for the task that never started.
			wg.Done()
			errs[part.Ordinal] = fmt.Errorf("submit partition: %w", err)
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, domain.NewPartition(i, err)
		}
	}
	return results, nil
}

// Workers returns the pool capacity.
func (d *Dispatcher) Workers() int { return d.pool.Cap() }

// Close releases the worker pool, giving in-flight tasks a short grace
// period to finish.
func (d *Dispatcher) Close() {
	if d.pool != nil {
		_ = d.pool.ReleaseTimeout(releaseGrace)
	}
}
