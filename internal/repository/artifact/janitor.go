package artifact

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Janitor sweeps the download directory on a fixed interval.
type Janitor struct {
	store    *Store
	interval time.Duration
	swept    prometheus.Counter
	logger   *zap.Logger
}

// NewJanitor creates a janitor for store. swept counts removed files
// and may be nil.
func NewJanitor(store *Store, interval time.Duration, swept prometheus.Counter, logger *zap.Logger) *Janitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{store: store, interval: interval, swept: swept, logger: logger}
}

// Run sweeps until ctx is cancelled. It is meant to run in its own
// goroutine for the lifetime of the process.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, _, err := j.store.Sweep(now)
			if err != nil {
				j.logger.Error("artifact sweep failed", zap.Error(err))
				continue
			}
			if j.swept != nil && removed > 0 {
				j.swept.Add(float64(removed))
			}
		}
	}
}
