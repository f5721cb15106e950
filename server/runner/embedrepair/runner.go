// Package embedrepair hosts the background task that heals the vector
// index. Index writes on the request path are best-effort, so records can
// go missing whenever the index is briefly unavailable; this runner
// backfills them.
package embedrepair

import (
	"context"
	"log/slog"
	"time"

	"github.com/curiocodex/curiocodex/server/service/collection"
)

// defaultInterval keeps repair passes far apart. Each pass pays embedding
// calls for missing records, so running hot would burn provider quota.
const defaultInterval = 10 * time.Minute

type Runner struct {
	service  *collection.Service
	interval time.Duration
}

// NewRunner creates an index repair runner.
func NewRunner(service *collection.Service) *Runner {
	return &Runner{
		service:  service,
		interval: defaultInterval,
	}
}

// Run starts the background task. It repairs once on startup and then on
// every tick until the context is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("index repair runner stopped")
			return
		}
	}
}

// RunOnce performs a single repair pass.
func (r *Runner) RunOnce(ctx context.Context) {
	repaired, err := r.service.RepairMissing(ctx)
	if err != nil {
		slog.Error("index repair pass failed", "error", err)
		return
	}
	if repaired > 0 {
		slog.Info("index repair pass completed", "repaired", repaired)
	}
}
