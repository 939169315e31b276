package services

import (
	"context"
	"log"
	"time"

	"order-fulfillment-service/internal/ports"
)

// StalenessDetector polls the ERP for order documents modified after the
// content cache's last load and invalidates the cache when it finds any. It
// only marks; the reload happens lazily on the next read.
type StalenessDetector struct {
	erp      ports.ERPClient
	cache    *ContentCache
	interval time.Duration
}

func NewStalenessDetector(erp ports.ERPClient, cache *ContentCache, interval time.Duration) *StalenessDetector {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StalenessDetector{erp: erp, cache: cache, interval: interval}
}

// Run polls until the context is cancelled.
func (d *StalenessDetector) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.CheckOnce(ctx)
		}
	}
}

// CheckOnce performs a single staleness probe. Poll failures are logged and
// skipped; the detector must never take the cache down with the ERP.
func (d *StalenessDetector) CheckOnce(ctx context.Context) {
	last := d.cache.LastLoaded()
	if last.IsZero() {
		return
	}

	n, err := d.erp.CountOrdersModifiedSince(ctx, last)
	if err != nil {
		log.Printf("staleness: probe failed err=%v", err)
		return
	}
	if n > 0 {
		log.Printf("staleness: %d orders modified since %s, invalidating content cache", n, last.Format(time.RFC3339))
		d.cache.Invalidate()
	}
}
