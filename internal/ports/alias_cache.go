package ports

import "context"

// Port: cache for scanned-code -> primary-article-code resolutions, so
// repeated scans of the same barcode do not hit the ERP alias search.
type AliasCache interface {
	// Get returns the cached primary code, found=false on a miss.
	Get(ctx context.Context, scanned string) (code string, found bool, err error)

	// Put stores a resolution with the cache's TTL.
	Put(ctx context.Context, scanned, code string) error
}
