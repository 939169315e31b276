package services

import (
	"context"
	"log"
	"strings"

	"order-fulfillment-service/internal/platform/obs"
	"order-fulfillment-service/internal/ports"
)

// BarcodeResolver maps scanned codes to primary article codes. Resolution
// order: alias cache, ERP alias search, then the scanned value itself as a
// primary code. The cache is optional; without it every scan hits the ERP.
type BarcodeResolver struct {
	erp   ports.ERPClient
	cache ports.AliasCache
}

func NewBarcodeResolver(erp ports.ERPClient, cache ports.AliasCache) *BarcodeResolver {
	return &BarcodeResolver{erp: erp, cache: cache}
}

// Resolve returns the article code to pick for a scanned value. When no
// alias matches, the scanned value is returned unchanged so the caller can
// try it as a primary code; membership in the order is checked there, not
// here. Cache failures degrade to an ERP lookup.
func (r *BarcodeResolver) Resolve(ctx context.Context, scanned string) (_ string, err error) {
	defer obs.Time(ctx, "barcode.Resolve")(&err)

	scanned = strings.TrimSpace(scanned)
	if scanned == "" {
		return "", nil
	}

	if r.cache != nil {
		code, found, err := r.cache.Get(ctx, scanned)
		if err != nil {
			log.Printf("barcode: cache get failed scanned=%q err=%v", scanned, err)
		} else if found {
			return code, nil
		}
	}

	code, err := r.erp.ResolveArticleAlias(ctx, scanned)
	if err != nil {
		return "", err
	}
	if code == "" {
		return scanned, nil
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, scanned, code); err != nil {
			log.Printf("barcode: cache put failed scanned=%q err=%v", scanned, err)
		}
	}
	return code, nil
}
