package scraper

import "github.com/shopcrawl/catalog-scraper/internal/models"

// Passes reports whether a record satisfies the spec's thresholds. It is a
// pure predicate: no state, no side effects.
//
// Only the order-count threshold is checked here. Price bounds are applied
// server-side through the search URL's query parameters, because rendered
// price text is not reliably numeric-parseable across locales.
func Passes(record models.ProductRecord, spec SearchSpec) bool {
	if spec.MinOrderCount == nil {
		return true
	}
	return record.OrderCount >= *spec.MinOrderCount
}
