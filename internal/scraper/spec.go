// Package scraper implements the crawl-and-extract pipeline: search query
// construction, the pagination state machine, per-page extraction, filtering
// and report assembly.
package scraper

import "strings"

// SearchSpec describes one crawl run. It is immutable for the duration of
// the run. Nil pointer fields mean the bound is not applied.
type SearchSpec struct {
	SearchTerm    string
	MinPrice      *float64
	MaxPrice      *float64
	MinOrderCount *int
	MaxPages      int
}

// Validate rejects specs that must never reach a browser session.
func (s SearchSpec) Validate() error {
	if strings.TrimSpace(s.SearchTerm) == "" {
		return &SpecError{Field: "searchTerm", Reason: "must not be empty"}
	}
	if s.MaxPages < 1 {
		return &SpecError{Field: "maxPages", Reason: "must be at least 1"}
	}
	if s.MinPrice != nil && s.MaxPrice != nil && *s.MinPrice > *s.MaxPrice {
		return &SpecError{Field: "minPrice", Reason: "must not exceed maxPrice"}
	}
	return nil
}
