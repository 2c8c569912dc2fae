// Package models defines the data shapes shared across the crawler.
package models

import "time"

// Sentinel values used when a catalog item is missing a sub-field.
const (
	TextSentinel       = "N/A"
	OrderCountSentinel = "0"
)

// ProductRecord is one extracted catalog item. Records are created once
// during a page's extraction pass and never mutated afterwards.
type ProductRecord struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	PriceText      string    `json:"priceText"`
	OrderCountText string    `json:"orderCountText"`
	OrderCount     int       `json:"orderCount"`
	Rating         string    `json:"rating"`
	Link           string    `json:"link"`
	ScrapedAt      time.Time `json:"scrapedAt"`
}

// ReportMetadata describes the run that produced a report.
type ReportMetadata struct {
	SearchTerm    string    `json:"searchTerm"`
	MinPrice      *float64  `json:"minPrice"`
	MaxPrice      *float64  `json:"maxPrice"`
	MinOrderCount *int      `json:"minOrderCount"`
	TotalProducts int       `json:"totalProducts"`
	ScrapedAt     time.Time `json:"scrapedAt"`
}

// RunReport is the final output of a crawl run.
type RunReport struct {
	Metadata ReportMetadata  `json:"metadata"`
	Products []ProductRecord `json:"products"`
}
