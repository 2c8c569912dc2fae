package scraper

import (
	"time"

	"github.com/shopcrawl/catalog-scraper/internal/models"
)

// AssembleReport combines the accumulated records with run metadata into the
// final report. Pure and total: any spec/record combination assembles.
func AssembleReport(spec SearchSpec, records []models.ProductRecord) *models.RunReport {
	if records == nil {
		records = []models.ProductRecord{}
	}
	return &models.RunReport{
		Metadata: models.ReportMetadata{
			SearchTerm:    spec.SearchTerm,
			MinPrice:      spec.MinPrice,
			MaxPrice:      spec.MaxPrice,
			MinOrderCount: spec.MinOrderCount,
			TotalProducts: len(records),
			ScrapedAt:     time.Now(),
		},
		Products: records,
	}
}
