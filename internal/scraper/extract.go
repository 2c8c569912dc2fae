package scraper

import (
	"time"

	"github.com/shopcrawl/catalog-scraper/internal/models"
	"github.com/shopcrawl/catalog-scraper/internal/parser"
)

// decodeRecords converts the result of the page-context extraction script
// into ProductRecords. The script returns an array of plain objects; missing
// or oddly typed fields fall back to the documented sentinels so a single
// malformed item never fails the page.
func decodeRecords(raw any, now time.Time) []models.ProductRecord {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	records := make([]models.ProductRecord, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		orderText := stringField(fields, "orderCountText", models.OrderCountSentinel)
		records = append(records, models.ProductRecord{
			ID:             stringField(fields, "id", models.TextSentinel),
			Title:          stringField(fields, "title", models.TextSentinel),
			PriceText:      stringField(fields, "priceText", models.TextSentinel),
			OrderCountText: orderText,
			OrderCount:     parser.ParseOrderCount(orderText),
			Rating:         stringField(fields, "rating", models.TextSentinel),
			Link:           stringField(fields, "link", models.TextSentinel),
			ScrapedAt:      now,
		})
	}
	return records
}

func stringField(fields map[string]any, key, sentinel string) string {
	v, ok := fields[key].(string)
	if !ok || v == "" {
		return sentinel
	}
	return v
}
