// Package parser extracts product records from static catalog HTML. It is
// the fallback path for when page-context evaluation is unavailable, and the
// reference implementation of the extraction rules for tests.
package parser

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopcrawl/catalog-scraper/internal/models"
)

// ItemSelectors mirrors the catalog's DOM contract for static parsing.
type ItemSelectors struct {
	Item        string
	IDAttribute string
	Title       string
	Price       string
	Orders      string
	Rating      string
	Link        string
}

// ParseSearchResults extracts one record per catalog item, in document
// order. Sub-field lookups are individually optional: missing elements yield
// the documented sentinels rather than failing the record. Relative detail
// links are resolved against baseURL.
func ParseSearchResults(html, baseURL string, sel ItemSelectors, now time.Time) ([]models.ProductRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	records := []models.ProductRecord{}
	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		id, ok := item.Attr(sel.IDAttribute)
		if !ok || id == "" {
			id = models.TextSentinel
		}

		orderText := childText(item, sel.Orders, models.OrderCountSentinel)
		link := models.TextSentinel
		if href, ok := item.Find(sel.Link).First().Attr("href"); ok && href != "" {
			link = absoluteURL(base, href)
		}

		records = append(records, models.ProductRecord{
			ID:             id,
			Title:          childText(item, sel.Title, models.TextSentinel),
			PriceText:      childText(item, sel.Price, models.TextSentinel),
			OrderCountText: orderText,
			OrderCount:     ParseOrderCount(orderText),
			Rating:         childText(item, sel.Rating, models.TextSentinel),
			Link:           link,
			ScrapedAt:      now,
		})
	})

	return records, nil
}

func absoluteURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() || base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func childText(item *goquery.Selection, selector, sentinel string) string {
	text := strings.TrimSpace(item.Find(selector).First().Text())
	if text == "" {
		return sentinel
	}
	return text
}

// ParseOrderCount derives the numeric order count from raw order-count text
// by keeping only digits: "1,234 orders" parses to 1234. Text without any
// digits parses to 0.
func ParseOrderCount(text string) int {
	var digits strings.Builder
	for _, r := range text {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}
