package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopcrawl/catalog-scraper/internal/models"
)

// SaveRun records a finished crawl run and upserts every product it found in
// one transaction, so a run row never exists without its products.
func (db *DB) SaveRun(ctx context.Context, runID, searchTerm string, pagesVisited int, products []models.ProductRecord) error {
	return db.Transaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO crawl_runs (id, search_term, pages_visited, total_products)
			VALUES ($1, $2, $3, $4)`,
			runID, searchTerm, pagesVisited, len(products))
		if err != nil {
			return fmt.Errorf("failed to insert crawl run: %w", err)
		}

		for _, p := range products {
			_, err := tx.Exec(ctx, `
				INSERT INTO products
					(id, run_id, title, price_text, order_count_text, order_count, rating, link, scraped_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (id, run_id) DO UPDATE SET
					title = EXCLUDED.title,
					price_text = EXCLUDED.price_text,
					order_count_text = EXCLUDED.order_count_text,
					order_count = EXCLUDED.order_count,
					rating = EXCLUDED.rating,
					link = EXCLUDED.link,
					scraped_at = EXCLUDED.scraped_at`,
				p.ID, runID, p.Title, p.PriceText, p.OrderCountText,
				p.OrderCount, p.Rating, p.Link, p.ScrapedAt)
			if err != nil {
				return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
			}
		}
		return nil
	})
}
