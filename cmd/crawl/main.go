// Command crawl runs a single catalog search crawl and writes the report to
// a JSON file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopcrawl/catalog-scraper/internal/browser"
	"github.com/shopcrawl/catalog-scraper/internal/config"
	"github.com/shopcrawl/catalog-scraper/internal/scraper"
	"github.com/shopcrawl/catalog-scraper/internal/storage"
)

func main() {
	searchTerm := flag.String("search", "smartphone", "search term")
	minPrice := flag.Float64("min-price", 0, "minimum price (0 = no bound)")
	maxPrice := flag.Float64("max-price", 0, "maximum price (0 = no bound)")
	minOrders := flag.Int("min-orders", 0, "minimum order count (0 = no threshold)")
	maxPages := flag.Int("max-pages", 3, "maximum result pages to crawl")
	output := flag.String("out", "report.json", "output file name")
	outDir := flag.String("out-dir", "reports", "output directory")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run deadline")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	spec := scraper.SearchSpec{
		SearchTerm: *searchTerm,
		MaxPages:   *maxPages,
	}
	if *minPrice > 0 {
		spec.MinPrice = minPrice
	}
	if *maxPrice > 0 {
		spec.MaxPrice = maxPrice
	}
	if *minOrders > 0 {
		spec.MinOrderCount = minOrders
	}
	if err := spec.Validate(); err != nil {
		logger.Error("invalid search spec", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	b, err := browser.New(&browser.Options{
		Headless:          cfg.Browser.Headless,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		UserAgent:         browser.DefaultOptions().UserAgent,
		ViewportWidth:     cfg.Browser.ViewportWidth,
		ViewportHeight:    cfg.Browser.ViewportHeight,
		BlockResources:    cfg.Browser.BlockResources,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	crawler := scraper.NewCrawler(scraper.Options{
		BaseURL:        cfg.Crawler.BaseURL,
		SettleDelay:    cfg.Crawler.SettleDelay,
		FailFast:       cfg.Crawler.FailFast,
		StaticFallback: cfg.Crawler.StaticFallback,
	}, logger, scraper.NewMetrics())
	runner := scraper.NewRunner(b.Sessions(), crawler, logger)

	report, result, err := runner.Run(ctx, spec)
	if err != nil {
		logger.Error("crawl failed", "error", err)
		os.Exit(1)
	}
	if result.Truncated != nil {
		logger.Warn("crawl returned a partial result", "error", result.Truncated)
	}

	writer, err := storage.NewReportWriter(*outDir)
	if err != nil {
		logger.Error("failed to prepare output directory", "error", err)
		os.Exit(1)
	}
	path, err := writer.Write(*output, report)
	if err != nil {
		logger.Error("failed to write report", "error", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d products (%d pages) to %s\n",
		report.Metadata.TotalProducts, result.PagesVisited, path)
}
