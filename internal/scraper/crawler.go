package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopcrawl/catalog-scraper/internal/models"
	"github.com/shopcrawl/catalog-scraper/internal/parser"
)

// Termination reasons reported in CrawlResult.Reason.
const (
	ReasonNoNextPage = "no_next_page"
	ReasonMaxPages   = "max_pages"
	ReasonTruncated  = "truncated"
)

// Page is the rendered-page capability the driver needs from a browser
// session. browser.Session implements it; tests substitute a fake.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitForSelector(ctx context.Context, selector string) error
	Evaluate(ctx context.Context, script string, arg any) (any, error)
	Exists(ctx context.Context, selector string) (bool, error)
	Click(ctx context.Context, selector string) error
	Content(ctx context.Context) (string, error)
}

// Options tunes the pagination driver.
type Options struct {
	// BaseURL is the catalog search endpoint the query builder targets.
	BaseURL string
	// Selectors is the catalog's DOM contract.
	Selectors Selectors
	// SettleDelay is the fallback wait after clicking the next-page control
	// when waiting for the item selector fails.
	SettleDelay time.Duration
	// FailFast propagates mid-crawl failures as errors instead of the
	// default best-effort partial result.
	FailFast bool
	// StaticFallback parses the page HTML with the static parser when the
	// page-context evaluation throws.
	StaticFallback bool
}

// Crawler drives the pagination state machine over a Page and accumulates
// filtered records.
type Crawler struct {
	opts    Options
	logger  *slog.Logger
	metrics *Metrics
}

// CrawlResult is what a run produced. Products holds everything accumulated
// before the run terminated, including when it was truncated by a failure.
type CrawlResult struct {
	Products     []models.ProductRecord
	PagesVisited int
	Reason       string
	Truncated    error
}

func NewCrawler(opts Options, logger *slog.Logger, metrics *Metrics) *Crawler {
	if opts.Selectors == (Selectors{}) {
		opts.Selectors = DefaultSelectors()
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 2 * time.Second
	}
	return &Crawler{
		opts:    opts,
		logger:  logger.With("component", "crawler"),
		metrics: metrics,
	}
}

// Run executes one crawl: build the search URL, navigate, then loop
// extract → decide → advance until the next-page control disappears,
// MaxPages is reached, the context ends, or a step fails.
//
// Failure semantics follow Options.FailFast. With FailFast off a mid-crawl
// failure terminates the loop and the already-accumulated records are
// returned with Truncated set; with it on the failure is also returned as
// the error. Spec validation errors always surface before any navigation.
func (c *Crawler) Run(ctx context.Context, page Page, spec SearchSpec) (*CrawlResult, error) {
	start := time.Now()
	defer func() { c.metrics.observeRun(time.Since(start)) }()

	searchURL, err := BuildSearchURL(c.opts.BaseURL, spec)
	if err != nil {
		c.metrics.incError(err)
		return nil, err
	}

	c.logger.Info("starting crawl",
		"search_term", spec.SearchTerm, "url", searchURL, "max_pages", spec.MaxPages)

	if err := page.Navigate(ctx, searchURL); err != nil {
		return c.truncate(&CrawlResult{Products: []models.ProductRecord{}}, err)
	}

	result := &CrawlResult{Products: []models.ProductRecord{}}
	seen := make(map[string]struct{})
	currentPage := 1

	for {
		if err := ctx.Err(); err != nil {
			return c.truncate(result, err)
		}

		records, err := c.extractPage(ctx, page, currentPage)
		if err != nil {
			return c.truncate(result, err)
		}

		kept := 0
		for _, rec := range records {
			if !Passes(rec, spec) {
				continue
			}
			// Cross-page reloads can repeat items; drop exact ID repeats.
			// Records without a real ID are never deduplicated.
			if rec.ID != models.TextSentinel {
				if _, dup := seen[rec.ID]; dup {
					continue
				}
				seen[rec.ID] = struct{}{}
			}
			result.Products = append(result.Products, rec)
			kept++
		}
		result.PagesVisited = currentPage
		c.metrics.incPage()
		c.metrics.addItems(len(records), kept)
		c.logger.Info("page extracted",
			"page", currentPage, "extracted", len(records), "kept", kept)

		hasNext, err := page.Exists(ctx, c.opts.Selectors.NextPage)
		if err != nil {
			return c.truncate(result, &NavigationError{Err: err})
		}
		if !hasNext {
			result.Reason = ReasonNoNextPage
			break
		}
		if currentPage >= spec.MaxPages {
			result.Reason = ReasonMaxPages
			break
		}

		if err := c.advance(ctx, page); err != nil {
			return c.truncate(result, err)
		}
		currentPage++
	}

	c.logger.Info("crawl finished",
		"pages", result.PagesVisited, "products", len(result.Products), "reason", result.Reason)
	return result, nil
}

// extractPage runs the extraction rule set inside the page. When the
// page-context evaluation throws, the static goquery parser over the page
// HTML is tried before the page is given up on.
func (c *Crawler) extractPage(ctx context.Context, page Page, pageNum int) ([]models.ProductRecord, error) {
	raw, err := page.Evaluate(ctx, extractItemsScript, c.opts.Selectors.asEvalArg())
	if err == nil {
		return decodeRecords(raw, time.Now()), nil
	}

	if !c.opts.StaticFallback {
		return nil, &ExtractionError{Page: pageNum, Err: err}
	}

	c.logger.Warn("page evaluation failed, falling back to static parse",
		"page", pageNum, "error", err)

	html, contentErr := page.Content(ctx)
	if contentErr != nil {
		return nil, &ExtractionError{Page: pageNum, Err: err}
	}
	records, parseErr := parser.ParseSearchResults(html, c.opts.BaseURL, c.itemSelectors(), time.Now())
	if parseErr != nil {
		return nil, &ExtractionError{Page: pageNum, Err: parseErr}
	}
	return records, nil
}

// advance clicks the next-page control and waits for the next page's items
// to render, falling back to a fixed settle delay when the wait fails.
func (c *Crawler) advance(ctx context.Context, page Page) error {
	if err := page.Click(ctx, c.opts.Selectors.NextPage); err != nil {
		return &NavigationError{Err: err}
	}
	if err := page.WaitForSelector(ctx, c.opts.Selectors.Item); err != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.opts.SettleDelay):
		}
	}
	return nil
}

func (c *Crawler) truncate(result *CrawlResult, err error) (*CrawlResult, error) {
	c.metrics.incError(err)
	result.Reason = ReasonTruncated
	result.Truncated = err
	c.logger.Error("crawl truncated",
		"pages", result.PagesVisited, "products", len(result.Products), "error", err)
	if c.opts.FailFast {
		return result, err
	}
	return result, nil
}

func (c *Crawler) itemSelectors() parser.ItemSelectors {
	s := c.opts.Selectors
	return parser.ItemSelectors{
		Item:        s.Item,
		IDAttribute: s.IDAttribute,
		Title:       s.Title,
		Price:       s.Price,
		Orders:      s.Orders,
		Rating:      s.Rating,
		Link:        s.Link,
	}
}
