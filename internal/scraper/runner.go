package scraper

import (
	"context"
	"log/slog"

	"github.com/shopcrawl/catalog-scraper/internal/models"
)

// PageSession is a Page whose underlying browser resources the holder must
// release. Exactly one crawl run owns a session at a time.
type PageSession interface {
	Page
	Close() error
}

// SessionFactory opens fresh sessions, one per run.
type SessionFactory interface {
	NewSession(ctx context.Context) (PageSession, error)
}

// Runner ties the pipeline together: acquire a session, crawl, assemble the
// report, release the session. The session is closed on every exit path.
type Runner struct {
	sessions SessionFactory
	crawler  *Crawler
	logger   *slog.Logger
}

func NewRunner(sessions SessionFactory, crawler *Crawler, logger *slog.Logger) *Runner {
	return &Runner{
		sessions: sessions,
		crawler:  crawler,
		logger:   logger.With("component", "runner"),
	}
}

// Run executes one crawl run for spec. The returned CrawlResult is non-nil
// whenever the crawl loop started, so callers can inspect partial results
// even when err is non-nil under the fail-fast policy.
func (r *Runner) Run(ctx context.Context, spec SearchSpec) (*models.RunReport, *CrawlResult, error) {
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}

	session, err := r.sessions.NewSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer session.Close()

	result, err := r.crawler.Run(ctx, session, spec)
	if err != nil {
		return nil, result, err
	}
	return AssembleReport(spec, result.Products), result, nil
}
