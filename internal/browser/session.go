package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/shopcrawl/catalog-scraper/internal/scraper"
)

// Sessions adapts the Browser to the scraper.SessionFactory interface.
func (b *Browser) Sessions() scraper.SessionFactory {
	return sessionFactory{b}
}

type sessionFactory struct {
	b *Browser
}

func (f sessionFactory) NewSession(ctx context.Context) (scraper.PageSession, error) {
	return f.b.NewSession(ctx)
}

// Session is one isolated browser context plus its active page, owned
// exclusively by a single crawl run. It implements scraper.Page.
type Session struct {
	context playwright.BrowserContext
	page    playwright.Page
	timeout time.Duration
	logger  *slog.Logger

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// NewSession opens a fresh context and page with the resource-loading policy
// installed. The session closes itself when ctx ends, so a run's deadline
// releases the underlying resources even mid-navigation. Callers must still
// defer Close; it is idempotent.
func (b *Browser) NewSession(ctx context.Context) (*Session, error) {
	browserCtx, err := b.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: &b.opts.UserAgent,
		Viewport: &playwright.Size{
			Width:  b.opts.ViewportWidth,
			Height: b.opts.ViewportHeight,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	s := &Session{
		context: browserCtx,
		page:    page,
		timeout: b.opts.NavigationTimeout,
		logger:  b.logger.With("component", "session"),
		done:    make(chan struct{}),
	}

	if b.opts.BlockResources {
		err := page.Route("**/*", func(route playwright.Route) {
			if shouldBlockResource(route.Request().ResourceType()) {
				route.Abort()
				return
			}
			route.Continue()
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to install request interception: %w", err)
		}
	}

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	return s, nil
}

// Navigate loads url and waits for the network to go idle, failing with a
// NavigationTimeoutError when the configured timeout elapses first.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(s.timeout.Milliseconds())),
	})
	if err != nil {
		if isTimeout(err) {
			return &scraper.NavigationTimeoutError{URL: url, Timeout: s.timeout, Err: err}
		}
		return &scraper.NavigationError{URL: url, Err: err}
	}
	return nil
}

// WaitForSelector blocks until selector is attached to the DOM or the
// navigation timeout elapses.
func (s *Session) WaitForSelector(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(s.timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to wait for %q: %w", selector, err)
	}
	return nil
}

// Evaluate runs script inside the rendered page's document context.
func (s *Session) Evaluate(ctx context.Context, script string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := s.page.Evaluate(script, arg)
	if err != nil {
		return nil, fmt.Errorf("page evaluation failed: %w", err)
	}
	return result, nil
}

// Exists reports whether selector matches at least one element.
func (s *Session) Exists(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	count, err := s.page.Locator(selector).Count()
	if err != nil {
		return false, fmt.Errorf("failed to count %q: %w", selector, err)
	}
	return count > 0, nil
}

// Click clicks the first element matching selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.page.Locator(selector).First().Click(); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

// Content returns the page's current HTML.
func (s *Session) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// Close releases the page and its context. Safe to call more than once and
// from the cancellation watcher; only the first call does the work.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)

		var errs []error
		if s.page != nil {
			if err := s.page.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close page: %w", err))
			}
		}
		if s.context != nil {
			if err := s.context.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close context: %w", err))
			}
		}
		if len(errs) > 0 {
			s.closeErr = fmt.Errorf("errors during session close: %v", errs)
			s.logger.Error("session close failed", "error", s.closeErr)
		}
	})
	return s.closeErr
}
