// Package browser owns the headless engine: launch configuration, the
// resource-loading policy and session lifecycle. All playwright use is
// isolated here so the crawl core only depends on the page capabilities it
// actually drives.
package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Options configures the launched engine and its sessions.
type Options struct {
	Headless          bool
	NavigationTimeout time.Duration
	UserAgent         string
	ViewportWidth     int
	ViewportHeight    int
	// BlockResources aborts image, stylesheet and font sub-resource requests
	// to cut page-load latency and bandwidth.
	BlockResources bool
}

func DefaultOptions() *Options {
	return &Options{
		Headless:          true,
		NavigationTimeout: 60 * time.Second,
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:     1920,
		ViewportHeight:    1080,
		BlockResources:    true,
	}
}

// Browser wraps one launched engine. Sessions are created per crawl run and
// never shared across runs.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    *Options
	logger  *slog.Logger
}

func New(opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 60 * time.Second
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--user-agent=" + opts.UserAgent,
		},
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Browser{
		pw:      pw,
		browser: b,
		opts:    opts,
		logger:  slog.Default().With("component", "browser"),
	}, nil
}

// Close stops the engine. Sessions created from this Browser become unusable.
func (b *Browser) Close() error {
	var errs []error

	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

// shouldBlockResource classifies sub-resource types the loading policy
// aborts. Documents, scripts and XHR always proceed.
func shouldBlockResource(resourceType string) bool {
	switch strings.ToLower(resourceType) {
	case "image", "stylesheet", "font":
		return true
	default:
		return false
	}
}

// isTimeout recognizes the engine's navigation-timeout failures.
func isTimeout(err error) bool {
	var pwErr *playwright.Error
	if errors.As(err, &pwErr) {
		return pwErr.Name == "TimeoutError"
	}
	return strings.Contains(err.Error(), "Timeout")
}
