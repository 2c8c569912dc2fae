package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SpecError indicates an invalid SearchSpec. It is reported before any
// session is opened or network activity happens.
type SpecError struct {
	Field  string
	Reason string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("invalid search spec: %s: %s", e.Field, e.Reason)
}

// NavigationTimeoutError indicates the session did not reach a usable page
// state before the navigation timeout elapsed.
type NavigationTimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigation timeout after %s: %s", e.Timeout, e.URL)
}

func (e *NavigationTimeoutError) Unwrap() error {
	return e.Err
}

// NavigationError indicates a navigation failure other than a timeout.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation failed for %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// ExtractionError indicates the page-context evaluation threw, typically
// because the target markup changed shape.
type ExtractionError struct {
	Page int
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed on page %d: %v", e.Page, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// errorTypeLabel maps an error to the metrics label for its category.
func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var spec *SpecError
	if errors.As(err, &spec) {
		return "spec"
	}
	var timeout *NavigationTimeoutError
	if errors.As(err, &timeout) {
		return "navigation_timeout"
	}
	var nav *NavigationError
	if errors.As(err, &nav) {
		return "navigation"
	}
	var extract *ExtractionError
	if errors.As(err, &extract) {
		return "extraction"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "unknown"
}
