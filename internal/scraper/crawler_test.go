package scraper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePage simulates the rendered catalog: a sequence of result pages, each
// with items in the raw shape the extraction script produces.
type fakePage struct {
	pages   [][]map[string]any
	hasNext []bool

	current   int
	navErr    error
	evalErr   map[int]error // page index -> evaluation failure
	clickErr  map[int]error // page index -> next-click failure
	html      map[int]string
	navigated []string
	evals     int
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	return p.navErr
}

func (p *fakePage) WaitForSelector(context.Context, string) error {
	return nil
}

func (p *fakePage) Evaluate(context.Context, string, any) (any, error) {
	p.evals++
	if err := p.evalErr[p.current]; err != nil {
		return nil, err
	}
	items := p.pages[p.current]
	raw := make([]any, 0, len(items))
	for _, item := range items {
		raw = append(raw, any(item))
	}
	return raw, nil
}

func (p *fakePage) Exists(context.Context, string) (bool, error) {
	return p.hasNext[p.current], nil
}

func (p *fakePage) Click(context.Context, string) error {
	if err := p.clickErr[p.current]; err != nil {
		return err
	}
	p.current++
	return nil
}

func (p *fakePage) Content(context.Context) (string, error) {
	if html, ok := p.html[p.current]; ok {
		return html, nil
	}
	return "", errors.New("content unavailable")
}

func rawItem(id, orders string) map[string]any {
	return map[string]any{
		"id":             id,
		"title":          "Item " + id,
		"priceText":      "US $19.99",
		"orderCountText": orders,
		"rating":         "4.5",
		"link":           "https://catalog.example.com/item/" + id,
	}
}

func testCrawler(t *testing.T, opts Options) *Crawler {
	t.Helper()
	opts.BaseURL = testBaseURL
	opts.SettleDelay = time.Millisecond
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCrawler(opts, logger, NewMetrics())
}

func TestRunFiltersByOrderCount(t *testing.T) {
	// Scenario: one page, three items with order counts 10, 60 and 200 and a
	// threshold of 50 keeps exactly the last two.
	page := &fakePage{
		pages: [][]map[string]any{{
			rawItem("a", "10 orders"),
			rawItem("b", "60 orders"),
			rawItem("c", "200 orders"),
		}},
		hasNext: []bool{false},
	}

	c := testCrawler(t, Options{})
	result, err := c.Run(context.Background(), page, SearchSpec{
		SearchTerm:    "smartphone",
		MinOrderCount: intPtr(50),
		MaxPages:      1,
	})
	require.NoError(t, err)

	require.Len(t, result.Products, 2)
	assert.Equal(t, "b", result.Products[0].ID)
	assert.Equal(t, 60, result.Products[0].OrderCount)
	assert.Equal(t, "c", result.Products[1].ID)
	assert.Equal(t, 200, result.Products[1].OrderCount)
	assert.Equal(t, 1, result.PagesVisited)
}

func TestRunTerminatesOnMissingNextControl(t *testing.T) {
	// Pages 1 and 2 have a next control, page 3 does not: all three pages
	// are visited and the loop ends on the missing control, not the cap.
	page := &fakePage{
		pages: [][]map[string]any{
			{rawItem("p1", "100")},
			{rawItem("p2", "100")},
			{rawItem("p3", "100")},
		},
		hasNext: []bool{true, true, false},
	}

	c := testCrawler(t, Options{})
	result, err := c.Run(context.Background(), page, SearchSpec{SearchTerm: "x", MaxPages: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, result.PagesVisited)
	assert.Len(t, result.Products, 3)
	assert.Equal(t, ReasonNoNextPage, result.Reason)
	assert.Nil(t, result.Truncated)
}

func TestRunNeverExceedsMaxPages(t *testing.T) {
	// Every page claims to have a next control; the cap must stop the run.
	page := &fakePage{
		pages: [][]map[string]any{
			{rawItem("1", "1")}, {rawItem("2", "1")}, {rawItem("3", "1")},
			{rawItem("4", "1")}, {rawItem("5", "1")},
		},
		hasNext: []bool{true, true, true, true, true},
	}

	c := testCrawler(t, Options{})
	result, err := c.Run(context.Background(), page, SearchSpec{SearchTerm: "x", MaxPages: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, result.PagesVisited)
	assert.Equal(t, 2, page.evals, "extract cycles must not exceed maxPages")
	assert.Equal(t, ReasonMaxPages, result.Reason)
}

func TestRunReturnsPartialResultOnMidCrawlFailure(t *testing.T) {
	// Scenario: advancing to page 2 fails. The page-1 records survive and
	// the failure is recorded, not propagated.
	page := &fakePage{
		pages: [][]map[string]any{
			{rawItem("p1a", "80"), rawItem("p1b", "90")},
			{rawItem("p2a", "80")},
		},
		hasNext:  []bool{true, true},
		clickErr: map[int]error{0: errors.New("net::ERR_CONNECTION_RESET")},
	}

	c := testCrawler(t, Options{})
	result, err := c.Run(context.Background(), page, SearchSpec{SearchTerm: "x", MaxPages: 3})
	require.NoError(t, err)

	require.Len(t, result.Products, 2)
	assert.Equal(t, "p1a", result.Products[0].ID)
	assert.Equal(t, "p1b", result.Products[1].ID)
	assert.Equal(t, 1, result.PagesVisited)
	assert.Equal(t, ReasonTruncated, result.Reason)
	require.Error(t, result.Truncated)
	var navErr *NavigationError
	assert.ErrorAs(t, result.Truncated, &navErr)
}

func TestRunFailFastPropagatesError(t *testing.T) {
	page := &fakePage{
		pages:    [][]map[string]any{{rawItem("p1", "80")}},
		hasNext:  []bool{true},
		clickErr: map[int]error{0: errors.New("click failed")},
	}

	c := testCrawler(t, Options{FailFast: true})
	result, err := c.Run(context.Background(), page, SearchSpec{SearchTerm: "x", MaxPages: 2})

	require.Error(t, err)
	require.NotNil(t, result, "accumulated records ride along with the error")
	assert.Len(t, result.Products, 1)
}

func TestRunNavigationFailureYieldsEmptyPartial(t *testing.T) {
	page := &fakePage{
		pages:   [][]map[string]any{{}},
		hasNext: []bool{false},
		navErr:  &NavigationTimeoutError{URL: testBaseURL, Timeout: time.Minute},
	}

	c := testCrawler(t, Options{})
	result, err := c.Run(context.Background(), page, SearchSpec{SearchTerm: "x", MaxPages: 1})
	require.NoError(t, err)

	assert.Empty(t, result.Products)
	assert.Equal(t, 0, result.PagesVisited)
	assert.Equal(t, ReasonTruncated, result.Reason)
}

func TestRunRejectsInvalidSpecBeforeNavigation(t *testing.T) {
	page := &fakePage{pages: [][]map[string]any{{}}, hasNext: []bool{false}}

	c := testCrawler(t, Options{})
	_, err := c.Run(context.Background(), page, SearchSpec{SearchTerm: "", MaxPages: 1})

	var specErr *SpecError
	require.ErrorAs(t, err, &specErr)
	assert.Empty(t, page.navigated, "invalid spec must not reach the session")
}

func TestRunDeduplicatesAcrossPages(t *testing.T) {
	// Page 2 reloads one item from page 1; the repeat is dropped, but
	// sentinel-ID records are never deduplicated.
	noID1 := rawItem("", "70")
	noID2 := rawItem("", "70")
	page := &fakePage{
		pages: [][]map[string]any{
			{rawItem("dup", "100"), noID1},
			{rawItem("dup", "100"), rawItem("new", "100"), noID2},
		},
		hasNext: []bool{true, false},
	}

	c := testCrawler(t, Options{})
	result, err := c.Run(context.Background(), page, SearchSpec{SearchTerm: "x", MaxPages: 2})
	require.NoError(t, err)

	ids := make([]string, 0, len(result.Products))
	for _, p := range result.Products {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"dup", "N/A", "new", "N/A"}, ids)
}

func TestRunExtractionFallsBackToStaticParse(t *testing.T) {
	html := `<html><body>
		<div class="search-item-card" data-product-id="f1">
			<span class="item-title">Fallback Item</span>
			<span class="item-price">US $5.00</span>
			<span class="item-orders">321 orders</span>
			<a class="item-link" href="/item/f1"></a>
		</div>
	</body></html>`

	page := &fakePage{
		pages:   [][]map[string]any{{}},
		hasNext: []bool{false},
		evalErr: map[int]error{0: errors.New("Evaluation failed")},
		html:    map[int]string{0: html},
	}

	c := testCrawler(t, Options{StaticFallback: true})
	result, err := c.Run(context.Background(), page, SearchSpec{SearchTerm: "x", MaxPages: 1})
	require.NoError(t, err)

	require.Len(t, result.Products, 1)
	assert.Equal(t, "f1", result.Products[0].ID)
	assert.Equal(t, "Fallback Item", result.Products[0].Title)
	assert.Equal(t, 321, result.Products[0].OrderCount)
	assert.Nil(t, result.Truncated)
}

func TestRunExtractionFailureWithoutFallbackTruncates(t *testing.T) {
	page := &fakePage{
		pages:   [][]map[string]any{{}},
		hasNext: []bool{false},
		evalErr: map[int]error{0: errors.New("Evaluation failed")},
	}

	c := testCrawler(t, Options{})
	result, err := c.Run(context.Background(), page, SearchSpec{SearchTerm: "x", MaxPages: 1})
	require.NoError(t, err)

	assert.Equal(t, ReasonTruncated, result.Reason)
	var extractErr *ExtractionError
	require.ErrorAs(t, result.Truncated, &extractErr)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	page := &fakePage{
		pages:   [][]map[string]any{{rawItem("1", "1")}},
		hasNext: []bool{true},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testCrawler(t, Options{})
	result, err := c.Run(ctx, page, SearchSpec{SearchTerm: "x", MaxPages: 5})
	require.NoError(t, err)

	assert.Equal(t, ReasonTruncated, result.Reason)
	assert.ErrorIs(t, result.Truncated, context.Canceled)
}
