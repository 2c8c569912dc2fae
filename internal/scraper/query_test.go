package scraper

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://catalog.example.com/search"

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestBuildSearchURL(t *testing.T) {
	spec := SearchSpec{
		SearchTerm: "wireless earbuds",
		MinPrice:   floatPtr(10),
		MaxPrice:   floatPtr(49.99),
		MaxPages:   3,
	}

	got, err := BuildSearchURL(testBaseURL, spec)
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "wireless earbuds", q.Get("SearchText"))
	assert.Equal(t, "10", q.Get("minPrice"))
	assert.Equal(t, "49.99", q.Get("maxPrice"))
}

func TestBuildSearchURLDeterministic(t *testing.T) {
	spec := SearchSpec{SearchTerm: "usb-c hub", MinPrice: floatPtr(5), MaxPages: 1}

	first, err := BuildSearchURL(testBaseURL, spec)
	require.NoError(t, err)
	second, err := BuildSearchURL(testBaseURL, spec)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildSearchURLOmitsAbsentBounds(t *testing.T) {
	spec := SearchSpec{SearchTerm: "smartphone", MaxPages: 1}

	got, err := BuildSearchURL(testBaseURL, spec)
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)

	q := u.Query()
	_, hasMin := q["minPrice"]
	_, hasMax := q["maxPrice"]
	assert.False(t, hasMin, "minPrice must not be emitted when absent")
	assert.False(t, hasMax, "maxPrice must not be emitted when absent")
}

func TestBuildSearchURLEncodesTerm(t *testing.T) {
	spec := SearchSpec{SearchTerm: "kühlschrank & freezer 50%", MaxPages: 1}

	got, err := BuildSearchURL(testBaseURL, spec)
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "kühlschrank & freezer 50%", u.Query().Get("SearchText"))
}

func TestBuildSearchURLRejectsInvalidSpec(t *testing.T) {
	_, err := BuildSearchURL(testBaseURL, SearchSpec{SearchTerm: "", MaxPages: 1})
	var specErr *SpecError
	require.ErrorAs(t, err, &specErr)
}
