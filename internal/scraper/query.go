package scraper

import (
	"fmt"
	"net/url"
	"strconv"
)

// BuildSearchURL turns a validated SearchSpec into the canonical search URL
// for the catalog. It is a pure function of its inputs: the same spec always
// yields the same URL, and absent price bounds never emit empty parameters.
func BuildSearchURL(baseURL string, spec SearchSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base url: %w", err)
	}

	q := u.Query()
	q.Set("SearchText", spec.SearchTerm)
	if spec.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*spec.MinPrice, 'f', -1, 64))
	}
	if spec.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*spec.MaxPrice, 'f', -1, 64))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
