package scraper

import (
	"testing"

	"github.com/shopcrawl/catalog-scraper/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPasses(t *testing.T) {
	tests := []struct {
		name   string
		record models.ProductRecord
		spec   SearchSpec
		want   bool
	}{
		{"no threshold always passes", models.ProductRecord{OrderCount: 0}, SearchSpec{}, true},
		{"above threshold", models.ProductRecord{OrderCount: 60}, SearchSpec{MinOrderCount: intPtr(50)}, true},
		{"at threshold", models.ProductRecord{OrderCount: 50}, SearchSpec{MinOrderCount: intPtr(50)}, true},
		{"below threshold", models.ProductRecord{OrderCount: 10}, SearchSpec{MinOrderCount: intPtr(50)}, false},
		{"zero count below threshold", models.ProductRecord{OrderCount: 0}, SearchSpec{MinOrderCount: intPtr(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Passes(tt.record, tt.spec))
		})
	}
}

func TestPassesIdempotent(t *testing.T) {
	record := models.ProductRecord{OrderCount: 42}
	spec := SearchSpec{MinOrderCount: intPtr(40)}

	first := Passes(record, spec)
	second := Passes(record, spec)
	assert.Equal(t, first, second)
	assert.True(t, first)
}
