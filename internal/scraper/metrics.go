package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawl pipeline.
type Metrics struct {
	Registry           *prometheus.Registry
	PagesCrawledTotal  prometheus.Counter
	ItemsExtractedTotal prometheus.Counter
	ItemsKeptTotal     prometheus.Counter
	ErrorsTotal        *prometheus.CounterVec
	CrawlDuration      prometheus.Histogram
}

// NewMetrics constructs and registers all collectors on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_crawled_total",
		Help: "Total result pages extracted.",
	})
	extracted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_items_extracted_total",
		Help: "Total catalog items extracted before filtering.",
	})
	kept := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_items_kept_total",
		Help: "Total catalog items that passed the filter.",
	})
	errorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crawler_errors_total",
		Help: "Total crawl errors by type.",
	}, []string{"error_type"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crawler_run_duration_seconds",
		Help:    "Duration of complete crawl runs.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	registry.MustRegister(pages, extracted, kept, errorsTotal, duration)

	return &Metrics{
		Registry:            registry,
		PagesCrawledTotal:   pages,
		ItemsExtractedTotal: extracted,
		ItemsKeptTotal:      kept,
		ErrorsTotal:         errorsTotal,
		CrawlDuration:       duration,
	}
}

func (m *Metrics) incPage() {
	if m == nil {
		return
	}
	m.PagesCrawledTotal.Inc()
}

func (m *Metrics) addItems(extracted, kept int) {
	if m == nil {
		return
	}
	m.ItemsExtractedTotal.Add(float64(extracted))
	m.ItemsKeptTotal.Add(float64(kept))
}

func (m *Metrics) incError(err error) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorTypeLabel(err)).Inc()
}

func (m *Metrics) observeRun(d time.Duration) {
	if m == nil {
		return
	}
	m.CrawlDuration.Observe(d.Seconds())
}
