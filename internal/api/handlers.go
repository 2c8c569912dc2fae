// Package api exposes the crawl pipeline over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopcrawl/catalog-scraper/internal/jobs"
	"github.com/shopcrawl/catalog-scraper/internal/scraper"
)

// Default request values for absent fields.
const (
	DefaultSearchTerm    = "smartphone"
	DefaultMinPrice      = 100.0
	DefaultMaxPrice      = 500.0
	DefaultMinOrderCount = 50
	DefaultMaxPages      = 3
)

type Handlers struct {
	runner        jobs.CrawlRunner
	jobs          *jobs.Manager
	maxPagesLimit int
	logger        *slog.Logger
}

func NewHandlers(runner jobs.CrawlRunner, manager *jobs.Manager, maxPagesLimit int, logger *slog.Logger) *Handlers {
	return &Handlers{
		runner:        runner,
		jobs:          manager,
		maxPagesLimit: maxPagesLimit,
		logger:        logger.With("component", "api"),
	}
}

// CrawlRequest is the inbound request shape. Absent fields take the
// documented defaults; explicit nulls are treated the same way.
type CrawlRequest struct {
	SearchTerm    *string  `json:"searchTerm"`
	MinPrice      *float64 `json:"minPrice"`
	MaxPrice      *float64 `json:"maxPrice"`
	MinOrderCount *int     `json:"minOrderCount"`
	MaxPages      *int     `json:"maxPages"`
}

// ToSpec applies defaults and the server-side page cap.
func (r CrawlRequest) ToSpec(maxPagesLimit int) scraper.SearchSpec {
	spec := scraper.SearchSpec{
		SearchTerm: DefaultSearchTerm,
		MaxPages:   DefaultMaxPages,
	}

	if r.SearchTerm != nil {
		spec.SearchTerm = *r.SearchTerm
	}
	if r.MinPrice != nil {
		spec.MinPrice = r.MinPrice
	} else {
		minPrice := DefaultMinPrice
		spec.MinPrice = &minPrice
	}
	if r.MaxPrice != nil {
		spec.MaxPrice = r.MaxPrice
	} else {
		maxPrice := DefaultMaxPrice
		spec.MaxPrice = &maxPrice
	}
	if r.MinOrderCount != nil {
		spec.MinOrderCount = r.MinOrderCount
	} else {
		minOrders := DefaultMinOrderCount
		spec.MinOrderCount = &minOrders
	}
	if r.MaxPages != nil {
		spec.MaxPages = *r.MaxPages
	}
	if maxPagesLimit > 0 && spec.MaxPages > maxPagesLimit {
		spec.MaxPages = maxPagesLimit
	}
	return spec
}

// Crawl runs one crawl synchronously and responds with the RunReport.
func (h *Handlers) Crawl(w http.ResponseWriter, r *http.Request) {
	var req CrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	spec := req.ToSpec(h.maxPagesLimit)
	report, _, err := h.runner.Run(r.Context(), spec)
	if err != nil {
		h.logger.Error("crawl failed", "search_term", spec.SearchTerm, "error", err)
		status, category := classifyError(err)
		h.respondError(w, status, category, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, report)
}

// CreateJobResponse is returned when an async crawl is accepted.
type CreateJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// CreateJob queues an asynchronous crawl.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	job, err := h.jobs.Submit(r.Context(), req.ToSpec(h.maxPagesLimit))
	if err != nil {
		status, category := classifyError(err)
		h.respondError(w, status, category, err.Error())
		return
	}

	h.respondJSON(w, http.StatusAccepted, CreateJobResponse{
		JobID:  job.ID,
		Status: string(job.Status),
	})
}

// GetJob returns a job's current state.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.jobs.GetJob(r.Context(), jobID)
	if errors.Is(err, jobs.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get job", "id", jobID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal", "failed to get job")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

// GetJobReport returns a finished job's report.
func (h *Handlers) GetJobReport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	report, err := h.jobs.GetReport(r.Context(), jobID)
	if errors.Is(err, jobs.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "not_found", "report not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get report", "id", jobID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal", "failed to get report")
		return
	}

	h.respondJSON(w, http.StatusOK, report)
}

// classifyError maps pipeline errors to a status code and a fixed category.
func classifyError(err error) (int, string) {
	var spec *scraper.SpecError
	if errors.As(err, &spec) {
		return http.StatusBadRequest, "invalid_spec"
	}
	var timeout *scraper.NavigationTimeoutError
	if errors.As(err, &timeout) {
		return http.StatusGatewayTimeout, "navigation_timeout"
	}
	var nav *scraper.NavigationError
	if errors.As(err, &nav) {
		return http.StatusBadGateway, "navigation_failed"
	}
	var extract *scraper.ExtractionError
	if errors.As(err, &extract) {
		return http.StatusBadGateway, "extraction_failed"
	}
	return http.StatusInternalServerError, "internal"
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, category, detail string) {
	h.respondJSON(w, status, map[string]string{
		"error":  category,
		"detail": detail,
	})
}
