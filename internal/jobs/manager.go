// Package jobs runs crawls asynchronously: submitted specs are queued and a
// fixed pool of workers executes them, each run with its own browser session.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopcrawl/catalog-scraper/internal/database"
	"github.com/shopcrawl/catalog-scraper/internal/models"
	"github.com/shopcrawl/catalog-scraper/internal/scraper"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job tracks one submitted crawl.
type Job struct {
	ID            string             `json:"id"`
	Spec          scraper.SearchSpec `json:"spec"`
	Status        Status             `json:"status"`
	PagesVisited  int                `json:"pages_visited"`
	ProductsFound int                `json:"products_found"`
	Truncated     bool               `json:"truncated"`
	Error         string             `json:"error,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	StartedAt     *time.Time         `json:"started_at,omitempty"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
}

// CrawlRunner is the synchronous crawl operation workers invoke.
// scraper.Runner implements it.
type CrawlRunner interface {
	Run(ctx context.Context, spec scraper.SearchSpec) (*models.RunReport, *scraper.CrawlResult, error)
}

type Manager struct {
	runner     CrawlRunner
	store      Store
	db         *database.DB // nil when persistence is not configured
	queue      *jobQueue
	workers    int
	runTimeout time.Duration
	logger     *slog.Logger
	wg         sync.WaitGroup
}

func NewManager(runner CrawlRunner, store Store, db *database.DB, workers int, runTimeout time.Duration, logger *slog.Logger) *Manager {
	if workers < 1 {
		workers = 1
	}
	return &Manager{
		runner:     runner,
		store:      store,
		db:         db,
		queue:      newJobQueue(),
		workers:    workers,
		runTimeout: runTimeout,
		logger:     logger.With("component", "job_manager"),
	}
}

// Start launches the worker pool. Workers exit when ctx ends or Stop is
// called.
func (m *Manager) Start(ctx context.Context) {
	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.worker(ctx)
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (m *Manager) Stop() {
	m.queue.Close()
	m.wg.Wait()
}

// Submit validates the spec, registers a pending job and queues it.
func (m *Manager) Submit(ctx context.Context, spec scraper.SearchSpec) (*Job, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	job := &Job{
		ID:        uuid.New().String(),
		Spec:      spec,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	if err := m.store.SaveJob(ctx, job); err != nil {
		return nil, err
	}
	if err := m.queue.Push(job.ID); err != nil {
		return nil, err
	}

	m.logger.Info("job submitted", "id", job.ID, "search_term", spec.SearchTerm)
	return job, nil
}

// GetJob returns the job's current state.
func (m *Manager) GetJob(ctx context.Context, id string) (*Job, error) {
	return m.store.GetJob(ctx, id)
}

// GetReport returns the finished job's report.
func (m *Manager) GetReport(ctx context.Context, id string) (*models.RunReport, error) {
	return m.store.GetReport(ctx, id)
}

func (m *Manager) worker(ctx context.Context) {
	defer m.wg.Done()

	for {
		id, err := m.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				return
			}
			m.logger.Error("failed to pop job", "error", err)
			continue
		}
		m.process(ctx, id)
	}
}

func (m *Manager) process(ctx context.Context, id string) {
	job, err := m.store.GetJob(ctx, id)
	if err != nil {
		m.logger.Error("failed to load job", "id", id, "error", err)
		return
	}

	now := time.Now()
	job.Status = StatusRunning
	job.StartedAt = &now
	if err := m.store.SaveJob(ctx, job); err != nil {
		m.logger.Error("failed to mark job running", "id", id, "error", err)
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if m.runTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, m.runTimeout)
		defer cancel()
	}

	report, result, runErr := m.runner.Run(runCtx, job.Spec)

	completed := time.Now()
	job.CompletedAt = &completed

	if runErr != nil {
		job.Status = StatusFailed
		job.Error = runErr.Error()
	} else {
		job.Status = StatusCompleted
	}
	if result != nil {
		job.PagesVisited = result.PagesVisited
		job.ProductsFound = len(result.Products)
		job.Truncated = result.Truncated != nil
	}

	if report != nil {
		if err := m.store.SaveReport(ctx, job.ID, report); err != nil {
			m.logger.Error("failed to save report", "id", id, "error", err)
		}
		if m.db != nil {
			if err := m.db.SaveRun(ctx, job.ID, job.Spec.SearchTerm, job.PagesVisited, report.Products); err != nil {
				m.logger.Error("failed to persist run", "id", id, "error", err)
			}
		}
	}

	if err := m.store.SaveJob(ctx, job); err != nil {
		m.logger.Error("failed to save finished job", "id", id, "error", err)
	}

	m.logger.Info("job finished",
		"id", job.ID, "status", job.Status,
		"products", job.ProductsFound, "pages", job.PagesVisited)
}
