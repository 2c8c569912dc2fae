// Package storage persists run reports as JSON files.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopcrawl/catalog-scraper/internal/models"
)

// ReportWriter writes RunReports to disk.
type ReportWriter struct {
	dir string
}

func NewReportWriter(dir string) (*ReportWriter, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &ReportWriter{dir: dir}, nil
}

// Write serializes the report to filename inside the writer's directory.
// The file is written to a temp path first and renamed for atomicity.
func (w *ReportWriter) Write(filename string, report *models.RunReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(w.dir, filename)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}
	return path, nil
}

// Read loads a previously written report.
func (w *ReportWriter) Read(filename string) (*models.RunReport, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, filename))
	if err != nil {
		return nil, err
	}
	var report models.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}
