// Package report writes one search run's artifacts to disk: a plain-text
// plan file, a per-iteration JSON log, and a JSON run report, using a
// MkdirAll + MarshalIndent + WriteFile + structured-log pattern throughout.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Status is the terminal state of one search run.
type Status string

const (
	StatusSolved    Status = "solved"
	StatusExhausted Status = "exhausted"
	StatusTimeOut   Status = "timeout"
	StatusOOM       Status = "oom"
)

// RunReport summarizes one completed search run.
type RunReport struct {
	RunID      string        `json:"run_id"`
	Status     Status        `json:"status"`
	PlanLength int           `json:"plan_length"`
	Cost       float32       `json:"cost"`
	Expansions int           `json:"expansions"`
	Generated  int           `json:"generated"`
	Deadends   int           `json:"deadends"`
	BestGC     int           `json:"best_goal_count"`
	Elapsed    time.Duration `json:"elapsed"`
}

// IterationLogEntry records one expansion step, for the JSON iteration log.
type IterationLogEntry struct {
	Iteration int     `json:"iteration"`
	NodeG     float32 `json:"g"`
	GC        int     `json:"gc"`
	H1        float64 `json:"h1"`
	AltH1     float64 `json:"alt_h1"`
	Action    string  `json:"action"`
}

// Writer persists run artifacts under baseDir/<runID>/.
type Writer struct {
	baseDir string
}

// NewWriter builds a report writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

func (w *Writer) runDir(runID string) string {
	return filepath.Join(w.baseDir, runID)
}

// WritePlan writes one action signature per line, in plan order.
func (w *Writer) WritePlan(runID string, actionSigs []string) error {
	dir := w.runDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}
	path := filepath.Join(dir, "plan.txt")
	content := ""
	for _, sig := range actionSigs {
		content += sig + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write plan file: %w", err)
	}
	log.Info("plan written", "path", path, "actions", len(actionSigs))
	return nil
}

// WriteIterationLog writes the full per-iteration log as a JSON array.
func (w *Writer) WriteIterationLog(runID string, entries []IterationLogEntry) error {
	dir := w.runDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}
	path := filepath.Join(dir, "iterations.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal iteration log: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write iteration log: %w", err)
	}
	log.Info("iteration log written", "path", path, "entries", len(entries))
	return nil
}

// WriteRunReport writes the final run report as JSON.
func (w *Writer) WriteRunReport(runID string, report *RunReport) error {
	dir := w.runDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}
	path := filepath.Join(dir, "report.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write run report: %w", err)
	}
	log.Info("run report written", "path", path, "status", report.Status)
	return nil
}
