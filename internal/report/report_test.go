package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWritePlan(t *testing.T) {
	tmpDir := t.TempDir()
	w := NewWriter(tmpDir)

	sigs := []string{"move(a, b)", "pick-up(a)", "put-down(a)"}
	if err := w.WritePlan("run-1", sigs); err != nil {
		t.Fatalf("WritePlan: %v", err)
	}

	path := filepath.Join(tmpDir, "run-1", "plan.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read plan file: %v", err)
	}
	want := "move(a, b)\npick-up(a)\nput-down(a)\n"
	if string(data) != want {
		t.Errorf("plan file content = %q, want %q", string(data), want)
	}
}

func TestWritePlanEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	w := NewWriter(tmpDir)

	if err := w.WritePlan("run-empty", nil); err != nil {
		t.Fatalf("WritePlan: %v", err)
	}
	path := filepath.Join(tmpDir, "run-empty", "plan.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read plan file: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty plan file, got %q", string(data))
	}
}

func TestWriteIterationLog(t *testing.T) {
	tmpDir := t.TempDir()
	w := NewWriter(tmpDir)

	entries := []IterationLogEntry{
		{Iteration: 0, NodeG: 0, GC: 3, H1: 1, AltH1: 1, Action: "noop"},
		{Iteration: 1, NodeG: 1, GC: 2, H1: 2, AltH1: 1, Action: "move(a, b)"},
	}
	if err := w.WriteIterationLog("run-2", entries); err != nil {
		t.Fatalf("WriteIterationLog: %v", err)
	}

	path := filepath.Join(tmpDir, "run-2", "iterations.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read iteration log: %v", err)
	}
	var got []IterationLogEntry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal iteration log: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[1].Action != "move(a, b)" {
		t.Errorf("entry[1].Action = %q, want move(a, b)", got[1].Action)
	}
}

func TestWriteRunReport(t *testing.T) {
	tmpDir := t.TempDir()
	w := NewWriter(tmpDir)

	report := &RunReport{
		RunID:      "run-3",
		Status:     StatusSolved,
		PlanLength: 4,
		Cost:       4.0,
		Expansions: 10,
		Generated:  25,
		Deadends:   2,
		BestGC:     0,
		Elapsed:    250 * time.Millisecond,
	}
	if err := w.WriteRunReport("run-3", report); err != nil {
		t.Fatalf("WriteRunReport: %v", err)
	}

	path := filepath.Join(tmpDir, "run-3", "report.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read run report: %v", err)
	}
	var got RunReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal run report: %v", err)
	}
	if got.Status != StatusSolved {
		t.Errorf("Status = %q, want %q", got.Status, StatusSolved)
	}
	if got.Expansions != 10 {
		t.Errorf("Expansions = %d, want 10", got.Expansions)
	}
}

func TestWriterCreatesSeparateRunDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	w := NewWriter(tmpDir)

	if err := w.WritePlan("run-a", []string{"a"}); err != nil {
		t.Fatalf("WritePlan run-a: %v", err)
	}
	if err := w.WritePlan("run-b", []string{"b"}); err != nil {
		t.Fatalf("WritePlan run-b: %v", err)
	}

	for _, runID := range []string{"run-a", "run-b"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, "plan.txt")); err != nil {
			t.Errorf("expected plan.txt for %s: %v", runID, err)
		}
	}
}
