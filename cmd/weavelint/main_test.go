package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/weavelint/weavelint/pkg/analysis"
	"github.com/weavelint/weavelint/pkg/config"
)

func TestWriteReport_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	cfg := &config.Config{Format: "json", Out: path}

	if err := writeReport(cfg, &analysis.Result{RunID: "r1"}); err != nil {
		t.Fatalf("writeReport returned %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Report file missing: %v", err)
	}
	if !strings.Contains(string(data), "r1") {
		t.Error("Report file should carry the run ID")
	}
}

func TestWriteReport_UnwritablePathSurfaces(t *testing.T) {
	cfg := &config.Config{
		Format: "json",
		Out:    filepath.Join(t.TempDir(), "missing", "report.json"),
	}

	// The watch loop logs this error rather than dropping it
	err := writeReport(cfg, &analysis.Result{})
	if err == nil {
		t.Fatal("Expected an error for an unwritable report path")
	}
	if !strings.Contains(err.Error(), "creating report file") {
		t.Errorf("Unexpected error: %v", err)
	}
}
