package db

import (
	"path/filepath"
	"testing"
)

func initTestDB(t *testing.T) {
	t.Helper()
	if err := InitDB(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { Close() })
}

func TestSaveAndLoadTrainingLog(t *testing.T) {
	initTestDB(t)
	if err := SaveTrainingRun("random_forest", 0.91, 1500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logs, err := LoadTrainingLog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(logs))
	}
	if logs[0].ModelName != "random_forest" || logs[0].Accuracy != 0.91 || logs[0].DataPoints != 1500 {
		t.Fatalf("unexpected row: %+v", logs[0])
	}
}

func TestSavePrediction(t *testing.T) {
	initTestDB(t)
	if err := SavePrediction("20240101000000-abcd1234", 1, 72.5, 23.4375); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SavePrediction("", 0, 1, 1); err == nil {
		t.Fatal("expected error for empty session id")
	}
}

func TestOperationsRequireInit(t *testing.T) {
	Close()
	if err := SaveTrainingRun("m", 0.5, 10); err == nil {
		t.Fatal("expected error when database not initialized")
	}
	if _, err := LoadTrainingLog(); err == nil {
		t.Fatal("expected error when database not initialized")
	}
}
