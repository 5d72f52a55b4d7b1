package dataset

import (
	"math"
	"path/filepath"
	"testing"
)

func loadSample(t *testing.T) *Table {
	t.Helper()
	table, err := Load(filepath.Join("testdata", "sample.csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return table
}

func TestNormalizeProducesFiniteVectors(t *testing.T) {
	ds, stats, err := Normalize(loadSample(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalRows != 12 {
		t.Fatalf("expected 12 raw rows, got %d", stats.TotalRows)
	}
	if stats.Kept != 11 || stats.DroppedLabel != 1 {
		t.Fatalf("expected 11 kept / 1 dropped, got %d / %d", stats.Kept, stats.DroppedLabel)
	}
	if len(ds.Features) != len(ds.Labels) {
		t.Fatalf("features/labels length mismatch: %d vs %d", len(ds.Features), len(ds.Labels))
	}
	for i, vector := range ds.Features {
		if len(vector) != len(FeatureNames()) {
			t.Fatalf("row %d: expected %d features, got %d", i, len(FeatureNames()), len(vector))
		}
		for j, value := range vector {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				t.Fatalf("row %d feature %d is not finite: %f", i, j, value)
			}
		}
	}
	for i, label := range ds.Labels {
		if label != 0 && label != 1 {
			t.Fatalf("row %d: label %d outside {0,1}", i, label)
		}
	}
}

func TestNormalizeCoercions(t *testing.T) {
	ds, _, err := Normalize(loadSample(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := ds.Features[0]
	if first[0] != 25 {
		t.Fatalf("expected age 25 from \"25 years\", got %f", first[0])
	}
	if first[2] != 5 {
		t.Fatalf("expected sleep bucket 5, got %f", first[2])
	}
	if first[3] != 15 {
		t.Fatalf("expected exercise bucket 15, got %f", first[3])
	}
	if first[4] != 1 || first[7] != 0 {
		t.Fatalf("unexpected binary coding: family=%f hirsutism=%f", first[4], first[7])
	}
}

func TestNormalizeImputesWithColumnMedian(t *testing.T) {
	ds, stats, err := Normalize(loadSample(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Imputed != 3 {
		t.Fatalf("expected 3 imputed cells, got %d", stats.Imputed)
	}
	// Kept-row index 6 is the source row with a blank age and an
	// unrecognized exercise bucket.
	if ds.Features[6][0] != 27 {
		t.Fatalf("expected imputed age 27, got %f", ds.Features[6][0])
	}
	if ds.Features[6][3] != 30 {
		t.Fatalf("expected imputed exercise 30, got %f", ds.Features[6][3])
	}
	// Kept-row index 7 has an unmapped yes/no cell.
	if ds.Features[7][5] != 0 {
		t.Fatalf("expected imputed binary 0, got %f", ds.Features[7][5])
	}
	if ds.Medians[0] != 27 {
		t.Fatalf("expected age median 27, got %f", ds.Medians[0])
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	table := loadSample(t)
	a, _, err := Normalize(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _, err := Normalize(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Features) != len(b.Features) {
		t.Fatalf("row counts differ: %d vs %d", len(a.Features), len(b.Features))
	}
	for i := range a.Features {
		if a.Labels[i] != b.Labels[i] {
			t.Fatalf("row %d: labels differ", i)
		}
		for j := range a.Features[i] {
			if a.Features[i][j] != b.Features[i][j] {
				t.Fatalf("row %d feature %d differs", i, j)
			}
		}
	}
	for j := range a.Medians {
		if a.Medians[j] != b.Medians[j] {
			t.Fatalf("median %d differs", j)
		}
	}
}

func TestNormalizeMissingColumn(t *testing.T) {
	table := &Table{
		Header: []string{"Age", "Weight_kg"},
		Rows:   [][]string{{"25", "60"}},
	}
	if _, _, err := Normalize(table); err == nil {
		t.Fatal("expected error for missing label column")
	}
}

func TestExtractDigits(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"25", 25, true},
		{"25 years", 25, true},
		{"age 31", 31, true},
		{"unknown", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := extractDigits(c.raw)
		if ok != c.ok || got != c.want {
			t.Fatalf("extractDigits(%q) = %f, %v; want %f, %v", c.raw, got, ok, c.want, c.ok)
		}
	}
}
