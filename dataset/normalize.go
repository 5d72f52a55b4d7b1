package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// LabelColumn is the target column of the source dataset.
const LabelColumn = "PCOS"

var featureNames = []string{
	"Age",
	"Weight_kg",
	"Sleep_Hours",
	"Exercise_Duration",
	"Family_History_PCOS",
	"Menstrual_Irregularity",
	"Hormonal_Imbalance",
	"Hirsutism",
	"Mental_Health",
	"Insulin_Resistance",
	"Diabetes",
	"Smoking",
}

var binaryColumns = map[string]bool{
	"Family_History_PCOS":    true,
	"Menstrual_Irregularity": true,
	"Hormonal_Imbalance":     true,
	"Hirsutism":              true,
	"Mental_Health":          true,
	"Insulin_Resistance":     true,
	"Diabetes":               true,
	"Smoking":                true,
}

var sleepBuckets = map[string]float64{
	"Less than 6 hours": 5,
	"6-8 hours":         7,
	"9-12 hours":        10.5,
	"More than 8 hours": 9,
}

var exerciseBuckets = map[string]float64{
	"Less than 30 minutes": 15,
	"30 minutes":           30,
	"30 minutes to 1 hour": 45,
	"More than 1 hour":     75,
}

// FeatureNames returns the canonical feature ordering. Every feature vector
// produced by this package, and every vector fed to the scorer, follows it.
func FeatureNames() []string {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return names
}

// Dataset is the normalized, labeled training set together with the
// imputation medians computed at load time. The medians are part of the
// training contract: single-record scoring must reuse them.
type Dataset struct {
	Features [][]float64
	Labels   []int
	Medians  []float64
}

// NormalizeStats counts what happened to the raw rows during normalization.
type NormalizeStats struct {
	TotalRows    int
	Kept         int
	DroppedLabel int
	Imputed      int
}

// Normalize coerces the raw table into the labeled dataset. Malformed cell
// values become missing and are filled with the column median; rows whose
// label cell is not a recognizable yes/no are dropped. Medians are computed
// over the full column before label filtering, matching the training-time
// behavior the scorer depends on.
func Normalize(t *Table) (*Dataset, *NormalizeStats, error) {
	labelIdx := t.columnIndex(LabelColumn)
	if labelIdx < 0 {
		return nil, nil, fmt.Errorf("dataset missing column %q", LabelColumn)
	}
	colIdx := make([]int, len(featureNames))
	for i, name := range featureNames {
		idx := t.columnIndex(name)
		if idx < 0 {
			return nil, nil, fmt.Errorf("dataset missing column %q", name)
		}
		colIdx[i] = idx
	}

	// First pass: coerce every feature cell, tracking missing values.
	parsed := make([][]float64, len(t.Rows))
	missing := make([][]bool, len(t.Rows))
	for r, row := range t.Rows {
		parsed[r] = make([]float64, len(featureNames))
		missing[r] = make([]bool, len(featureNames))
		for c, name := range featureNames {
			value, ok := parseCell(name, row[colIdx[c]])
			if !ok {
				missing[r][c] = true
				continue
			}
			parsed[r][c] = value
		}
	}

	medians := make([]float64, len(featureNames))
	for c := range featureNames {
		values := make([]float64, 0, len(parsed))
		for r := range parsed {
			if !missing[r][c] {
				values = append(values, parsed[r][c])
			}
		}
		if len(values) == 0 {
			return nil, nil, fmt.Errorf("column %q has no parsable values", featureNames[c])
		}
		medians[c] = median(values)
	}

	stats := &NormalizeStats{TotalRows: len(t.Rows)}
	ds := &Dataset{Medians: medians}
	for r, row := range t.Rows {
		label, ok := parseYesNo(row[labelIdx])
		if !ok {
			stats.DroppedLabel++
			continue
		}
		vector := make([]float64, len(featureNames))
		for c := range featureNames {
			if missing[r][c] {
				vector[c] = medians[c]
				stats.Imputed++
			} else {
				vector[c] = parsed[r][c]
			}
			if math.IsNaN(vector[c]) || math.IsInf(vector[c], 0) {
				return nil, nil, fmt.Errorf("row %d column %q is not finite", r, featureNames[c])
			}
		}
		ds.Features = append(ds.Features, vector)
		ds.Labels = append(ds.Labels, label)
		stats.Kept++
	}

	if len(ds.Features) == 0 {
		return nil, nil, fmt.Errorf("no rows with a usable %q label", LabelColumn)
	}
	return ds, stats, nil
}

func parseCell(column, raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if binaryColumns[column] {
		if v, ok := parseYesNo(raw); ok {
			return float64(v), true
		}
		return 0, false
	}
	switch column {
	case "Age":
		return extractDigits(raw)
	case "Sleep_Hours":
		if v, ok := sleepBuckets[raw]; ok {
			return v, true
		}
	case "Exercise_Duration":
		if v, ok := exerciseBuckets[raw]; ok {
			return v, true
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseYesNo(raw string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes":
		return 1, true
	case "no":
		return 0, true
	}
	return 0, false
}

// extractDigits returns the first run of decimal digits in the string,
// so values like "25 years" parse to 25.
func extractDigits(raw string) (float64, bool) {
	start := -1
	for i, ch := range raw {
		if ch >= '0' && ch <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			v, err := strconv.ParseFloat(raw[start:i], 64)
			return v, err == nil
		}
	}
	if start < 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw[start:], 64)
	return v, err == nil
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
