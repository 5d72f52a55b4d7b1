package ml

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"
)

// syntheticDataset builds a separable binary problem: feature 0 clusters
// around 0.1 for class 0 and 0.9 for class 1, the other features are noise.
func syntheticDataset(n int, seed int64) ([][]float64, []int) {
	rnd := rand.New(rand.NewSource(seed))
	features := make([][]float64, n)
	labels := make([]int, n)
	for i := range features {
		label := i % 2
		base := 0.1
		if label == 1 {
			base = 0.9
		}
		features[i] = []float64{
			base + rnd.Float64()*0.05,
			rnd.Float64(),
			rnd.Float64(),
		}
		labels[i] = label
	}
	return features, labels
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Trees = 25
	cfg.MaxDepth = 5
	return cfg
}

var testNames = []string{"f0", "f1", "f2"}
var testMedians = []float64{0.5, 0.5, 0.5}

func TestTrainSeparableDataset(t *testing.T) {
	features, labels := syntheticDataset(80, 7)
	forest, err := Train(features, labels, testNames, testMedians, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if forest.Accuracy() < 0.9 {
		t.Fatalf("expected high held-out accuracy, got %f", forest.Accuracy())
	}

	label, prob, err := forest.Predict([]float64{0.12, 0.5, 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 || prob >= 0.5 {
		t.Fatalf("expected low-risk prediction, got label=%d prob=%f", label, prob)
	}

	label, prob, err = forest.Predict([]float64{0.91, 0.5, 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 || prob < 0.5 {
		t.Fatalf("expected high-risk prediction, got label=%d prob=%f", label, prob)
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	features, labels := syntheticDataset(80, 7)
	a, err := Train(features, labels, testNames, testMedians, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Train(features, labels, testNames, testMedians, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Accuracy() != b.Accuracy() {
		t.Fatalf("accuracy differs: %f vs %f", a.Accuracy(), b.Accuracy())
	}
	impA, impB := a.Importances(), b.Importances()
	for i := range impA {
		if impA[i] != impB[i] {
			t.Fatalf("importance %d differs: %f vs %f", i, impA[i], impB[i])
		}
	}
	vector := []float64{0.88, 0.3, 0.7}
	labelA, probA, _ := a.Predict(vector)
	labelB, probB, _ := b.Predict(vector)
	if labelA != labelB || probA != probB {
		t.Fatalf("predictions differ: (%d, %f) vs (%d, %f)", labelA, probA, labelB, probB)
	}
}

func TestImportancesSumToOne(t *testing.T) {
	features, labels := syntheticDataset(80, 7)
	forest, err := Train(features, labels, testNames, testMedians, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := 0.0
	for i, v := range forest.Importances() {
		if v < 0 {
			t.Fatalf("importance %d is negative: %f", i, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("importances sum to %f, expected 1", sum)
	}
	// The separating feature should dominate.
	metrics := forest.Metrics()
	if metrics.Importances[0].Feature != "f0" {
		t.Fatalf("expected f0 to rank first, got %s", metrics.Importances[0].Feature)
	}
}

func TestImportancesUniformWithConstantFeatures(t *testing.T) {
	n := 12
	features := make([][]float64, n)
	labels := make([]int, n)
	for i := range features {
		features[i] = []float64{0.5, 0.5, 0.5}
		labels[i] = i % 2
	}

	forest, err := Train(features, labels, testNames, testMedians, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Constant features admit no useful split, so the report falls back to
	// a uniform distribution instead of all zeros.
	sum := 0.0
	for _, imp := range forest.Importances() {
		if math.Abs(imp-1.0/3) > 1e-9 {
			t.Fatalf("expected uniform importance 1/3, got %f", imp)
		}
		sum += imp
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("importances sum to %f, expected 1", sum)
	}
}

func TestPredictLabelProbabilityConsistency(t *testing.T) {
	features, labels := syntheticDataset(80, 7)
	forest, err := Train(features, labels, testNames, testMedians, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		vector := []float64{rnd.Float64(), rnd.Float64(), rnd.Float64()}
		label, prob, err := forest.Predict(vector)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if (prob >= 0.5) != (label == 1) {
			t.Fatalf("label %d inconsistent with probability %f", label, prob)
		}
	}
}

func TestPredictIsIdempotent(t *testing.T) {
	features, labels := syntheticDataset(80, 7)
	forest, err := Train(features, labels, testNames, testMedians, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vector := []float64{0.4, 0.6, 0.2}
	labelA, probA, _ := forest.Predict(vector)
	labelB, probB, _ := forest.Predict(vector)
	if labelA != labelB || probA != probB {
		t.Fatalf("repeated scoring differs: (%d, %f) vs (%d, %f)", labelA, probA, labelB, probB)
	}
}

func TestPredictRejectsWrongVectorLength(t *testing.T) {
	features, labels := syntheticDataset(40, 7)
	forest, err := Train(features, labels, testNames, testMedians, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := forest.Predict([]float64{0.1, 0.2}); err == nil {
		t.Fatal("expected error for short feature vector")
	}
}

func TestTrainRequiresTwoClasses(t *testing.T) {
	features := [][]float64{{0.1, 0.2, 0.3}, {0.2, 0.3, 0.4}, {0.3, 0.4, 0.5}}
	labels := []int{1, 1, 1}
	if _, err := Train(features, labels, testNames, testMedians, testConfig()); err == nil {
		t.Fatal("expected error for single-class dataset")
	}
}

func TestForestSaveLoadRoundTrip(t *testing.T) {
	features, labels := syntheticDataset(60, 7)
	forest, err := Train(features, labels, testNames, testMedians, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := forest.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := LoadForest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vector := []float64{0.85, 0.1, 0.9}
	labelA, probA, _ := forest.Predict(vector)
	labelB, probB, err := loaded.Predict(vector)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labelA != labelB || probA != probB {
		t.Fatalf("loaded model differs: (%d, %f) vs (%d, %f)", labelA, probA, labelB, probB)
	}
	if loaded.Accuracy() != forest.Accuracy() {
		t.Fatalf("accuracy not preserved: %f vs %f", loaded.Accuracy(), forest.Accuracy())
	}
}

func TestBMI(t *testing.T) {
	if got := BMI(60, 160); got != 23.4375 {
		t.Fatalf("BMI(60, 160) = %f, expected 23.4375", got)
	}
	if got := BMI(60, 0); got != 0 {
		t.Fatalf("BMI with zero height = %f, expected 0", got)
	}
}
