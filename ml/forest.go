package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"
)

// Config holds the forest hyperparameters. The defaults reproduce the
// reference model: 400 trees, depth 12, balanced class weights, seed 42.
type Config struct {
	Trees           int     `yaml:"trees"`
	MaxDepth        int     `yaml:"max_depth"`
	MinSamplesSplit int     `yaml:"min_samples_split"`
	TestRatio       float64 `yaml:"test_ratio"`
	Seed            int64   `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Trees:           400,
		MaxDepth:        12,
		MinSamplesSplit: 2,
		TestRatio:       0.2,
		Seed:            42,
	}
}

// Forest is a trained random forest classifier. It is read-only after
// construction; concurrent Predict calls need no locking.
type Forest struct {
	trees        []*DecisionTree
	featureNames []string
	medians      []float64
	importances  []float64
	accuracy     float64
	dataPoints   int
	trainedAt    time.Time
}

// FeatureImportance is one entry of the sorted importance report.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Metrics are the derived quality numbers of a trained forest.
type Metrics struct {
	Accuracy    float64             `json:"accuracy"`
	DataPoints  int                 `json:"data_points"`
	TrainedAt   time.Time           `json:"trained_at"`
	Importances []FeatureImportance `json:"importances"`
}

// Train runs the full pipeline: stratified split, forest fit on the train
// partition, accuracy on the held-out partition. medians are the imputation
// values computed at normalization time; they travel with the model so
// serve-time callers use the exact training contract.
func Train(features [][]float64, labels []int, names []string, medians []float64, cfg Config) (*Forest, error) {
	trainX, trainY, testX, testY, err := StratifiedSplit(features, labels, cfg.TestRatio, cfg.Seed)
	if err != nil {
		return nil, err
	}
	forest, err := TrainForest(trainX, trainY, names, medians, cfg)
	if err != nil {
		return nil, err
	}
	forest.accuracy, err = AccuracyScore(forest, testX, testY)
	if err != nil {
		return nil, err
	}
	forest.dataPoints = len(features)
	return forest, nil
}

// TrainForest fits the ensemble on the given rows. Each tree gets its own
// seeded random source (base seed + tree index) and a bootstrap index
// sample, so training is deterministic for a fixed seed regardless of
// goroutine scheduling.
func TrainForest(features [][]float64, labels []int, names []string, medians []float64, cfg Config) (*Forest, error) {
	if len(features) == 0 {
		return nil, errors.New("features empty")
	}
	if len(features) != len(labels) {
		return nil, errors.New("features and labels size mismatch")
	}
	if len(names) != len(features[0]) {
		return nil, fmt.Errorf("expected %d feature names, got %d", len(features[0]), len(names))
	}
	if len(medians) != len(names) {
		return nil, fmt.Errorf("expected %d medians, got %d", len(names), len(medians))
	}
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultConfig().Trees
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultConfig().MaxDepth
	}

	weights, err := balancedWeights(labels)
	if err != nil {
		return nil, err
	}

	n := len(features)
	p := len(features[0])
	opts := treeOptions{
		maxDepth:        cfg.MaxDepth,
		minSamplesSplit: cfg.MinSamplesSplit,
		maxFeatures:     maxFeatures(p),
	}

	trees := make([]*DecisionTree, cfg.Trees)
	treeImportances := make([][]float64, cfg.Trees)
	errCh := make(chan error, cfg.Trees)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Trees; i++ {
		wg.Add(1)
		go func(treeIdx int) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(cfg.Seed + int64(treeIdx)))

			indices := make([]int, n)
			for j := range indices {
				indices[j] = rnd.Intn(n)
			}

			importances := make([]float64, p)
			tree := &DecisionTree{}
			if err := tree.train(features, labels, weights, indices, opts, rnd, importances); err != nil {
				errCh <- err
				return
			}
			trees[treeIdx] = tree
			treeImportances[treeIdx] = importances
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}

	total := make([]float64, p)
	sum := 0.0
	for _, imp := range treeImportances {
		for j, v := range imp {
			total[j] += v
			sum += v
		}
	}
	if sum > 0 {
		for j := range total {
			total[j] /= sum
		}
	} else {
		// No split anywhere improved gini, e.g. constant features. Report a
		// uniform distribution so the importances still sum to one.
		for j := range total {
			total[j] = 1 / float64(p)
		}
	}

	return &Forest{
		trees:        trees,
		featureNames: append([]string(nil), names...),
		medians:      append([]float64(nil), medians...),
		importances:  total,
		trainedAt:    time.Now(),
		dataPoints:   n,
	}, nil
}

// Predict returns the class label and the positive-class probability in
// [0,1]. A vector of the wrong length is a caller contract violation.
func (f *Forest) Predict(features []float64) (int, float64, error) {
	if len(f.trees) == 0 {
		return 0, 0, errors.New("model not trained")
	}
	if len(features) != len(f.featureNames) {
		return 0, 0, fmt.Errorf("expected %d features, got %d", len(f.featureNames), len(features))
	}
	sum := 0.0
	for _, tree := range f.trees {
		prob, err := tree.PredictProb(features)
		if err != nil {
			return 0, 0, err
		}
		sum += prob
	}
	prob := sum / float64(len(f.trees))
	label := 0
	if prob >= 0.5 {
		label = 1
	}
	return label, prob, nil
}

func (f *Forest) FeatureNames() []string {
	return append([]string(nil), f.featureNames...)
}

// Medians returns the training-time imputation values, aligned with
// FeatureNames.
func (f *Forest) Medians() []float64 {
	return append([]float64(nil), f.medians...)
}

func (f *Forest) Accuracy() float64 {
	return f.accuracy
}

// Importances returns the normalized impurity-decrease scores aligned with
// FeatureNames. They are non-negative and sum to 1.
func (f *Forest) Importances() []float64 {
	return append([]float64(nil), f.importances...)
}

// Metrics returns accuracy plus importances sorted descending.
func (f *Forest) Metrics() Metrics {
	ranked := make([]FeatureImportance, len(f.featureNames))
	for i, name := range f.featureNames {
		ranked[i] = FeatureImportance{Feature: name, Importance: f.importances[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})
	return Metrics{
		Accuracy:    f.accuracy,
		DataPoints:  f.dataPoints,
		TrainedAt:   f.trainedAt,
		Importances: ranked,
	}
}

type forestSnapshot struct {
	FeatureNames []string     `json:"feature_names"`
	Medians      []float64    `json:"medians"`
	Importances  []float64    `json:"importances"`
	Accuracy     float64      `json:"accuracy"`
	DataPoints   int          `json:"data_points"`
	TrainedAt    time.Time    `json:"trained_at"`
	Trees        [][]TreeNode `json:"trees"`
}

// Save writes the trained forest to disk as JSON.
func (f *Forest) Save(path string) error {
	if len(f.trees) == 0 {
		return errors.New("model not trained")
	}
	snapshot := forestSnapshot{
		FeatureNames: f.featureNames,
		Medians:      f.medians,
		Importances:  f.importances,
		Accuracy:     f.accuracy,
		DataPoints:   f.dataPoints,
		TrainedAt:    f.trainedAt,
		Trees:        make([][]TreeNode, len(f.trees)),
	}
	for i, tree := range f.trees {
		snapshot.Trees[i] = tree.nodes
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// LoadForest restores a forest written by Save.
func LoadForest(path string) (*Forest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snapshot forestSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, err
	}
	if len(snapshot.Trees) == 0 {
		return nil, errors.New("snapshot has no trees")
	}
	forest := &Forest{
		featureNames: snapshot.FeatureNames,
		medians:      snapshot.Medians,
		importances:  snapshot.Importances,
		accuracy:     snapshot.Accuracy,
		dataPoints:   snapshot.DataPoints,
		trainedAt:    snapshot.TrainedAt,
		trees:        make([]*DecisionTree, len(snapshot.Trees)),
	}
	for i, nodes := range snapshot.Trees {
		forest.trees[i] = &DecisionTree{nodes: nodes}
	}
	return forest, nil
}

// balancedWeights assigns each sample weight n/(k*n_c), counteracting label
// imbalance the same way class_weight="balanced" does.
func balancedWeights(labels []int) ([]float64, error) {
	counts := make(map[int]int)
	for _, label := range labels {
		if label != 0 && label != 1 {
			return nil, fmt.Errorf("label %d outside {0,1}", label)
		}
		counts[label]++
	}
	if len(counts) < 2 {
		return nil, errors.New("dataset has fewer than 2 classes")
	}
	n := float64(len(labels))
	k := float64(len(counts))
	weights := make([]float64, len(labels))
	for i, label := range labels {
		weights[i] = n / (k * float64(counts[label]))
	}
	return weights, nil
}

func maxFeatures(p int) int {
	m := int(math.Sqrt(float64(p)))
	if m < 1 {
		m = 1
	}
	return m
}
