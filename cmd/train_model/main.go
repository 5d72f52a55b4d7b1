package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"pcosadvisor/dataset"
	"pcosadvisor/ml"
)

func main() {
	dataPath := flag.String("data", "./data/Cleaned-Data.csv", "dataset csv path")
	modelPath := flag.String("model_path", "./models/forest.json", "model output path")
	trees := flag.Int("trees", 0, "number of trees (0 uses the default)")
	maxDepth := flag.Int("max_depth", 0, "max tree depth (0 uses the default)")
	testRatio := flag.Float64("test_ratio", 0, "held-out ratio (0 uses the default)")
	seed := flag.Int64("seed", 0, "random seed (0 uses the default)")
	flag.Parse()

	cfg := ml.DefaultConfig()
	if *trees > 0 {
		cfg.Trees = *trees
	}
	if *maxDepth > 0 {
		cfg.MaxDepth = *maxDepth
	}
	if *testRatio > 0 {
		cfg.TestRatio = *testRatio
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	table, err := dataset.Load(*dataPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	ds, stats, err := dataset.Normalize(table)
	if err != nil {
		log.Fatalf("failed to normalize dataset: %v", err)
	}
	log.Printf("rows=%d kept=%d dropped_label=%d imputed=%d",
		stats.TotalRows, stats.Kept, stats.DroppedLabel, stats.Imputed)

	forest, err := ml.Train(ds.Features, ds.Labels, dataset.FeatureNames(), ds.Medians, cfg)
	if err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	metrics := forest.Metrics()
	log.Printf("accuracy=%.4f data_points=%d", metrics.Accuracy, metrics.DataPoints)
	for _, fi := range metrics.Importances {
		log.Printf("importance %-24s %.4f", fi.Feature, fi.Importance)
	}

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0o755); err != nil {
		log.Fatalf("failed to create model dir: %v", err)
	}
	if err := forest.Save(*modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}
