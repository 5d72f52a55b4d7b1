package ml

import (
	"math/rand"
	"testing"
)

func TestDecisionTreeTrainPredict(t *testing.T) {
	features := [][]float64{
		{0.1, 0.2},
		{0.2, 0.1},
		{0.9, 0.8},
		{0.8, 0.9},
	}
	labels := []int{0, 0, 1, 1}
	weights := []float64{1, 1, 1, 1}
	indices := []int{0, 1, 2, 3}

	tree := &DecisionTree{}
	opts := treeOptions{maxDepth: 2, minSamplesSplit: 2}
	if err := tree.train(features, labels, weights, indices, opts, rand.New(rand.NewSource(1)), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prob, err := tree.PredictProb([]float64{0.15, 0.15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prob >= 0.5 {
		t.Fatalf("expected low probability, got %f", prob)
	}

	prob, err = tree.PredictProb([]float64{0.85, 0.85})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prob < 0.5 {
		t.Fatalf("expected high probability, got %f", prob)
	}
}

// The xor labeling forces an interior split below the root, so this pins
// the child links of nested subtrees: every link must point forward into
// the flat node array and each corner must resolve to its exact leaf.
func TestDecisionTreeXorSplits(t *testing.T) {
	features := [][]float64{
		{0, 0},
		{0, 1},
		{1, 0},
		{1, 1},
	}
	labels := []int{0, 1, 1, 0}
	weights := []float64{1, 1, 1, 1}
	indices := []int{0, 1, 2, 3}

	tree := &DecisionTree{}
	opts := treeOptions{maxDepth: 2, minSamplesSplit: 2}
	if err := tree.train(features, labels, weights, indices, opts, rand.New(rand.NewSource(1)), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, node := range tree.nodes {
		if node.IsLeaf {
			continue
		}
		if node.LeftChild <= i || node.LeftChild >= len(tree.nodes) {
			t.Fatalf("node %d has invalid left child %d", i, node.LeftChild)
		}
		if node.RightChild <= i || node.RightChild >= len(tree.nodes) {
			t.Fatalf("node %d has invalid right child %d", i, node.RightChild)
		}
	}

	for i, vector := range features {
		prob, err := tree.PredictProb(vector)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prob != float64(labels[i]) {
			t.Fatalf("corner %v: expected %d, got %f", vector, labels[i], prob)
		}
	}
}

func TestDecisionTreePredictUntrained(t *testing.T) {
	tree := &DecisionTree{}
	if _, err := tree.PredictProb([]float64{0.1}); err == nil {
		t.Fatal("expected error for untrained tree")
	}
}
