package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	PosProb    float64 `json:"pos_prob"`
	IsLeaf     bool    `json:"is_leaf"`
}

// DecisionTree is a binary classification tree stored as a flat node array.
// Leaves carry the weighted positive-class fraction instead of a hard label
// so the forest can average probabilities.
type DecisionTree struct {
	nodes []TreeNode
}

type treeOptions struct {
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int
}

// train fits the tree on the rows selected by indices. weights are per-row
// sample weights, importances accumulates weighted impurity decrease per
// feature across all splits.
func (dt *DecisionTree) train(features [][]float64, labels []int, weights []float64, indices []int, opts treeOptions, rnd *rand.Rand, importances []float64) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) || len(features) != len(weights) {
		return errors.New("features, labels and weights size mismatch")
	}
	if len(indices) == 0 {
		return errors.New("no sample indices")
	}
	if opts.maxDepth <= 0 {
		opts.maxDepth = 3
	}
	if opts.minSamplesSplit < 2 {
		opts.minSamplesSplit = 2
	}

	totalWeight := 0.0
	for _, idx := range indices {
		totalWeight += weights[idx]
	}

	builder := &treeBuilder{
		features:    features,
		labels:      labels,
		weights:     weights,
		opts:        opts,
		rnd:         rnd,
		importances: importances,
		totalWeight: totalWeight,
	}
	builder.grow(indices, 0)
	dt.nodes = builder.nodes
	return nil
}

// PredictProb walks the tree and returns the positive-class probability.
func (dt *DecisionTree) PredictProb(features []float64) (float64, error) {
	if len(dt.nodes) == 0 {
		return 0, errors.New("model not trained")
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.PosProb, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

type treeBuilder struct {
	features    [][]float64
	labels      []int
	weights     []float64
	opts        treeOptions
	rnd         *rand.Rand
	importances []float64
	totalWeight float64
	nodes       []TreeNode
}

// grow appends the subtree for indices to b.nodes and returns its root
// position. Child links are absolute positions in the final array, which is
// what PredictProb walks.
func (b *treeBuilder) grow(indices []int, depth int) int {
	posProb := b.positiveFraction(indices)
	nodeIdx := len(b.nodes)
	if depth >= b.opts.maxDepth || len(indices) < b.opts.minSamplesSplit || posProb == 0 || posProb == 1 {
		b.nodes = append(b.nodes, leaf(posProb))
		return nodeIdx
	}

	feature, threshold, ok := b.findBestSplit(indices)
	if !ok {
		b.nodes = append(b.nodes, leaf(posProb))
		return nodeIdx
	}

	left, right := b.partition(indices, feature, threshold)
	if len(left) == 0 || len(right) == 0 {
		b.nodes = append(b.nodes, leaf(posProb))
		return nodeIdx
	}

	if b.importances != nil {
		b.recordImportance(feature, indices, left, right)
	}

	b.nodes = append(b.nodes, TreeNode{
		FeatureIdx: feature,
		Threshold:  threshold,
		LeftChild:  -1,
		RightChild: -1,
		PosProb:    posProb,
	})
	b.nodes[nodeIdx].LeftChild = b.grow(left, depth+1)
	b.nodes[nodeIdx].RightChild = b.grow(right, depth+1)
	return nodeIdx
}

func leaf(posProb float64) TreeNode {
	return TreeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		PosProb:    posProb,
		IsLeaf:     true,
	}
}

// findBestSplit evaluates a random feature subset, using the in-node median
// as the candidate threshold for each feature.
func (b *treeBuilder) findBestSplit(indices []int) (int, float64, bool) {
	featureCount := len(b.features[0])
	candidates := b.featureCandidates(featureCount)

	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	values := make([]float64, len(indices))
	for _, featureIdx := range candidates {
		for i, idx := range indices {
			values[i] = b.features[idx][featureIdx]
		}
		threshold := median(values)
		left, right := b.partition(indices, featureIdx, threshold)
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		impurity := b.weightedGini(left, right)
		if impurity < bestImpurity {
			bestImpurity = impurity
			bestFeature = featureIdx
			bestThreshold = threshold
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func (b *treeBuilder) featureCandidates(featureCount int) []int {
	max := b.opts.maxFeatures
	if max <= 0 || max >= featureCount {
		candidates := make([]int, featureCount)
		for i := range candidates {
			candidates[i] = i
		}
		return candidates
	}
	return b.rnd.Perm(featureCount)[:max]
}

func (b *treeBuilder) partition(indices []int, featureIdx int, threshold float64) (left, right []int) {
	for _, idx := range indices {
		if b.features[idx][featureIdx] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

func (b *treeBuilder) nodeWeight(indices []int) float64 {
	total := 0.0
	for _, idx := range indices {
		total += b.weights[idx]
	}
	return total
}

func (b *treeBuilder) positiveFraction(indices []int) float64 {
	total := 0.0
	positive := 0.0
	for _, idx := range indices {
		total += b.weights[idx]
		if b.labels[idx] == 1 {
			positive += b.weights[idx]
		}
	}
	if total == 0 {
		return 0
	}
	return positive / total
}

func (b *treeBuilder) gini(indices []int) float64 {
	p := b.positiveFraction(indices)
	return 1 - p*p - (1-p)*(1-p)
}

func (b *treeBuilder) weightedGini(left, right []int) float64 {
	leftWeight := b.nodeWeight(left)
	rightWeight := b.nodeWeight(right)
	total := leftWeight + rightWeight
	if total == 0 {
		return 0
	}
	return (leftWeight/total)*b.gini(left) + (rightWeight/total)*b.gini(right)
}

func (b *treeBuilder) recordImportance(feature int, node, left, right []int) {
	nodeWeight := b.nodeWeight(node)
	if nodeWeight == 0 || b.totalWeight == 0 {
		return
	}
	leftWeight := b.nodeWeight(left)
	rightWeight := b.nodeWeight(right)
	decrease := b.gini(node) -
		(leftWeight/nodeWeight)*b.gini(left) -
		(rightWeight/nodeWeight)*b.gini(right)
	if decrease > 0 {
		b.importances[feature] += (nodeWeight / b.totalWeight) * decrease
	}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
