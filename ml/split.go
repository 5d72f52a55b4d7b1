package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// StratifiedSplit partitions the dataset into train and test sets while
// preserving label proportions. The same seed always yields the same
// membership. Fewer than 2 classes, or a class too small to appear on both
// sides, is an error.
func StratifiedSplit(features [][]float64, labels []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int, err error) {
	if len(features) == 0 {
		return nil, nil, nil, nil, errors.New("features empty")
	}
	if len(features) != len(labels) {
		return nil, nil, nil, nil, errors.New("features and labels size mismatch")
	}
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}

	groups := make(map[int][]int)
	for i, label := range labels {
		groups[label] = append(groups[label], i)
	}
	if len(groups) < 2 {
		return nil, nil, nil, nil, errors.New("dataset has fewer than 2 classes")
	}

	classes := make([]int, 0, len(groups))
	for label := range groups {
		classes = append(classes, label)
	}
	sort.Ints(classes)

	rnd := rand.New(rand.NewSource(seed))
	for _, label := range classes {
		indices := groups[label]
		if len(indices) < 2 {
			return nil, nil, nil, nil, errors.New("class too small for stratified split")
		}
		rnd.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		testN := int(math.Round(float64(len(indices)) * testRatio))
		if testN < 1 {
			testN = 1
		}
		if testN >= len(indices) {
			testN = len(indices) - 1
		}

		for i, idx := range indices {
			if i < testN {
				testX = append(testX, features[idx])
				testY = append(testY, labels[idx])
			} else {
				trainX = append(trainX, features[idx])
				trainY = append(trainY, labels[idx])
			}
		}
	}
	return trainX, trainY, testX, testY, nil
}
