package ml

import "errors"

// AccuracyScore is the fraction of correct predictions on the given rows.
func AccuracyScore(f *Forest, features [][]float64, labels []int) (float64, error) {
	if len(features) == 0 {
		return 0, errors.New("features empty")
	}
	if len(features) != len(labels) {
		return 0, errors.New("features and labels size mismatch")
	}
	correct := 0
	for i, vector := range features {
		label, _, err := f.Predict(vector)
		if err != nil {
			return 0, err
		}
		if label == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(features)), nil
}

// BMI computes weight / height^2 from weight in kg and height in cm. The
// division by 10000 happens last so inputs like (60, 160) stay exact.
func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	return weightKg * 10000 / (heightCm * heightCm)
}
