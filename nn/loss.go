package nn

import "github.com/chewxy/math32"

// clampProbability keeps a prediction inside (0, 1) so log() stays finite.
// This is a silent numeric correction, not an error.
func clampProbability(p float32) float32 {
	if p < Epsilon {
		return Epsilon
	}
	if p > 1.0-Epsilon {
		return 1.0 - Epsilon
	}
	return p
}

// bceLoss is the binary cross-entropy -[y*log(p) + (1-y)*log(1-p)]
func bceLoss(p, y float32) float32 {
	p = clampProbability(p)
	return -(y*math32.Log(p) + (1.0-y)*math32.Log(1.0-p))
}

// bceDerivative is dL/dp. Composed with the sigmoid derivative at the
// output pre-activation this collapses to p - y.
func bceDerivative(p, y float32) float32 {
	p = clampProbability(p)
	return (p - y) / (p * (1.0 - p))
}

// CalculateLoss returns the mean binary cross-entropy and the fraction of
// predictions where round(p) matches the target, over full output and
// target vectors.
func CalculateLoss(outputs, targets []float32) (loss, accuracy float32) {
	if len(outputs) == 0 {
		return 0, 0
	}

	correct := 0
	for i, p := range outputs {
		y := targets[i]
		loss += bceLoss(p, y)

		predicted := float32(0)
		if p >= 0.5 {
			predicted = 1
		}
		if predicted == y {
			correct++
		}
	}

	n := float32(len(outputs))
	return loss / n, float32(correct) / n
}
