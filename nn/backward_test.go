package nn

import (
	"fmt"
	"math"
	"testing"
)

// batchLoss computes the mean clamped BCE in float64 so finite differences
// are not dominated by float32 rounding.
func batchLoss(n *Network, coords, targets []float32) float64 {
	var sum float64
	batch := len(targets)
	for s := 0; s < batch; s++ {
		p := float64(n.Predict(coords[s*2], coords[s*2+1]))
		if p < Epsilon {
			p = Epsilon
		}
		if p > 1-Epsilon {
			p = 1 - Epsilon
		}
		y := float64(targets[s])
		sum += -(y*math.Log(p) + (1-y)*math.Log(1-p))
	}
	return sum / float64(batch)
}

// checkGradients compares analytic gradients against central finite
// differences for every parameter in the network.
func checkGradients(t *testing.T, n *Network, coords, targets []float32) {
	t.Helper()

	weightGrads, biasGrads := n.ComputeGradients(coords, targets)

	const h = 1e-3
	const tol = 1e-3

	perturb := func(param *float32, analytic float32, what string) {
		orig := *param
		*param = orig + h
		up := batchLoss(n, coords, targets)
		*param = orig - h
		down := batchLoss(n, coords, targets)
		*param = orig

		numeric := (up - down) / (2 * h)
		if math.Abs(numeric-float64(analytic)) > tol {
			t.Errorf("%s: analytic %f, numeric %f", what, analytic, numeric)
		}
	}

	for i, l := range n.Layers {
		for j := range l.Weights {
			perturb(&l.Weights[j], weightGrads[i][j], fmt.Sprintf("layer %d weight %d", i, j))
		}
		for j := range l.Biases {
			perturb(&l.Biases[j], biasGrads[i][j], fmt.Sprintf("layer %d bias %d", i, j))
		}
	}
}

func TestGradientsMatchFiniteDifferencesSingleSample(t *testing.T) {
	n := testNet()
	checkGradients(t, n, []float32{0.8, 0.3}, []float32{1})
}

func TestGradientsMatchFiniteDifferencesBatch(t *testing.T) {
	n := testNet()
	coords := []float32{0, 0, 1, 1, 0, 1, 1, 0}
	targets := []float32{0, 0, 1, 1}
	checkGradients(t, n, coords, targets)
}

func TestGradientsMatchFiniteDifferencesDeepNet(t *testing.T) {
	// Three layers to exercise delta propagation through more than one
	// hidden layer.
	n := &Network{Layers: []*Layer{
		makeLayer(2, 3, ActivationReLU,
			[]float32{0.2, -0.1, 0.4, 0.3, -0.2, 0.15},
			[]float32{0.1, 0.2, -0.1}),
		makeLayer(3, 2, ActivationReLU,
			[]float32{0.3, -0.4, 0.2, 0.1, 0.25, -0.3},
			[]float32{0.05, 0.1}),
		makeLayer(2, 1, ActivationSigmoid,
			[]float32{0.6, -0.45},
			[]float32{0.0}),
	}}
	coords := []float32{0.2, 0.9, 0.7, 0.1, 0.5, 0.5}
	targets := []float32{1, 0, 1}
	checkGradients(t, n, coords, targets)
}

func TestTrainEpochReducesLoss(t *testing.T) {
	n := testNet()
	coords := []float32{0.1, 0.1, 0.9, 0.9}
	targets := []float32{0, 1}

	before := batchLoss(n, coords, targets)
	for i := 0; i < 50; i++ {
		n.TrainEpoch(coords, targets, LearningRate)
	}
	after := batchLoss(n, coords, targets)

	if after >= before {
		t.Errorf("loss did not decrease: before %f, after %f", before, after)
	}
}

func TestTwoPointDatasetStaysFinite(t *testing.T) {
	n := NewClassifier()
	coords := []float32{0.2, 0.2, 0.8, 0.8}
	targets := []float32{0, 1}

	outputs := n.TrainEpoch(coords, targets, LearningRate)

	loss, _ := CalculateLoss(outputs, targets)
	if math.IsNaN(float64(loss)) || math.IsInf(float64(loss), 0) {
		t.Fatalf("loss is not finite: %f", loss)
	}
	for i, l := range n.Layers {
		for j, w := range l.Weights {
			if math.IsNaN(float64(w)) || math.IsInf(float64(w), 0) {
				t.Fatalf("layer %d weight %d not finite after update: %f", i, j, w)
			}
		}
		for j, b := range l.Biases {
			if math.IsNaN(float64(b)) || math.IsInf(float64(b), 0) {
				t.Fatalf("layer %d bias %d not finite after update: %f", i, j, b)
			}
		}
	}
}

func TestComputeGradientsLeavesParametersUntouched(t *testing.T) {
	n := testNet()
	w00 := n.Layers[0].Weights[0]
	b10 := n.Layers[1].Biases[0]

	n.ComputeGradients([]float32{0.4, 0.6}, []float32{1})

	if n.Layers[0].Weights[0] != w00 || n.Layers[1].Biases[0] != b10 {
		t.Error("ComputeGradients mutated parameters")
	}
}
