package nn

import (
	"math"
	"testing"
)

func TestCalculateLossKnownValues(t *testing.T) {
	// -ln(0.9)/2 - ln(0.9)/2 = -ln(0.9), both predictions correct.
	loss, accuracy := CalculateLoss([]float32{0.9, 0.1}, []float32{1, 0})

	want := -math.Log(0.9)
	if math.Abs(float64(loss)-want) > 1e-3 {
		t.Errorf("loss = %f, want %f", loss, want)
	}
	if accuracy != 1.0 {
		t.Errorf("accuracy = %f, want 1.0", accuracy)
	}
}

func TestCalculateLossClampsExtremes(t *testing.T) {
	// Exact 0 and 1 predictions on the wrong side must clamp, not blow up.
	loss, accuracy := CalculateLoss([]float32{0, 1}, []float32{1, 0})

	if math.IsNaN(float64(loss)) || math.IsInf(float64(loss), 0) {
		t.Fatalf("loss is not finite: %f", loss)
	}
	if accuracy != 0 {
		t.Errorf("accuracy = %f, want 0", accuracy)
	}
}

func TestCalculateLossEmptyInput(t *testing.T) {
	loss, accuracy := CalculateLoss(nil, nil)
	if loss != 0 || accuracy != 0 {
		t.Errorf("empty input: loss %f accuracy %f, want 0, 0", loss, accuracy)
	}
}

func TestAccuracyRoundsAtHalf(t *testing.T) {
	// 0.5 rounds up to class 1.
	_, accuracy := CalculateLoss([]float32{0.5}, []float32{1})
	if accuracy != 1.0 {
		t.Errorf("accuracy = %f, want 1.0", accuracy)
	}
}

func TestBCEDerivativeClosedForm(t *testing.T) {
	// For sigmoid output, dL/dp * sigmoid'(pre) must equal p - y.
	for _, pre := range []float32{-2, -0.5, 0, 0.7, 3} {
		p := activate(pre, ActivationSigmoid)
		for _, y := range []float32{0, 1} {
			composed := bceDerivative(p, y) * activateDerivative(pre, ActivationSigmoid)
			direct := p - y
			if math.Abs(float64(composed-direct)) > 1e-5 {
				t.Errorf("pre=%f y=%f: composed %f, closed form %f", pre, y, composed, direct)
			}
		}
	}
}
