package nn

import "github.com/chewxy/math32"

// activate applies the activation function to a pre-activation value
func activate(v float32, activation ActivationType) float32 {
	switch activation {
	case ActivationReLU:
		if v < 0 {
			return 0
		}
		return v
	case ActivationSigmoid:
		return 1.0 / (1.0 + math32.Exp(-v))
	default:
		return v
	}
}

// activateDerivative computes the derivative with respect to the
// PRE-activation value, not the layer output.
func activateDerivative(pre float32, activation ActivationType) float32 {
	switch activation {
	case ActivationReLU:
		if pre > 0 {
			return 1.0
		}
		return 0
	case ActivationSigmoid:
		sig := 1.0 / (1.0 + math32.Exp(-pre))
		return sig * (1.0 - sig)
	default:
		return 1.0
	}
}
