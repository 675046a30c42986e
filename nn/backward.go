package nn

// gradients mirrors the parameter shapes of a network. The host backend
// accumulates all samples into this single buffer and normalizes by
// 1/batchSize at apply time.
type gradients struct {
	weights [][]float32
	biases  [][]float32
}

func newGradients(n *Network) *gradients {
	g := &gradients{
		weights: make([][]float32, len(n.Layers)),
		biases:  make([][]float32, len(n.Layers)),
	}
	for i, l := range n.Layers {
		g.weights[i] = make([]float32, len(l.Weights))
		g.biases[i] = make([]float32, len(l.Biases))
	}
	return g
}

// backwardSample backpropagates one sample's BCE loss into g.
//
// The output delta composes the generic loss and activation derivatives;
// for Sigmoid+BCE that product is algebraically p - y, which is the closed
// form the device kernels use directly.
func (n *Network) backwardSample(cache *forwardCache, target float32, g *gradients) {
	last := len(n.Layers) - 1
	outLayer := n.Layers[last]

	delta := []float32{
		bceDerivative(cache.output, target) *
			activateDerivative(cache.pre[last][0], outLayer.Activation),
	}

	for i := last; i >= 0; i-- {
		l := n.Layers[i]
		in := cache.inputs[i]

		for j := 0; j < l.NumUnits; j++ {
			d := delta[j]
			base := j * l.NumInputs
			for k, v := range in {
				g.weights[i][base+k] += d * v
			}
			g.biases[i][j] += d
		}

		if i == 0 {
			break // layer 0's input is the raw point, nothing to propagate into
		}

		// delta_prev[k] = sum_j delta[j]*W[j,k], scaled by the previous
		// layer's activation derivative at its cached pre-activation.
		prev := n.Layers[i-1]
		next := make([]float32, l.NumInputs)
		for k := 0; k < l.NumInputs; k++ {
			var sum float32
			for j := 0; j < l.NumUnits; j++ {
				sum += delta[j] * l.Weights[j*l.NumInputs+k]
			}
			next[k] = sum * activateDerivative(cache.pre[i-1][k], prev.Activation)
		}
		delta = next
	}
}

// accumulate runs forward+backward over the whole batch, returning the
// per-sample outputs and the summed (un-normalized) gradients.
func (n *Network) accumulate(coords, targets []float32) ([]float32, *gradients) {
	outputs := make([]float32, len(targets))
	g := newGradients(n)
	for s := range targets {
		cache := n.forwardSample(coords[s*2], coords[s*2+1])
		outputs[s] = cache.output
		n.backwardSample(cache, targets[s], g)
	}
	return outputs, g
}

// TrainEpoch runs one full-batch gradient-descent step: forward and
// backward over every sample, then param -= lr * grad/batchSize applied in
// place. Returns the per-sample outputs from before the update, for
// loss/accuracy reporting.
func (n *Network) TrainEpoch(coords, targets []float32, learningRate float32) []float32 {
	outputs, g := n.accumulate(coords, targets)

	scale := learningRate / float32(len(targets))
	for i, l := range n.Layers {
		for j := range l.Weights {
			l.Weights[j] -= scale * g.weights[i][j]
		}
		for j := range l.Biases {
			l.Biases[j] -= scale * g.biases[i][j]
		}
	}
	return outputs
}

// ComputeGradients returns the full-batch mean gradients per layer without
// touching any parameter. Used to verify backprop against finite
// differences and against the device backend's reduction.
func (n *Network) ComputeGradients(coords, targets []float32) (weights, biases [][]float32) {
	_, g := n.accumulate(coords, targets)

	inv := 1.0 / float32(len(targets))
	for i := range g.weights {
		for j := range g.weights[i] {
			g.weights[i][j] *= inv
		}
		for j := range g.biases[i] {
			g.biases[i][j] *= inv
		}
	}
	return g.weights, g.biases
}
