package nn

// forwardCache holds everything the backward pass needs for one sample:
// each layer's input vector and its pre-activation sums. Produced by the
// forward pass, consumed by backprop, then discarded.
type forwardCache struct {
	inputs [][]float32 // inputs[i] is the vector layer i consumed
	pre    [][]float32 // pre[i][j] is layer i unit j before activation
	output float32
}

// forwardSample runs one point through every layer, recording the
// pre-activation cache.
func (n *Network) forwardSample(x, y float32) *forwardCache {
	cache := &forwardCache{
		inputs: make([][]float32, len(n.Layers)),
		pre:    make([][]float32, len(n.Layers)),
	}

	in := []float32{x, y}
	for i, l := range n.Layers {
		cache.inputs[i] = in

		pre := make([]float32, l.NumUnits)
		out := make([]float32, l.NumUnits)
		for j := 0; j < l.NumUnits; j++ {
			sum := l.Biases[j]
			row := l.Weights[j*l.NumInputs : (j+1)*l.NumInputs]
			for k, v := range in {
				sum += row[k] * v
			}
			pre[j] = sum
			out[j] = activate(sum, l.Activation)
		}
		cache.pre[i] = pre
		in = out
	}

	cache.output = in[0]
	return cache
}

// Predict evaluates the network at a single point. Pure function of the
// current parameters: repeated calls with unchanged parameters return the
// same value.
func (n *Network) Predict(x, y float32) float32 {
	return n.forwardSample(x, y).output
}

// PredictBatch evaluates packed coordinates [x0,y0, x1,y1, ...] and
// returns one probability per point. Used for decision-boundary grids.
func (n *Network) PredictBatch(coords []float32) []float32 {
	out := make([]float32, len(coords)/2)
	for i := range out {
		out[i] = n.Predict(coords[i*2], coords[i*2+1])
	}
	return out
}
