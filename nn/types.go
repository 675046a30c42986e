package nn

// ActivationType selects the activation applied to a layer's pre-activations
type ActivationType int

const (
	ActivationReLU    ActivationType = 0 // max(0, v)
	ActivationSigmoid ActivationType = 1 // 1 / (1 + exp(-v))
)

// Shared network constants. Both backends consume 2-D points and emit a
// single class probability.
const (
	InputSize    = 2
	OutputSize   = 1
	LearningRate = 0.05

	// Epsilon clamps predictions away from 0 and 1 before log()
	Epsilon = 1e-7
)

// Layer is a single dense layer. Weights are row-major with one row per
// unit: Weights[j*NumInputs+k] connects input k to unit j.
type Layer struct {
	NumInputs  int
	NumUnits   int
	Weights    []float32 // [NumUnits * NumInputs]
	Biases     []float32 // [NumUnits]
	Activation ActivationType
}

// Network is an ordered stack of dense layers. Layer i's NumInputs always
// equals layer i-1's NumUnits (or InputSize for layer 0). Parameters are
// owned by the network and mutated only by the update step.
type Network struct {
	Layers []*Layer
}
