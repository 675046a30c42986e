package nn

import (
	"math/rand"

	"github.com/chewxy/math32"
)

// NewClassifier builds a point classifier: InputSize inputs, the given
// hidden widths with ReLU, and a single Sigmoid output. With no arguments
// the topology is 2 -> 16 -> 16 -> 1. Weights are He-initialized, biases
// start at zero.
func NewClassifier(hidden ...int) *Network {
	if len(hidden) == 0 {
		hidden = []int{16, 16}
	}

	sizes := make([]int, 0, len(hidden)+2)
	sizes = append(sizes, InputSize)
	sizes = append(sizes, hidden...)
	sizes = append(sizes, OutputSize)

	n := &Network{Layers: make([]*Layer, 0, len(sizes)-1)}
	for i := 1; i < len(sizes); i++ {
		act := ActivationReLU
		if i == len(sizes)-1 {
			act = ActivationSigmoid
		}
		n.Layers = append(n.Layers, newLayer(sizes[i-1], sizes[i], act))
	}
	return n
}

func newLayer(numInputs, numUnits int, act ActivationType) *Layer {
	l := &Layer{
		NumInputs:  numInputs,
		NumUnits:   numUnits,
		Weights:    make([]float32, numUnits*numInputs),
		Biases:     make([]float32, numUnits),
		Activation: act,
	}

	// He initialization: N(0, 2/numInputs)
	std := math32.Sqrt(2.0 / float32(numInputs))
	for i := range l.Weights {
		l.Weights[i] = gaussian() * std
	}
	return l
}

// gaussian draws one N(0,1) sample via the Box-Muller transform from two
// independent uniform(0,1) draws.
func gaussian() float32 {
	u1 := rand.Float32()
	for u1 == 0 {
		u1 = rand.Float32()
	}
	u2 := rand.Float32()
	return math32.Sqrt(-2.0*math32.Log(u1)) * math32.Cos(2.0*math32.Pi*u2)
}
