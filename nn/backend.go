package nn

// HostBackend adapts a Network plus a packed dataset to the training
// driver's per-epoch step interface. Forward, gradient and update run
// synchronously on one goroutine, fully ordered.
type HostBackend struct {
	Net          *Network
	Coords       []float32 // [batch*2] packed x,y pairs
	Targets      []float32 // [batch] labels as 0/1
	LearningRate float32

	outputs []float32 // predictions from the most recent step
}

// NewHostBackend wires a network to a dataset for training.
func NewHostBackend(net *Network, coords, targets []float32, learningRate float32) *HostBackend {
	return &HostBackend{
		Net:          net,
		Coords:       coords,
		Targets:      targets,
		LearningRate: learningRate,
	}
}

// Step runs one full-batch forward -> gradient -> update cycle.
func (b *HostBackend) Step() error {
	b.outputs = b.Net.TrainEpoch(b.Coords, b.Targets, b.LearningRate)
	return nil
}

// Outputs returns the per-sample predictions observed during the last
// step, or a fresh forward pass if no step has run yet.
func (b *HostBackend) Outputs() ([]float32, error) {
	if b.outputs == nil {
		return b.Net.PredictBatch(b.Coords), nil
	}
	return b.outputs, nil
}
