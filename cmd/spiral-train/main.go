// Command spiral-train trains the 2-D point classifier on a generated
// dataset, on the GPU when one is available or on the CPU otherwise.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"

	"github.com/openfluke/spiral/dataset"
	"github.com/openfluke/spiral/gpu"
	"github.com/openfluke/spiral/nn"
	"github.com/openfluke/spiral/train"
)

func main() {
	backendName := flag.String("backend", "gpu", "compute backend: gpu or cpu")
	dataName := flag.String("dataset", "spiral", "dataset: spiral, circle or xor")
	epochs := flag.Int("epochs", 5000, "maximum training epochs")
	points := flag.Int("points", 100, "points per class for generated datasets")
	lr := flag.Float64("lr", nn.LearningRate, "learning rate")
	seed := flag.Int64("seed", 42, "dataset RNG seed")
	verbose := flag.Bool("v", false, "verbose GPU logging")
	flag.Parse()

	gpu.Debug = *verbose

	rng := rand.New(rand.NewSource(*seed))
	var pts []dataset.Point
	switch *dataName {
	case "spiral":
		pts = dataset.TwoSpirals(*points, 0.01, rng)
	case "circle":
		pts = dataset.Circle(*points, rng)
	case "xor":
		pts = dataset.XOR()
	default:
		fmt.Fprintf(os.Stderr, "unknown dataset %q\n", *dataName)
		os.Exit(1)
	}
	coords, targets := dataset.Flatten(pts)

	backend, cleanup, usedGPU := buildBackend(*backendName, coords, targets, float32(*lr))
	defer cleanup()

	name := "CPU"
	if usedGPU {
		name = "GPU"
	}
	fmt.Printf("Training on %s: %d points, %d epochs, lr %.3f\n",
		name, len(targets), *epochs, *lr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := train.NewSession()
	cfg := train.DefaultConfig()
	cfg.MaxEpochs = *epochs
	cfg.OnProgress = func(epoch int, loss, accuracy float32, elapsedMs float64) {
		fmt.Printf("  epoch %6d  loss %.4f  acc %5.1f%%  (%.0f ms)\n",
			epoch, loss, accuracy*100, elapsedMs)
	}

	if err := session.Run(ctx, backend, targets, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "training failed: %v\n", err)
		os.Exit(1)
	}

	outputs, err := backend.Outputs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "readback failed: %v\n", err)
		os.Exit(1)
	}
	loss, accuracy := nn.CalculateLoss(outputs, targets)
	fmt.Printf("Done (%s): loss %.4f, accuracy %.1f%%\n", session.State(), loss, accuracy*100)
}

// buildBackend prefers the device backend and falls back to the host
// backend when no compatible adapter exists.
func buildBackend(name string, coords, targets []float32, lr float32) (train.Backend, func(), bool) {
	if name == "gpu" {
		net := nn.NewClassifier(gpu.HiddenSize)
		trainer, err := gpu.NewTrainer(gpu.TrainerSpec{
			Points:       coords,
			Targets:      targets,
			W1:           net.Layers[0].Weights,
			B1:           net.Layers[0].Biases,
			W2:           net.Layers[1].Weights,
			B2:           net.Layers[1].Biases,
			LearningRate: lr,
		})
		if err == nil {
			return trainer, trainer.Cleanup, true
		}
		fmt.Fprintf(os.Stderr, "device backend unavailable (%v), falling back to CPU\n", err)
	}

	net := nn.NewClassifier()
	return nn.NewHostBackend(net, coords, targets, lr), func() {}, false
}
