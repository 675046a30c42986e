// Package dataset generates 2-D labeled point sets for the classifier.
// Coordinates always land in [0,1] so both backends and any renderer can
// assume a unit square.
package dataset

import (
	"math"
	"math/rand"
)

// Point is one labeled training sample.
type Point struct {
	X, Y  float32
	Label int // 0 or 1
}

// XOR returns the four corner points: (0,0) and (1,1) labeled 0, (0,1) and
// (1,0) labeled 1. The smallest dataset that is not linearly separable.
func XOR() []Point {
	return []Point{
		{X: 0, Y: 0, Label: 0},
		{X: 1, Y: 1, Label: 0},
		{X: 0, Y: 1, Label: 1},
		{X: 1, Y: 0, Label: 1},
	}
}

// TwoSpirals generates n points per class along two interleaved spirals
// centered at (0.5, 0.5), with Gaussian positional noise.
func TwoSpirals(n int, noise float64, rng *rand.Rand) []Point {
	points := make([]Point, 0, 2*n)
	for label := 0; label < 2; label++ {
		phase := float64(label) * math.Pi
		for i := 0; i < n; i++ {
			f := float64(i) / float64(n)
			r := 0.42 * f
			theta := 3.5*math.Pi*f + phase
			x := 0.5 + r*math.Cos(theta) + rng.NormFloat64()*noise
			y := 0.5 + r*math.Sin(theta) + rng.NormFloat64()*noise
			points = append(points, Point{X: clamp01(x), Y: clamp01(y), Label: label})
		}
	}
	return points
}

// Circle generates n points per class: label 1 inside a disc around the
// center, label 0 on a surrounding ring.
func Circle(n int, rng *rand.Rand) []Point {
	points := make([]Point, 0, 2*n)
	for i := 0; i < n; i++ {
		r := 0.18 * math.Sqrt(rng.Float64())
		theta := 2 * math.Pi * rng.Float64()
		points = append(points, Point{
			X:     clamp01(0.5 + r*math.Cos(theta)),
			Y:     clamp01(0.5 + r*math.Sin(theta)),
			Label: 1,
		})
	}
	for i := 0; i < n; i++ {
		r := 0.3 + 0.15*rng.Float64()
		theta := 2 * math.Pi * rng.Float64()
		points = append(points, Point{
			X:     clamp01(0.5 + r*math.Cos(theta)),
			Y:     clamp01(0.5 + r*math.Sin(theta)),
			Label: 0,
		})
	}
	return points
}

// Flatten packs points into the layout both backends consume: coords as
// [x0,y0, x1,y1, ...] and targets as one 0/1 float per sample.
func Flatten(points []Point) (coords, targets []float32) {
	coords = make([]float32, len(points)*2)
	targets = make([]float32, len(points))
	for i, p := range points {
		coords[i*2] = p.X
		coords[i*2+1] = p.Y
		targets[i] = float32(p.Label)
	}
	return coords, targets
}

func clamp01(v float64) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return float32(v)
}
