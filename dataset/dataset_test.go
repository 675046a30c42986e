package dataset

import (
	"math/rand"
	"testing"
)

func TestXORPattern(t *testing.T) {
	points := XOR()
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}

	want := map[[2]float32]int{
		{0, 0}: 0,
		{1, 1}: 0,
		{0, 1}: 1,
		{1, 0}: 1,
	}
	for _, p := range points {
		label, ok := want[[2]float32{p.X, p.Y}]
		if !ok {
			t.Errorf("unexpected point (%f, %f)", p.X, p.Y)
			continue
		}
		if p.Label != label {
			t.Errorf("point (%f, %f): label %d, want %d", p.X, p.Y, p.Label, label)
		}
	}
}

func checkUnitSquare(t *testing.T, points []Point) {
	t.Helper()
	for i, p := range points {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			t.Errorf("point %d (%f, %f) outside the unit square", i, p.X, p.Y)
		}
		if p.Label != 0 && p.Label != 1 {
			t.Errorf("point %d has label %d", i, p.Label)
		}
	}
}

func countLabels(points []Point) (zeros, ones int) {
	for _, p := range points {
		if p.Label == 0 {
			zeros++
		} else {
			ones++
		}
	}
	return
}

func TestTwoSpirals(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	points := TwoSpirals(50, 0.01, rng)

	if len(points) != 100 {
		t.Fatalf("expected 100 points, got %d", len(points))
	}
	checkUnitSquare(t, points)

	zeros, ones := countLabels(points)
	if zeros != 50 || ones != 50 {
		t.Errorf("label counts %d/%d, want 50/50", zeros, ones)
	}
}

func TestCircle(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	points := Circle(40, rng)

	if len(points) != 80 {
		t.Fatalf("expected 80 points, got %d", len(points))
	}
	checkUnitSquare(t, points)

	zeros, ones := countLabels(points)
	if zeros != 40 || ones != 40 {
		t.Errorf("label counts %d/%d, want 40/40", zeros, ones)
	}
}

func TestFlattenLayout(t *testing.T) {
	points := []Point{
		{X: 0.1, Y: 0.2, Label: 1},
		{X: 0.3, Y: 0.4, Label: 0},
	}
	coords, targets := Flatten(points)

	wantCoords := []float32{0.1, 0.2, 0.3, 0.4}
	if len(coords) != len(wantCoords) {
		t.Fatalf("coords length %d, want %d", len(coords), len(wantCoords))
	}
	for i, v := range wantCoords {
		if coords[i] != v {
			t.Errorf("coords[%d] = %f, want %f", i, coords[i], v)
		}
	}

	if len(targets) != 2 || targets[0] != 1 || targets[1] != 0 {
		t.Errorf("targets = %v, want [1 0]", targets)
	}
}
