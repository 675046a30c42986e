// Package train drives repeated forward -> gradient -> update cycles over
// either backend, reporting metrics on a fixed cadence and honoring
// cooperative cancellation between epochs.
package train

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openfluke/spiral/nn"
)

// ErrTooFewSamples rejects training runs on datasets with fewer than two
// points. The session stays Idle and no parameters change.
var ErrTooFewSamples = errors.New("train: dataset needs at least 2 samples")

// State is the session lifecycle: Idle -> Running -> (Stopped | Completed).
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Backend runs one barriered forward -> gradient -> update epoch per Step
// call. Outputs returns the per-sample predictions from the most recent
// step; for the device backend this is the blocking host readback, so the
// session calls it only on metric epochs.
type Backend interface {
	Step() error
	Outputs() ([]float32, error)
}

// ProgressFunc receives metrics on reporting epochs. It runs on the
// training goroutine and must not block indefinitely.
type ProgressFunc func(epoch int, loss, accuracy float32, elapsedMs float64)

// Config holds the training-loop knobs.
type Config struct {
	MaxEpochs    int // epoch limit (default 100000)
	MetricsEvery int // metric/report cadence in epochs (default 10)
	OnProgress   ProgressFunc
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{MaxEpochs: 100000, MetricsEvery: 10}
}

// Session owns the state of one training run: the state machine and the
// loss history. Re-running a session discards the previous history.
type Session struct {
	state       State
	LossHistory []float32
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Run executes the training loop until the epoch limit, cancellation, or a
// backend failure. Cancellation is polled between epochs only, never
// mid-stage; a cancelled run keeps every update already applied and ends
// Stopped with a nil error. A backend error also ends Stopped, with the
// error surfaced and the model left at its last successful update.
func (s *Session) Run(ctx context.Context, backend Backend, targets []float32, cfg Config) error {
	if len(targets) < 2 {
		return ErrTooFewSamples
	}
	if cfg.MaxEpochs <= 0 {
		cfg.MaxEpochs = 100000
	}
	if cfg.MetricsEvery <= 0 {
		cfg.MetricsEvery = 10
	}

	s.state = StateRunning
	s.LossHistory = s.LossHistory[:0]
	start := time.Now()

	for epoch := 0; epoch < cfg.MaxEpochs; epoch++ {
		select {
		case <-ctx.Done():
			s.state = StateStopped
			return nil
		default:
		}

		if err := backend.Step(); err != nil {
			s.state = StateStopped
			return fmt.Errorf("train: epoch %d: %w", epoch, err)
		}

		if epoch%cfg.MetricsEvery == 0 {
			outputs, err := backend.Outputs()
			if err != nil {
				s.state = StateStopped
				return fmt.Errorf("train: epoch %d readback: %w", epoch, err)
			}
			loss, accuracy := nn.CalculateLoss(outputs, targets)
			s.LossHistory = append(s.LossHistory, loss)
			if cfg.OnProgress != nil {
				cfg.OnProgress(epoch, loss, accuracy, float64(time.Since(start).Microseconds())/1000.0)
			}
		}
	}

	s.state = StateCompleted
	return nil
}
