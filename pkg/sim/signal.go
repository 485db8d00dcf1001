// Package sim generates deterministic waveforms standing in for real
// instrumented variables, for demos and for exercising a session without
// hardware.
package sim

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"

	"github.com/CedricK04/ums-go/pkg/config"
)

// Signal produces one float32 waveform. Out holds the current value; bind it
// with trace.Float32(&sig.Out) and call Step before every publish.
type Signal struct {
	// Out is the current sample value. Its address stays valid for the
	// lifetime of the signal.
	Out float32

	shape     string
	frequency float32
	amplitude float32
	offset    float32
	phase     float32
}

// NewSignal builds a signal from its configuration. Unknown shapes fail.
func NewSignal(cfg config.SignalConfig) (*Signal, error) {
	switch cfg.Shape {
	case "sine", "ramp", "square", "constant":
	default:
		return nil, fmt.Errorf("unknown signal shape %q", cfg.Shape)
	}

	s := &Signal{
		shape:     cfg.Shape,
		frequency: cfg.Frequency,
		amplitude: cfg.Amplitude,
		offset:    cfg.Offset,
		phase:     cfg.Phase,
	}
	s.Step(0)

	return s, nil
}

// Step advances the waveform to the given elapsed time since start.
func (s *Signal) Step(elapsed time.Duration) {
	t := float32(elapsed.Seconds())
	arg := 2*math32.Pi*s.frequency*t + s.phase

	switch s.shape {
	case "sine":
		s.Out = s.offset + s.amplitude*math32.Sin(arg)
	case "ramp":
		// Sawtooth over one period, rising from offset to offset+amplitude.
		cycles := s.frequency*t + s.phase/(2*math32.Pi)
		frac := cycles - math32.Floor(cycles)
		s.Out = s.offset + s.amplitude*frac
	case "square":
		if math32.Sin(arg) >= 0 {
			s.Out = s.offset + s.amplitude
		} else {
			s.Out = s.offset - s.amplitude
		}
	case "constant":
		s.Out = s.offset
	}
}
