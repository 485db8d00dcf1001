package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CedricK04/ums-go/pkg/config"
)

func TestNewSignalUnknownShape(t *testing.T) {
	_, err := NewSignal(config.SignalConfig{Shape: "triangle"})
	assert.Error(t, err)
}

func TestConstant(t *testing.T) {
	sig, err := NewSignal(config.SignalConfig{Shape: "constant", Offset: 2.5})
	require.NoError(t, err)

	assert.Equal(t, float32(2.5), sig.Out)
	sig.Step(3 * time.Second)
	assert.Equal(t, float32(2.5), sig.Out)
}

func TestSine(t *testing.T) {
	sig, err := NewSignal(config.SignalConfig{
		Shape:     "sine",
		Frequency: 1.0,
		Amplitude: 2.0,
		Offset:    1.0,
	})
	require.NoError(t, err)

	sig.Step(0)
	assert.InDelta(t, 1.0, sig.Out, 1e-5, "sin(0) = 0")

	sig.Step(250 * time.Millisecond) // quarter period
	assert.InDelta(t, 3.0, sig.Out, 1e-4, "peak at quarter period")

	sig.Step(750 * time.Millisecond) // three quarters
	assert.InDelta(t, -1.0, sig.Out, 1e-4, "trough at three quarters")
}

func TestRamp(t *testing.T) {
	sig, err := NewSignal(config.SignalConfig{
		Shape:     "ramp",
		Frequency: 1.0,
		Amplitude: 4.0,
	})
	require.NoError(t, err)

	sig.Step(0)
	assert.InDelta(t, 0.0, sig.Out, 1e-5)

	sig.Step(500 * time.Millisecond)
	assert.InDelta(t, 2.0, sig.Out, 1e-4, "half way up at half period")

	sig.Step(1500 * time.Millisecond)
	assert.InDelta(t, 2.0, sig.Out, 1e-3, "sawtooth wraps each period")
}

func TestSquare(t *testing.T) {
	sig, err := NewSignal(config.SignalConfig{
		Shape:     "square",
		Frequency: 1.0,
		Amplitude: 1.0,
		Offset:    0.5,
	})
	require.NoError(t, err)

	sig.Step(100 * time.Millisecond)
	assert.Equal(t, float32(1.5), sig.Out, "high during first half period")

	sig.Step(600 * time.Millisecond)
	assert.Equal(t, float32(-0.5), sig.Out, "low during second half period")
}
