package ums

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CedricK04/ums-go/pkg/frame"
	"github.com/CedricK04/ums-go/pkg/trace"
	"github.com/CedricK04/ums-go/pkg/triplebuf"
	"github.com/CedricK04/ums-go/pkg/umserr"
)

// txRecorder mirrors the hardware side: it captures each transmitted frame
// and counts invocations.
type txRecorder struct {
	calls  int
	frames [][]byte
}

func (r *txRecorder) transmit(data []byte) {
	r.calls++
	r.frames = append(r.frames, append([]byte(nil), data...))
}

func (r *txRecorder) last() []byte {
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

func TestNew(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit})
	require.NoError(t, err)

	assert.True(t, s.Initialized())
	assert.Equal(t, 0, s.ChannelCount())
	assert.False(t, s.Busy())
}

func TestSetupErrors(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, umserr.ErrNilPointer, "transmit callback is required")

	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit})
	require.NoError(t, err)

	err = s.Setup(Config{Transmit: rec.transmit})
	assert.ErrorIs(t, err, umserr.ErrInvalidParameter, "double setup must fail")
}

func TestOperationsBeforeSetup(t *testing.T) {
	var s Session

	_, err := s.Trace(trace.Float32(new(float32)), "")
	assert.ErrorIs(t, err, umserr.ErrNotInitialized)

	assert.ErrorIs(t, s.Publish(), umserr.ErrNotInitialized)
	assert.ErrorIs(t, s.ResetChannels(), umserr.ErrNotInitialized)
	assert.ErrorIs(t, s.Close(), umserr.ErrNotInitialized)

	_, err = s.Handshake()
	assert.ErrorIs(t, err, umserr.ErrNotInitialized)

	// Must be a harmless no-op.
	s.TransmitComplete()
}

func TestPublishWithoutChannels(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Publish(), umserr.ErrRange)
	assert.Equal(t, 0, rec.calls)
}

func TestTraceCapacity(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit, MaxChannels: 6})
	require.NoError(t, err)

	v := float32(0)
	for i := 0; i < 6; i++ {
		idx, err := s.Trace(trace.Float32(&v), "")
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}

	_, err = s.Trace(trace.Float32(&v), "")
	assert.ErrorIs(t, err, umserr.ErrRange)
	assert.Equal(t, 6, s.ChannelCount())
}

func TestFrameSize(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit})
	require.NoError(t, err)

	assert.Equal(t, frame.TimestampSize, s.FrameSize(), "timestamp-only baseline")

	v8 := uint8(0)
	f64 := float64(0)
	_, err = s.Trace(trace.Uint8(&v8), "")
	require.NoError(t, err)
	_, err = s.Trace(trace.Float64(&f64), "")
	require.NoError(t, err)

	assert.Equal(t, frame.TimestampSize+1+8, s.FrameSize())
}

func TestPublishTransmitsExactFrame(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit})
	require.NoError(t, err)

	v := uint8(0xAB)
	_, err = s.Trace(trace.Uint8(&v), "")
	require.NoError(t, err)

	require.NoError(t, s.Publish())
	require.Equal(t, 1, rec.calls)
	require.Len(t, rec.last(), s.FrameSize())
	assert.Equal(t, byte(0xAB), rec.last()[frame.TimestampSize])
}

func TestInternalTimestampCounter(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit})
	require.NoError(t, err)

	v := uint8(0)
	_, err = s.Trace(trace.Uint8(&v), "")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Publish())
		s.TransmitComplete()
	}

	require.Equal(t, 4, rec.calls)
	for i, f := range rec.frames {
		assert.Equal(t, uint32(i), binary.LittleEndian.Uint32(f), "sample %d", i)
	}
}

func TestExternalTimeProvider(t *testing.T) {
	// Irregular, even non-monotonic-looking clocks pass through verbatim.
	ticks := []uint32{0, 100, 250, 1000, 1001, 5000}
	i := 0

	rec := &txRecorder{}
	s, err := New(Config{
		Transmit: rec.transmit,
		Now: func() uint32 {
			ts := ticks[i]
			i++
			return ts
		},
	})
	require.NoError(t, err)

	v := uint8(0)
	_, err = s.Trace(trace.Uint8(&v), "")
	require.NoError(t, err)

	for range ticks {
		require.NoError(t, s.Publish())
		s.TransmitComplete()
	}

	require.Equal(t, len(ticks), rec.calls)
	for i, f := range rec.frames {
		assert.Equal(t, ticks[i], binary.LittleEndian.Uint32(f), "sample %d", i)
	}
}

func TestCoalescePolicyEndToEnd(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit, Policy: triplebuf.Coalesce})
	require.NoError(t, err)

	v := float32(1.0)
	_, err = s.Trace(trace.Float32(&v), "value")
	require.NoError(t, err)

	payload := func(f []byte) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(f[frame.TimestampSize:]))
	}

	require.NoError(t, s.Publish())
	require.Equal(t, 1, rec.calls)
	assert.Equal(t, float32(1.0), payload(rec.frames[0]))

	v = 2.0
	require.NoError(t, s.Publish())
	assert.Equal(t, 1, rec.calls, "busy transmitter defers the sample")

	s.TransmitComplete()
	require.Equal(t, 2, rec.calls)
	assert.Equal(t, float32(2.0), payload(rec.frames[1]))

	s.TransmitComplete()
	assert.Equal(t, 2, rec.calls)
	assert.False(t, s.Busy())
}

func TestRejectPolicyEndToEnd(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit, Policy: triplebuf.Reject})
	require.NoError(t, err)

	v := uint16(0x2233)
	_, err = s.Trace(trace.Uint16(&v), "")
	require.NoError(t, err)

	require.NoError(t, s.Publish())
	assert.ErrorIs(t, s.Publish(), umserr.ErrBufferFull)
	assert.Equal(t, 1, rec.calls)

	s.TransmitComplete()
	require.NoError(t, s.Publish(), "publish succeeds again after completion")
	assert.Equal(t, 2, rec.calls)
}

func TestCountHeaderFrames(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit, CountHeader: true, MaxChannels: 6})
	require.NoError(t, err)

	a := float32(0)
	b := float32(0)
	_, err = s.Trace(trace.Float32(&a), "a")
	require.NoError(t, err)
	_, err = s.Trace(trace.Float32(&b), "b")
	require.NoError(t, err)

	require.NoError(t, s.Publish())
	require.Equal(t, 1, rec.calls)
	require.Len(t, rec.last(), frame.TimestampSize+1+8)
	assert.Equal(t, byte(2), rec.last()[frame.TimestampSize])
}

func TestCriticalSectionHooks(t *testing.T) {
	enters := 0
	exits := 0
	rec := &txRecorder{}

	s, err := New(Config{
		Transmit: rec.transmit,
		Critical: triplebuf.CriticalSection{
			Enter: func() { enters++ },
			Exit:  func() { exits++ },
		},
	})
	require.NoError(t, err)

	v := uint8(0)
	_, err = s.Trace(trace.Uint8(&v), "")
	require.NoError(t, err)

	require.NoError(t, s.Publish())
	s.TransmitComplete()
	require.NoError(t, s.Close())

	assert.Greater(t, enters, 0)
	assert.Equal(t, enters, exits)
}

func TestHandshake(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit})
	require.NoError(t, err)

	f := float32(0)
	u := uint32(0)
	_, err = s.Trace(trace.Float32(&f), "speed")
	require.NoError(t, err)
	_, err = s.Trace(trace.Uint32(&u), "odometer")
	require.NoError(t, err)

	data, err := s.Handshake()
	require.NoError(t, err)

	infos, err := frame.ParseHandshake(data)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "speed", infos[0].Name)
	assert.Equal(t, trace.Float32Type, infos[0].Type)
	assert.Equal(t, "odometer", infos[1].Name)
	assert.Equal(t, trace.Uint32Type, infos[1].Type)
}

func TestResetChannels(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit})
	require.NoError(t, err)

	v := float64(0)
	_, err = s.Trace(trace.Float64(&v), "")
	require.NoError(t, err)
	require.Equal(t, 1, s.ChannelCount())

	require.NoError(t, s.ResetChannels())

	assert.Equal(t, 0, s.ChannelCount())
	assert.Equal(t, frame.TimestampSize, s.FrameSize())
	assert.ErrorIs(t, s.Publish(), umserr.ErrRange)
}

func TestCloseAndReuse(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit})
	require.NoError(t, err)

	v := uint8(0)
	_, err = s.Trace(trace.Uint8(&v), "")
	require.NoError(t, err)
	require.NoError(t, s.Publish())
	require.True(t, s.Busy(), "transmission mid-flight")

	require.NoError(t, s.Close())

	assert.False(t, s.Initialized())
	assert.Equal(t, 0, s.ChannelCount())
	assert.Equal(t, 0, s.FrameSize())
	assert.False(t, s.Busy())
	assert.ErrorIs(t, s.Publish(), umserr.ErrNotInitialized)

	// Set up again on the same instance: counters and roles start over.
	require.NoError(t, s.Setup(Config{Transmit: rec.transmit}))
	_, err = s.Trace(trace.Uint8(&v), "")
	require.NoError(t, err)

	rec.frames = nil
	rec.calls = 0
	require.NoError(t, s.Publish())
	require.Equal(t, 1, rec.calls)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(rec.last()),
		"internal timestamp counter restarts at zero")
}

func TestChannelTypes(t *testing.T) {
	rec := &txRecorder{}
	s, err := New(Config{Transmit: rec.transmit})
	require.NoError(t, err)

	v8 := uint8(0)
	f32 := float32(0)
	_, err = s.Trace(trace.Uint8(&v8), "")
	require.NoError(t, err)
	_, err = s.Trace(trace.Float32(&f32), "")
	require.NoError(t, err)

	assert.Equal(t, []trace.Type{trace.Uint8Type, trace.Float32Type}, s.ChannelTypes())
}
