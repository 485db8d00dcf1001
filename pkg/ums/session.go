// Package ums ties the channel registry, the sample codec and the
// triple-buffer pipeline into one sampling session.
//
// A Session is owned by the caller and passed to every operation; there is
// no global state, so independent sessions can coexist. The producer context
// calls Trace and Publish; the completion context calls TransmitComplete.
package ums

import (
	"fmt"

	"github.com/CedricK04/ums-go/pkg/frame"
	"github.com/CedricK04/ums-go/pkg/trace"
	"github.com/CedricK04/ums-go/pkg/triplebuf"
	"github.com/CedricK04/ums-go/pkg/umserr"
)

// TimeProvider returns the current timestamp for a sample, typically a
// monotonic tick counter. It is read outside the critical section.
type TimeProvider func() uint32

// Config configures a Session.
type Config struct {
	// Transmit starts one asynchronous transmission. Required. Every
	// invocation must eventually be answered by exactly one
	// TransmitComplete call.
	Transmit triplebuf.TransmitFunc

	// Critical brackets all shared-state mutation. Missing hooks default
	// to no-ops (single-core, interrupts-disabled-by-caller assumption).
	Critical triplebuf.CriticalSection

	// Now supplies sample timestamps. When nil, an internal counter
	// seeded at 0 is used, incremented once per publish.
	Now TimeProvider

	// Policy selects the overwrite behavior while a transmission is in
	// flight. Zero value is Coalesce.
	Policy triplebuf.Policy

	// MaxChannels bounds the registry. Non-positive selects
	// trace.DefaultMaxChannels.
	MaxChannels int

	// CountHeader inserts the one-byte channel count into every frame.
	CountHeader bool
}

// Session is one active sampling apparatus. The zero value is uninitialized;
// use New or Setup.
type Session struct {
	initialized bool

	registry *trace.Registry
	codec    frame.Codec
	pipeline *triplebuf.Pipeline

	now     TimeProvider
	enter   func()
	exit    func()
	counter uint32 // internal timestamp, used only when now == nil
}

// New returns a set-up session. Equivalent to new(Session) followed by
// Setup.
func New(cfg Config) (*Session, error) {
	s := &Session{}
	if err := s.Setup(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Setup initializes the session: captures the callbacks, allocates the three
// slots for the worst-case frame, and resets all counters and role indices
// to their canonical values. It fails with ErrNilPointer if the transmit
// callback is absent and with ErrInvalidParameter if the session is already
// set up. No allocation happens after Setup returns.
func (s *Session) Setup(cfg Config) error {
	if cfg.Transmit == nil {
		return fmt.Errorf("%w: transmit callback required", umserr.ErrNilPointer)
	}
	if s.initialized {
		return fmt.Errorf("%w: session already set up", umserr.ErrInvalidParameter)
	}

	registry := trace.NewRegistry(cfg.MaxChannels)
	codec := frame.Codec{CountHeader: cfg.CountHeader}
	pipeline, err := triplebuf.New(triplebuf.Config{
		SlotSize: codec.MaxSize(registry.Cap()),
		Transmit: cfg.Transmit,
		Policy:   cfg.Policy,
		Critical: cfg.Critical,
	})
	if err != nil {
		return err
	}

	cs := cfg.Critical
	if cs.Enter == nil {
		cs.Enter = func() {}
	}
	if cs.Exit == nil {
		cs.Exit = func() {}
	}

	s.registry = registry
	s.codec = codec
	s.pipeline = pipeline
	s.now = cfg.Now
	s.enter = cs.Enter
	s.exit = cs.Exit
	s.counter = 0
	s.initialized = true

	return nil
}

// Trace registers a variable binding for sampling and returns its channel
// index. Registration order fixes the channel's byte offset in every frame.
// Fails with ErrNotInitialized before Setup, ErrInvalidRegistration for a
// nil binding, ErrInvalidParameter for a zero-width type and ErrRange once
// capacity is exhausted. Channels must not be registered while a transmission is in
// flight.
func (s *Session) Trace(src trace.Source, name string) (int, error) {
	if !s.initialized {
		return 0, umserr.ErrNotInitialized
	}
	return s.registry.Register(src, name)
}

// Publish snapshots every traced variable into one frame and rotates it
// toward transmission. Call it at the desired sampling rate from the
// producer context. Fails with ErrNotInitialized before Setup, ErrRange with
// zero registered channels, and ErrBufferFull under the Reject policy while
// a transmission is in flight. Success means the sample was encoded and
// rotated, whether or not a transmission was triggered by this call.
func (s *Session) Publish() error {
	if !s.initialized {
		return umserr.ErrNotInitialized
	}
	if s.registry.Len() == 0 {
		return umserr.ErrRange
	}

	return s.pipeline.Publish(func(dst []byte) (int, error) {
		return s.codec.Encode(dst, s.timestamp(), s.registry)
	})
}

// timestamp reads the configured clock, or advances the internal counter
// under the critical section when no clock is configured.
func (s *Session) timestamp() uint32 {
	if s.now != nil {
		return s.now()
	}
	s.enter()
	ts := s.counter
	s.counter++
	s.exit()
	return ts
}

// TransmitComplete must be called exactly once per transmit-callback
// invocation, from whatever context signals hardware completion. It never
// blocks. On a torn-down session it is a no-op.
func (s *Session) TransmitComplete() {
	if !s.initialized {
		return
	}
	s.pipeline.Complete()
}

// Handshake returns the channel metadata message describing the current
// layout to a receiver. Send it before the first Publish.
func (s *Session) Handshake() ([]byte, error) {
	if !s.initialized {
		return nil, umserr.ErrNotInitialized
	}
	return frame.Handshake(s.registry)
}

// ChannelCount returns the number of traced channels.
func (s *Session) ChannelCount() int {
	if !s.initialized {
		return 0
	}
	return s.registry.Len()
}

// ChannelTypes returns the traced channel datatypes in registration order.
func (s *Session) ChannelTypes() []trace.Type {
	if !s.initialized {
		return nil
	}
	return s.registry.Types()
}

// FrameSize returns the exact byte length of the next frame, which is what
// the transmit callback receives.
func (s *Session) FrameSize() int {
	if !s.initialized {
		return 0
	}
	return s.codec.Size(s.registry)
}

// Busy reports whether a transmission is in flight.
func (s *Session) Busy() bool {
	return s.initialized && s.pipeline.Busy()
}

// Initialized reports whether the session is set up.
func (s *Session) Initialized() bool { return s.initialized }

// ResetChannels removes every traced channel, shrinking the frame back to
// the timestamp-only baseline. Must not be called while a transmission is in
// flight.
func (s *Session) ResetChannels() error {
	if !s.initialized {
		return umserr.ErrNotInitialized
	}
	s.registry.Reset()
	return nil
}

// Close tears the session down: clears the registry, resets role indices to
// their canonical permutation, drops the busy flag and marks the session
// uninitialized. Safe to call mid-transmission; the outcome of an in-flight
// transmission is simply ignored and its completion must not be delivered.
// The session can be set up again afterward.
func (s *Session) Close() error {
	if !s.initialized {
		return umserr.ErrNotInitialized
	}

	s.enter()
	s.initialized = false
	s.exit()

	s.registry.Reset()
	s.pipeline.Reset()
	s.counter = 0
	s.now = nil

	return nil
}
