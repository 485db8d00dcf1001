// Package triplebuf implements the triple-buffered hand-off between a
// producer that publishes samples and an asynchronous transmitter that
// signals completion from an interrupt-like context.
//
// Three fixed-size slots rotate through three roles: write (the producer's
// encode target), pending (the newest complete sample waiting to go out) and
// transmit (the slot currently owned by the hardware). The role indices are
// always a permutation of {0,1,2}, so each slot has exactly one owner at any
// instant and no locking is needed beyond the short critical section that
// brackets the index swaps.
package triplebuf

import (
	"github.com/CedricK04/ums-go/pkg/umserr"
)

// Policy selects what Publish does while a transmission is in flight.
type Policy int

const (
	// Coalesce always accepts the sample. If the transmitter is busy the
	// new sample replaces whatever was pending; older unsent samples are
	// overwritten, never queued more than one deep.
	Coalesce Policy = iota

	// Reject fails Publish with ErrBufferFull while a transmission is in
	// flight, leaving every slot untouched. The caller retries at its
	// next sampling tick.
	Reject
)

// TransmitFunc hands a completed frame to the transmission path. It is
// always invoked outside the critical section. The slice aliases the
// transmit slot and stays valid until Complete is called.
type TransmitFunc func(data []byte)

// Config configures a Pipeline.
type Config struct {
	// SlotSize is the capacity of each of the three slots, sized for the
	// worst-case frame. Required.
	SlotSize int

	// Transmit is invoked to start a transmission. Required. The caller
	// must arrange exactly one Complete call per invocation.
	Transmit TransmitFunc

	// Policy selects the overwrite behavior. Zero value is Coalesce.
	Policy Policy

	// Critical brackets index mutations. Missing hooks default to no-ops.
	Critical CriticalSection
}

// Pipeline is the triple-buffer state machine. One producer context calls
// Publish; one completion context calls Complete. Neither allocates, blocks
// indefinitely, or runs user code while holding the critical section.
type Pipeline struct {
	slots [3][]byte
	used  [3]int

	writeIdx    int
	pendingIdx  int
	transmitIdx int

	active  bool // a transmission is in flight
	fresh   bool // pending holds data newer than the in-flight transmission
	policy  Policy
	enter   func()
	exit    func()
	xmit    TransmitFunc
}

// New allocates the three slots and returns an idle pipeline with the
// canonical role assignment write=0, pending=1, transmit=2. No further
// allocation happens after this point.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Transmit == nil {
		return nil, umserr.ErrNilPointer
	}
	if cfg.SlotSize <= 0 {
		return nil, umserr.ErrInvalidParameter
	}

	cs := cfg.Critical.orNoOp()
	p := &Pipeline{
		policy: cfg.Policy,
		enter:  cs.Enter,
		exit:   cs.Exit,
		xmit:   cfg.Transmit,
	}
	for i := range p.slots {
		p.slots[i] = make([]byte, cfg.SlotSize)
	}
	p.Reset()

	return p, nil
}

// Publish encodes one sample via fill and rotates it toward transmission.
// fill receives the write slot and returns the encoded length; it runs
// outside the critical section, so its cost never extends the locked window.
// If the transmitter is idle the sample is transmitted immediately;
// otherwise the policy decides (see Policy).
func (p *Pipeline) Publish(fill func(dst []byte) (int, error)) error {
	if p.policy == Reject {
		p.enter()
		busy := p.active
		p.exit()
		if busy {
			return umserr.ErrBufferFull
		}
	}

	n, err := fill(p.slots[p.writeIdx])
	if err != nil {
		return err
	}
	p.used[p.writeIdx] = n

	p.enter()

	// Freshly written slot becomes pending; old pending becomes the next
	// write target.
	p.writeIdx, p.pendingIdx = p.pendingIdx, p.writeIdx

	start := false
	txIdx := 0
	if p.active {
		p.fresh = true
	} else {
		p.active = true
		p.fresh = false
		start = true
		p.pendingIdx, p.transmitIdx = p.transmitIdx, p.pendingIdx
		txIdx = p.transmitIdx
	}

	p.exit()

	if start {
		p.xmit(p.slots[txIdx][:p.used[txIdx]])
	}

	return nil
}

// Complete must be called exactly once per Transmit invocation, from
// whatever context signals hardware completion. It never blocks and never
// returns an error. Under the Coalesce policy it starts transmitting the
// pending sample when one accumulated since the transmission began,
// otherwise it marks the transmitter idle. Under the Reject policy it
// unconditionally swaps pending and transmit and goes idle; the next
// Publish starts the next transmission.
func (p *Pipeline) Complete() {
	p.enter()

	start := false
	txIdx := 0
	switch p.policy {
	case Coalesce:
		if p.fresh {
			p.fresh = false
			p.pendingIdx, p.transmitIdx = p.transmitIdx, p.pendingIdx
			start = true
			txIdx = p.transmitIdx
		} else {
			p.active = false
		}
	case Reject:
		p.active = false
		p.pendingIdx, p.transmitIdx = p.transmitIdx, p.pendingIdx
	}

	p.exit()

	if start {
		p.xmit(p.slots[txIdx][:p.used[txIdx]])
	}
}

// Busy reports whether a transmission is in flight.
func (p *Pipeline) Busy() bool {
	p.enter()
	busy := p.active
	p.exit()
	return busy
}

// Reset restores the canonical role assignment and marks the transmitter
// idle. Any in-flight transmission is simply no longer tracked; its eventual
// completion must not be delivered to this pipeline.
func (p *Pipeline) Reset() {
	p.enter()
	p.writeIdx = 0
	p.pendingIdx = 1
	p.transmitIdx = 2
	p.active = false
	p.fresh = false
	p.used = [3]int{}
	p.exit()
}
