package triplebuf

import "sync"

// CriticalSection is the caller-supplied pair bracketing every role-index
// mutation. On bare-metal targets Enter/Exit map to interrupt masking; on
// hosts a mutex-backed pair is the usual choice. Sections must stay minimal:
// index swaps and flag updates only, never encoding, never the transmit
// callback.
type CriticalSection struct {
	Enter func()
	Exit  func()
}

// NoOpCriticalSection returns a pair that applies no protection. This is the
// explicit single-core, interrupts-disabled-by-caller configuration.
func NoOpCriticalSection() CriticalSection {
	return CriticalSection{
		Enter: func() {},
		Exit:  func() {},
	}
}

// MutexCriticalSection returns a pair backed by a private mutex, suitable
// when the completion context is another goroutine.
func MutexCriticalSection() CriticalSection {
	var mu sync.Mutex
	return CriticalSection{
		Enter: mu.Lock,
		Exit:  mu.Unlock,
	}
}

// orNoOp fills in missing hooks so call sites never nil-check.
func (cs CriticalSection) orNoOp() CriticalSection {
	if cs.Enter == nil {
		cs.Enter = func() {}
	}
	if cs.Exit == nil {
		cs.Exit = func() {}
	}
	return cs
}
