package sim

import (
	"fmt"
	"time"

	"github.com/CedricK04/ums-go/pkg/config"
	"github.com/CedricK04/ums-go/pkg/trace"
	"github.com/CedricK04/ums-go/pkg/ums"
)

// Bank drives a set of named signals and registers them as traced channels.
type Bank struct {
	names   []string
	signals []*Signal
}

// NewBank builds one signal per channel configuration.
func NewBank(channels []config.ChannelConfig) (*Bank, error) {
	b := &Bank{
		names:   make([]string, 0, len(channels)),
		signals: make([]*Signal, 0, len(channels)),
	}
	for _, ch := range channels {
		sig, err := NewSignal(ch.Signal)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", ch.Name, err)
		}
		b.names = append(b.names, ch.Name)
		b.signals = append(b.signals, sig)
	}

	return b, nil
}

// Register traces every signal's output on the session, in bank order.
func (b *Bank) Register(sess *ums.Session) error {
	for i, sig := range b.signals {
		if _, err := sess.Trace(trace.Float32(&sig.Out), b.names[i]); err != nil {
			return fmt.Errorf("failed to trace channel %q: %w", b.names[i], err)
		}
	}
	return nil
}

// Step advances every signal to the given elapsed time.
func (b *Bank) Step(elapsed time.Duration) {
	for _, sig := range b.signals {
		sig.Step(elapsed)
	}
}

// Len returns the number of signals.
func (b *Bank) Len() int { return len(b.signals) }
