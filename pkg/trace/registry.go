package trace

import (
	"github.com/CedricK04/ums-go/pkg/umserr"
)

// DefaultMaxChannels is the channel capacity used when none is configured.
const DefaultMaxChannels = 16

// Channel is one registered traced variable. The Name is optional and only
// appears in handshake metadata, never in sample payloads.
type Channel struct {
	Source Source
	Name   string
}

// Registry is an ordered, append-only list of traced channels with a fixed
// capacity. Registration order determines the byte layout of every sample.
// A Registry is mutated only by the producer context; it is read, not
// written, during encoding.
type Registry struct {
	channels []Channel
	payload  int // running sum of channel widths
	capacity int
}

// NewRegistry returns an empty registry holding at most capacity channels.
// A non-positive capacity selects DefaultMaxChannels.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultMaxChannels
	}
	return &Registry{
		channels: make([]Channel, 0, capacity),
		capacity: capacity,
	}
}

// Register appends a channel binding. It fails with ErrInvalidRegistration
// if src is nil (typically a binding constructed from a nil pointer),
// ErrInvalidParameter if the source's type has no fixed width, and ErrRange
// once the capacity is exhausted. On success it returns the channel index,
// which is also the channel's position in every encoded sample.
func (r *Registry) Register(src Source, name string) (int, error) {
	if src == nil {
		return 0, umserr.ErrInvalidRegistration
	}
	if src.Type().Size() == 0 {
		return 0, umserr.ErrInvalidParameter
	}
	if len(r.channels) >= r.capacity {
		return 0, umserr.ErrRange
	}

	r.channels = append(r.channels, Channel{Source: src, Name: name})
	r.payload += src.Type().Size()

	return len(r.channels) - 1, nil
}

// Len returns the number of registered channels.
func (r *Registry) Len() int { return len(r.channels) }

// Cap returns the channel capacity.
func (r *Registry) Cap() int { return r.capacity }

// PayloadSize returns the summed byte width of all registered channels,
// excluding the timestamp and any header bytes.
func (r *Registry) PayloadSize() int { return r.payload }

// Channels returns the registered channels in registration order. The
// returned slice is the registry's backing storage and must not be modified.
func (r *Registry) Channels() []Channel { return r.channels }

// Types returns the datatypes of all registered channels in order.
func (r *Registry) Types() []Type {
	types := make([]Type, len(r.channels))
	for i, ch := range r.channels {
		types[i] = ch.Source.Type()
	}
	return types
}

// Reset removes all channels and zeroes the payload size. Capacity is kept.
func (r *Registry) Reset() {
	r.channels = r.channels[:0]
	r.payload = 0
}
