// Package frame computes the byte layout of one sample and serializes
// current variable values into a slot buffer.
//
// Wire format of one frame:
//
//	[timestamp: 4 bytes LE][count: 1 byte, only with CountHeader]
//	[channel values in registration order, native widths, no padding]
//
// Values are raw little-endian copies of the in-memory representation at the
// moment of encoding. No type conversion or byte-order normalization is
// applied beyond that.
package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/CedricK04/ums-go/pkg/trace"
	"github.com/CedricK04/ums-go/pkg/umserr"
)

// TimestampSize is the byte width of the frame timestamp.
const TimestampSize = 4

// Codec computes frame sizes and serializes samples for one registry layout.
type Codec struct {
	// CountHeader inserts a one-byte channel count after the timestamp.
	// Receivers that know the channel layout out of band leave it off.
	CountHeader bool
}

// Size returns the exact byte length of one encoded frame for the registry's
// current channel set. This is the length handed to the transmit callback.
func (c Codec) Size(reg *trace.Registry) int {
	n := TimestampSize + reg.PayloadSize()
	if c.CountHeader {
		n++
	}
	return n
}

// MaxSize returns the worst-case frame length for a registry of the given
// capacity, assuming every channel uses the widest supported type. Slot
// buffers are sized with it once, at session setup.
func (c Codec) MaxSize(capacity int) int {
	n := TimestampSize + capacity*8
	if c.CountHeader {
		n++
	}
	return n
}

// Encode writes the timestamp and then snapshots every registered channel
// into dst at its fixed offset. It returns the number of bytes written,
// which always equals Size(reg). Fails with ErrSampling if dst is too small.
func (c Codec) Encode(dst []byte, timestamp uint32, reg *trace.Registry) (int, error) {
	size := c.Size(reg)
	if len(dst) < size {
		return 0, fmt.Errorf("%w: frame needs %d bytes, slot holds %d", umserr.ErrSampling, size, len(dst))
	}

	binary.LittleEndian.PutUint32(dst, timestamp)
	off := TimestampSize
	if c.CountHeader {
		dst[off] = byte(reg.Len())
		off++
	}

	for _, ch := range reg.Channels() {
		w := ch.Source.Type().Size()
		ch.Source.Read(dst[off : off+w])
		off += w
	}

	return off, nil
}

// Sample is one decoded frame.
type Sample struct {
	Timestamp uint32
	// Values holds each channel's raw bytes in registration order.
	Values [][]byte
}

// Decode parses an encoded frame given the channel types in registration
// order. It is the host-side counterpart of Encode, used by receivers and
// tests. The returned value slices alias data.
func (c Codec) Decode(data []byte, types []trace.Type) (Sample, error) {
	size := TimestampSize
	if c.CountHeader {
		size++
	}
	for _, t := range types {
		size += t.Size()
	}
	if len(data) != size {
		return Sample{}, fmt.Errorf("%w: frame is %d bytes, layout needs %d", umserr.ErrInvalidParameter, len(data), size)
	}

	s := Sample{
		Timestamp: binary.LittleEndian.Uint32(data),
		Values:    make([][]byte, len(types)),
	}
	off := TimestampSize
	if c.CountHeader {
		if int(data[off]) != len(types) {
			return Sample{}, fmt.Errorf("%w: frame carries %d channels, layout has %d", umserr.ErrInvalidParameter, data[off], len(types))
		}
		off++
	}
	for i, t := range types {
		w := t.Size()
		s.Values[i] = data[off : off+w]
		off += w
	}

	return s, nil
}
