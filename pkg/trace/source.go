package trace

import (
	"encoding/binary"
	"math"
)

// Source is a readable binding to a caller-owned scalar variable. Read copies
// the variable's current in-memory value into dst as little-endian bytes; the
// snapshot is logically atomic per channel but no synchronization with the
// caller's own writes is provided beyond that. The pointed-to storage must
// outlive the session.
type Source interface {
	// Type reports the scalar datatype of the binding. Type().Size() bytes
	// are written by every Read.
	Type() Type

	// Read copies the current value into dst. len(dst) must be at least
	// Type().Size().
	Read(dst []byte)
}

type source struct {
	typ  Type
	read func(dst []byte)
}

func (s source) Type() Type      { return s.typ }
func (s source) Read(dst []byte) { s.read(dst) }

// Uint8 binds an 8-bit unsigned variable. Returns nil if p is nil.
func Uint8(p *uint8) Source {
	if p == nil {
		return nil
	}
	return source{Uint8Type, func(dst []byte) { dst[0] = *p }}
}

// Uint16 binds a 16-bit unsigned variable. Returns nil if p is nil.
func Uint16(p *uint16) Source {
	if p == nil {
		return nil
	}
	return source{Uint16Type, func(dst []byte) { binary.LittleEndian.PutUint16(dst, *p) }}
}

// Uint32 binds a 32-bit unsigned variable. Returns nil if p is nil.
func Uint32(p *uint32) Source {
	if p == nil {
		return nil
	}
	return source{Uint32Type, func(dst []byte) { binary.LittleEndian.PutUint32(dst, *p) }}
}

// Uint64 binds a 64-bit unsigned variable. Returns nil if p is nil.
func Uint64(p *uint64) Source {
	if p == nil {
		return nil
	}
	return source{Uint64Type, func(dst []byte) { binary.LittleEndian.PutUint64(dst, *p) }}
}

// Int8 binds an 8-bit signed variable. Returns nil if p is nil.
func Int8(p *int8) Source {
	if p == nil {
		return nil
	}
	return source{Int8Type, func(dst []byte) { dst[0] = byte(*p) }}
}

// Int16 binds a 16-bit signed variable. Returns nil if p is nil.
func Int16(p *int16) Source {
	if p == nil {
		return nil
	}
	return source{Int16Type, func(dst []byte) { binary.LittleEndian.PutUint16(dst, uint16(*p)) }}
}

// Int32 binds a 32-bit signed variable. Returns nil if p is nil.
func Int32(p *int32) Source {
	if p == nil {
		return nil
	}
	return source{Int32Type, func(dst []byte) { binary.LittleEndian.PutUint32(dst, uint32(*p)) }}
}

// Int64 binds a 64-bit signed variable. Returns nil if p is nil.
func Int64(p *int64) Source {
	if p == nil {
		return nil
	}
	return source{Int64Type, func(dst []byte) { binary.LittleEndian.PutUint64(dst, uint64(*p)) }}
}

// Float32 binds a single-precision float variable. Returns nil if p is nil.
func Float32(p *float32) Source {
	if p == nil {
		return nil
	}
	return source{Float32Type, func(dst []byte) {
		binary.LittleEndian.PutUint32(dst, math.Float32bits(*p))
	}}
}

// Float64 binds a double-precision float variable. Returns nil if p is nil.
func Float64(p *float64) Source {
	if p == nil {
		return nil
	}
	return source{Float64Type, func(dst []byte) {
		binary.LittleEndian.PutUint64(dst, math.Float64bits(*p))
	}}
}

// Bool binds a boolean variable, encoded as one byte (0 or 1). Returns nil if
// p is nil.
func Bool(p *bool) Source {
	if p == nil {
		return nil
	}
	return source{BoolType, func(dst []byte) {
		if *p {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	}}
}

// Func binds an arbitrary read function of a fixed-width type. It is the
// escape hatch for values that live behind accessors rather than plain
// variables. Returns nil if read is nil or typ has no fixed width.
func Func(typ Type, read func(dst []byte)) Source {
	if read == nil || typ.Size() == 0 {
		return nil
	}
	return source{typ, read}
}
