// Package trace provides bindings to caller-owned scalar variables and the
// ordered registry of channels sampled on every publish.
package trace

// Type identifies the scalar datatype of a traced variable.
//
// Numeric values are intentionally spaced to allow future extensions within
// each group without breaking serialized handshakes.
type Type uint8

const (
	// Unsigned integer group.
	Uint8Type  Type = 0
	Uint16Type Type = 1
	Uint32Type Type = 2
	Uint64Type Type = 3

	// Signed integer group.
	Int8Type  Type = 10
	Int16Type Type = 11
	Int32Type Type = 12
	Int64Type Type = 13

	// Floating-point group.
	Float32Type Type = 20
	Float64Type Type = 21

	// Miscellaneous.
	BoolType Type = 30
	// StringType is only valid in handshake metadata, never in a sample
	// payload. Its width is 0 (variable length).
	StringType Type = 31
)

// ParseType maps a type name (as produced by Type.String) back to its Type.
// The second result is false for unknown names.
func ParseType(name string) (Type, bool) {
	for _, t := range []Type{
		Uint8Type, Uint16Type, Uint32Type, Uint64Type,
		Int8Type, Int16Type, Int32Type, Int64Type,
		Float32Type, Float64Type, BoolType, StringType,
	} {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// Size returns the byte width of a sample value of this type, or 0 for
// variable-length and unknown types.
func (t Type) Size() int {
	switch t {
	case Uint8Type, Int8Type, BoolType:
		return 1
	case Uint16Type, Int16Type:
		return 2
	case Uint32Type, Int32Type, Float32Type:
		return 4
	case Uint64Type, Int64Type, Float64Type:
		return 8
	default:
		return 0
	}
}

// String returns a short name for the type, matching the names accepted by
// the configuration layer.
func (t Type) String() string {
	switch t {
	case Uint8Type:
		return "uint8"
	case Uint16Type:
		return "uint16"
	case Uint32Type:
		return "uint32"
	case Uint64Type:
		return "uint64"
	case Int8Type:
		return "int8"
	case Int16Type:
		return "int16"
	case Int32Type:
		return "int32"
	case Int64Type:
		return "int64"
	case Float32Type:
		return "float32"
	case Float64Type:
		return "float64"
	case BoolType:
		return "bool"
	case StringType:
		return "string"
	default:
		return "unknown"
	}
}
