// Package umserr defines the error kinds shared by the sampling core.
//
// All errors are returned synchronously to the caller of the failing
// operation; nothing is retried internally. Callers match kinds with
// errors.Is.
package umserr

import "errors"

var (
	// ErrNotInitialized is returned when an operation requires a set-up
	// session and none exists.
	ErrNotInitialized = errors.New("not initialized")

	// ErrNilPointer is returned when a required reference (config,
	// transmit callback, traced source) is absent.
	ErrNilPointer = errors.New("nil pointer")

	// ErrInvalidParameter is returned for unsupported parameters, such as
	// registering a variable-width or unknown datatype.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidRegistration is returned when a traced-variable binding is
	// unusable (nil underlying storage).
	ErrInvalidRegistration = errors.New("invalid variable registration")

	// ErrRange is returned when channel capacity is exhausted or when an
	// operation needs at least one registered channel and there is none.
	ErrRange = errors.New("range error")

	// ErrBufferFull is returned by the reject overwrite policy while a
	// transmission is in flight. The sample is dropped; the caller may
	// retry at the next sampling tick.
	ErrBufferFull = errors.New("buffer full")

	// ErrSampling is returned when encoding a sample into a slot fails.
	ErrSampling = errors.New("sampling error")
)
