// Package bits implements the resumable bit-level primitives shared by the
// miniflac core: a 64-bit-accumulator bit reader with CRC-8/CRC-16 side
// channels, unary decoding that survives suspension mid-code, zig-zag
// decoding of Rice residuals, and two's-complement sign extension.
//
// Every exported operation here is pull-driven: it consumes from a byte
// slice bound to the Reader for the duration of one call and never blocks or
// allocates. Suspension ("not enough bits yet") is reported through Status,
// not through panics or blocking reads.
package bits

// Status is the three-way (plus error) outcome every resumable decode step
// in the miniflac core reports.
type Status int

const (
	// StatusOK means the requested unit was fully decoded.
	StatusOK Status = iota
	// StatusContinue means the input slice was exhausted before the unit
	// completed; the caller must resume with more bytes appended after the
	// bytes already consumed.
	StatusContinue
	// StatusEnd means an iterable field (a VORBIS_COMMENT tag, a CUESHEET
	// index point, picture data, ...) has no more elements.
	StatusEnd
	// StatusError means the unit is malformed; see the returned error for
	// detail. The decoder that produced it should be reset before reuse.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusContinue:
		return "continue"
	case StatusEnd:
		return "end"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}
