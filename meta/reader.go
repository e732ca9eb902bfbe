package meta

import "github.com/mewkiz/miniflac/internal/bits"

// Opaque skips the body of a metadata block whose type this decoder does
// not interpret (the reserved range 7-126). The bytes are discarded; no
// value is exposed.
type Opaque struct {
	pos, n int
}

func (o *Opaque) init(bodyLen int) {
	o.n = bodyLen
}

// Skip discards the block body, returning StatusOK once n bytes have been
// consumed.
func (o *Opaque) Skip(r *bits.Reader) (Status, error) {
	for o.pos < o.n {
		if !r.FillNoCRC(8) {
			return StatusContinue, nil
		}
		r.Discard(8)
		o.pos++
	}
	return StatusOK, nil
}
