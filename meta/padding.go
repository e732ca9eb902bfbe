package meta

import "github.com/mewkiz/miniflac/internal/bits"

// Padding is a metadata block reserved for future use by the encoder, used
// to leave room in a stream for in-place metadata edits. Its content carries
// no information; only its length within the stream matters.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_padding
type Padding struct {
	pos, n int
}

func (p *Padding) init(bodyLen int) {
	p.n = bodyLen
}

// Skip discards the padding bytes, returning StatusOK once the whole block
// body (as declared by the block header's length) has been consumed.
func (p *Padding) Skip(r *bits.Reader) (Status, error) {
	for p.pos < p.n {
		if !r.FillNoCRC(8) {
			return StatusContinue, nil
		}
		r.Discard(8)
		p.pos++
	}
	return StatusOK, nil
}
