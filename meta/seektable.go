package meta

import (
	"fmt"

	"github.com/mewkiz/miniflac/internal/bits"
)

// SeekTable contains one or more precalculated audio frame seek points.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_seektable
type SeekTable struct {
	// One or more seek points, in ascending sample-number order.
	Points []SeekPoint

	nPoints  int
	nRead    int
	prevSamp uint64
	hasPrev  bool

	step      int
	curSample uint64
	curOffset uint64
}

// PlaceholderPoint is the sample number reserved for placeholder seek
// points, which decoders must ignore when seeking.
const PlaceholderPoint = 0xFFFFFFFFFFFFFFFF

// A SeekPoint specifies the byte offset and initial sample number of a given
// target frame.
//
// ref: https://www.xiph.org/flac/format.html#seekpoint
type SeekPoint struct {
	// Sample number of the first sample in the target frame, or
	// PlaceholderPoint for a placeholder point.
	SampleNum uint64
	// Offset in bytes from the first byte of the first frame header to the
	// first byte of the target frame's header.
	Offset uint64
	// Number of samples in the target frame.
	NSamples uint16
}

// init must be called once, with the owning block header's body length, so
// the point count (each point is 18 bytes) is known up front.
func (st *SeekTable) init(bodyLen int) {
	st.nPoints = bodyLen / 18
}

// NextPoint decodes and returns the next seek point, or StatusEnd once every
// point declared by the block length has been returned. A point spans three
// fields (sample number, offset, sample count); NextPoint may suspend
// between any of them and resumes exactly where it left off.
func (st *SeekTable) NextPoint(r *bits.Reader) (SeekPoint, Status, error) {
	if st.nRead >= st.nPoints {
		return SeekPoint{}, StatusEnd, nil
	}
	if st.step == 0 {
		if !r.FillNoCRC(64) {
			return SeekPoint{}, StatusContinue, nil
		}
		st.curSample = r.Read(64)
		st.step = 1
	}
	if st.step == 1 {
		if !r.FillNoCRC(64) {
			return SeekPoint{}, StatusContinue, nil
		}
		st.curOffset = r.Read(64)
		st.step = 2
	}
	if !r.FillNoCRC(16) {
		return SeekPoint{}, StatusContinue, nil
	}
	p := SeekPoint{
		SampleNum: st.curSample,
		Offset:    st.curOffset,
		NSamples:  uint16(r.Read(16)),
	}
	if st.hasPrev && st.prevSamp >= p.SampleNum && p.SampleNum != PlaceholderPoint {
		return SeekPoint{}, StatusError, fmt.Errorf("meta: seek point sample number %d not in ascending order", p.SampleNum)
	}
	st.prevSamp = p.SampleNum
	st.hasPrev = true
	st.Points = append(st.Points, p)
	st.nRead++
	st.step = 0
	return p, StatusOK, nil
}
