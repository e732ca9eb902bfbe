// Package frame implements resumable decoding of FLAC audio frames: the
// frame header, one subframe per channel, inter-channel decorrelation, and
// the CRC-16 frame footer.
package frame

import (
	"fmt"

	"github.com/mewkiz/miniflac/internal/bits"
)

// Frame is a decoded audio frame: its header plus one reconstructed sample
// slice per output channel (already de-correlated, if applicable).
//
// ref: https://www.xiph.org/flac/format.html#frame
type Frame struct {
	Header    Header
	SubFrames []SubFrame
	// Channels holds the final, de-correlated sample slices in left-to-right
	// playback order; for channel counts above 2 this is identical to the
	// raw subframe order, since only 2-channel streams use decorrelation.
	Channels [][]int32

	// StreamInfoSampleRate and StreamInfoBitsPerSample give the values to
	// substitute when the frame header encodes sample_rate=0 or bps=0
	// ("use the STREAMINFO value"). The caller must set these from the
	// stream's STREAMINFO block before the first Decode call of a frame.
	StreamInfoSampleRate    uint32
	StreamInfoBitsPerSample uint8

	chanIdx int
	step    int
}

// Reset clears the frame so it can be reused to decode the next one.
func (f *Frame) Reset() {
	f.Header.Reset()
	for i := range f.SubFrames {
		f.SubFrames[i].Reset()
	}
	f.SubFrames = f.SubFrames[:0]
	f.Channels = nil
	f.chanIdx = 0
	f.step = 0
}

// Decode parses a frame from r. The caller must call r.ResetCRC() at the
// frame's first byte (the sync code) before the first Decode call, so the
// trailing CRC-16 covers exactly this frame.
func (f *Frame) Decode(r *bits.Reader) (Status, error) {
	for f.step < 4 {
		switch f.step {
		case 0:
			st, err := f.Header.Decode(r)
			if st != StatusOK {
				return st, err
			}
			if err := f.Header.ApplyStreamInfoDefaults(f.StreamInfoSampleRate, f.StreamInfoBitsPerSample); err != nil {
				return StatusError, err
			}
			n := f.Header.ChannelOrder.ChannelCount()
			if len(f.SubFrames) != n {
				f.SubFrames = make([]SubFrame, n)
			}
		case 1:
			for f.chanIdx < len(f.SubFrames) {
				bps := f.subframeBps(f.chanIdx)
				st, err := f.SubFrames[f.chanIdx].Decode(r, int(f.Header.SampleCount), bps)
				if st != StatusOK {
					return st, err
				}
				f.chanIdx++
			}
		case 2:
			// The padding bits, if any, are the tail of whatever byte was
			// last pulled into the accumulator to satisfy the final
			// subframe read, so they are already live; no Fill is needed.
			if frac := r.Len() % 8; frac != 0 {
				if r.Peek(frac) != 0 {
					return StatusError, fmt.Errorf("frame: byte-alignment padding must be 0")
				}
			}
			r.Align()
			f.decorrelate()
		case 3:
			if !r.FillNoCRC(16) {
				return StatusContinue, nil
			}
			want := uint16(r.Read(16))
			if got := r.CRC16(); got != want {
				return StatusError, fmt.Errorf("frame: footer checksum mismatch; expected 0x%04X, got 0x%04X", want, got)
			}
		}
		f.step++
	}
	return StatusOK, nil
}

// subframeBps returns the bits-per-sample a given subframe index should be
// decoded at, accounting for the extra bit a "side" channel carries under
// the three stereo decorrelation modes.
func (f *Frame) subframeBps(idx int) uint8 {
	bps := f.Header.BitsPerSample
	switch f.Header.ChannelOrder {
	case ChannelLeftSide:
		if idx == 1 {
			return bps + 1
		}
	case ChannelRightSide:
		if idx == 0 {
			return bps + 1
		}
	case ChannelMidSide:
		if idx == 1 {
			return bps + 1
		}
	}
	return bps
}

// decorrelate reconstructs left/right channels from the coded subframes for
// the three stereo decorrelation modes; every other channel order is
// already in final form.
func (f *Frame) decorrelate() {
	n := int(f.Header.SampleCount)
	switch f.Header.ChannelOrder {
	case ChannelLeftSide:
		left := f.SubFrames[0].Samples
		side := f.SubFrames[1].Samples
		right := make([]int32, n)
		for i := 0; i < n; i++ {
			right[i] = left[i] - side[i]
		}
		f.Channels = [][]int32{left, right}
	case ChannelRightSide:
		side := f.SubFrames[0].Samples
		right := f.SubFrames[1].Samples
		left := make([]int32, n)
		for i := 0; i < n; i++ {
			left[i] = right[i] + side[i]
		}
		f.Channels = [][]int32{left, right}
	case ChannelMidSide:
		mid := f.SubFrames[0].Samples
		side := f.SubFrames[1].Samples
		left := make([]int32, n)
		right := make([]int32, n)
		for i := 0; i < n; i++ {
			m := (int64(mid[i]) << 1) | (int64(side[i]) & 1)
			s := int64(side[i])
			left[i] = int32((m + s) >> 1)
			right[i] = int32((m - s) >> 1)
		}
		f.Channels = [][]int32{left, right}
	default:
		f.Channels = make([][]int32, len(f.SubFrames))
		for i := range f.SubFrames {
			f.Channels[i] = f.SubFrames[i].Samples
		}
	}
}
