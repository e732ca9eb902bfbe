// Package frame implements resumable decoding of FLAC audio frames: the
// frame header, one subframe per channel, inter-channel decorrelation, and
// the CRC-16 frame footer.
package frame

import (
	"fmt"

	"github.com/mewkiz/pkg/dbg"

	"github.com/mewkiz/miniflac/internal/bits"
)

// Status is shared with the rest of the miniflac core.
type Status = bits.Status

const (
	StatusOK       = bits.StatusOK
	StatusContinue = bits.StatusContinue
	StatusEnd      = bits.StatusEnd
	StatusError    = bits.StatusError
)

// SyncCode is the 14-bit frame sync pattern that opens every frame header.
const SyncCode = 0x3FFE

// ChannelOrder specifies the order in which channels are stored, and for
// the three stereo-decorrelation modes, how to recover left/right from the
// coded channels.
type ChannelOrder uint8

// Channel assignments. The first 8 values are (channel count)-1 with
// SMPTE/ITU-R ordering where defined; the last 3 are inter-channel
// decorrelation modes exclusive to 2-channel streams.
const (
	ChannelMono       ChannelOrder = iota // 1 channel: mono
	ChannelLR                             // 2 channels: left, right
	ChannelLRC                            // 3 channels: left, right, center
	ChannelLRLsRs                         // 4 channels: left, right, left surround, right surround
	ChannelLRCLsRs                        // 5 channels
	ChannelLRCLfeLsRs                     // 6 channels
	Channel7                              // 7 channels: not defined
	Channel8                              // 8 channels: not defined
	ChannelLeftSide                       // left/side stereo:  left, side (difference)
	ChannelRightSide                      // side/right stereo: side (difference), right
	ChannelMidSide                        // mid/side stereo:   mid (average), side (difference)
)

var channelCount = map[ChannelOrder]int{
	ChannelMono:       1,
	ChannelLR:         2,
	ChannelLRC:        3,
	ChannelLRLsRs:     4,
	ChannelLRCLsRs:    5,
	ChannelLRCLfeLsRs: 6,
	Channel7:          7,
	Channel8:          8,
	ChannelLeftSide:   2,
	ChannelRightSide:  2,
	ChannelMidSide:    2,
}

// ChannelCount returns the number of coded channels for the channel order.
func (order ChannelOrder) ChannelCount() int {
	return channelCount[order]
}

// Header is a frame header: block size, sample rate, channel assignment,
// sample size, and the frame or sample number that starts the frame.
//
// ref: https://www.xiph.org/flac/format.html#frame_header
type Header struct {
	// HasVariableSampleCount reports a variable-blocksize stream (sample
	// numbers are coded directly) versus fixed-blocksize (frame numbers).
	HasVariableSampleCount bool
	// SampleCount is the number of samples in each subframe of this frame.
	SampleCount uint16
	// SampleRate in Hz, or 0 meaning "use the STREAMINFO value".
	SampleRate uint32
	// ChannelOrder is the coded channel layout.
	ChannelOrder ChannelOrder
	// BitsPerSample, or 0 meaning "use the STREAMINFO value".
	BitsPerSample uint8
	// SampleNum is the frame's starting sample number (variable-blocksize
	// streams only).
	SampleNum uint64
	// FrameNum is the frame number (fixed-blocksize streams only); the
	// frame's starting sample number is FrameNum * SampleCount.
	FrameNum uint32
	// HeaderByteSize is the header's length in bytes, including the trailing
	// CRC-8 byte. Valid once Decode returns StatusOK.
	HeaderByteSize int

	step            int
	sampleCountSpec uint8
	sampleRateSpec  uint8
	utf8            utf8Num
}

// Reset clears a header so it may be reused to decode the next frame.
func (h *Header) Reset() {
	*h = Header{}
}

// ApplyStreamInfoDefaults substitutes h.SampleRate/h.BitsPerSample when the
// header encoded the "use the STREAMINFO value" sentinel (0). It is safe to
// call more than once: once a field has been substituted it is no longer 0,
// so a later call is a no-op for that field. Must be called with a fully
// decoded header (after Decode returns StatusOK) and before the header's
// fields are used to size or decode subframes.
func (h *Header) ApplyStreamInfoDefaults(sampleRate uint32, bps uint8) error {
	if h.SampleRate == 0 {
		if sampleRate == 0 {
			return fmt.Errorf("frame: sample rate inherits from streaminfo but none has been seen yet")
		}
		h.SampleRate = sampleRate
	}
	if h.BitsPerSample == 0 {
		if bps == 0 {
			return fmt.Errorf("frame: bits per sample inherits from streaminfo but none has been seen yet")
		}
		h.BitsPerSample = bps
	}
	return nil
}

// Decode parses the frame header from r, which must have had ResetCRC
// called at the frame's first byte so the trailing CRC-8 check is correct.
// Decode may be called again after StatusContinue with more input bound.
func (h *Header) Decode(r *bits.Reader) (Status, error) {
	for h.step < 5 {
		switch h.step {
		case 0:
			if !r.Fill(32) {
				return StatusContinue, nil
			}
			if st, err := h.decodeFixedFields(r); st != StatusOK {
				return st, err
			}
		case 1:
			st, err := h.utf8.step(r)
			if st != StatusOK {
				return st, err
			}
			if h.HasVariableSampleCount {
				h.SampleNum = h.utf8.value
				dbg.Println("UTF-8 decoded sample number:", h.SampleNum)
			} else {
				h.FrameNum = uint32(h.utf8.value)
				dbg.Println("UTF-8 decoded frame number:", h.FrameNum)
			}
		case 2:
			switch h.sampleCountSpec {
			case 6:
				if !r.Fill(8) {
					return StatusContinue, nil
				}
				h.SampleCount = uint16(r.Read(8)) + 1
			case 7:
				if !r.Fill(16) {
					return StatusContinue, nil
				}
				h.SampleCount = uint16(r.Read(16)) + 1
			}
		case 3:
			switch h.sampleRateSpec {
			case 12:
				if !r.Fill(8) {
					return StatusContinue, nil
				}
				h.SampleRate = uint32(r.Read(8)) * 1000
			case 13:
				if !r.Fill(16) {
					return StatusContinue, nil
				}
				h.SampleRate = uint32(r.Read(16))
			case 14:
				if !r.Fill(16) {
					return StatusContinue, nil
				}
				h.SampleRate = uint32(r.Read(16)) * 10
			}
		case 4:
			if !r.FillCRC16Only(8) {
				return StatusContinue, nil
			}
			want := uint8(r.Read(8))
			if got := r.CRC8(); got != want {
				return StatusError, fmt.Errorf("frame: header checksum mismatch; expected 0x%02X, got 0x%02X", want, got)
			}
			h.HeaderByteSize = int(r.ByteCount())
		}
		h.step++
	}
	return StatusOK, nil
}

func (h *Header) decodeFixedFields(r *bits.Reader) (Status, error) {
	sync := r.Read(14)
	if sync != SyncCode {
		return StatusError, fmt.Errorf("frame: invalid sync code; expected %014b, got %014b", SyncCode, sync)
	}
	if r.Read(1) != 0 {
		return StatusError, fmt.Errorf("frame: reserved bit must be 0")
	}
	h.HasVariableSampleCount = r.Read(1) != 0
	h.sampleCountSpec = uint8(r.Read(4))
	h.sampleRateSpec = uint8(r.Read(4))
	chanBits := uint8(r.Read(4))
	sizeBits := uint8(r.Read(3))
	if r.Read(1) != 0 {
		return StatusError, fmt.Errorf("frame: reserved bit must be 0")
	}

	switch {
	case chanBits <= 10:
		h.ChannelOrder = ChannelOrder(chanBits)
	default:
		return StatusError, fmt.Errorf("frame: reserved channel assignment bit pattern %04b", chanBits)
	}

	switch sizeBits {
	case 0:
		h.BitsPerSample = 0
	case 1:
		h.BitsPerSample = 8
	case 2:
		h.BitsPerSample = 12
	case 3, 7:
		return StatusError, fmt.Errorf("frame: reserved sample size bit pattern %03b", sizeBits)
	case 4:
		h.BitsPerSample = 16
	case 5:
		h.BitsPerSample = 20
	case 6:
		h.BitsPerSample = 24
	}

	switch {
	case h.sampleCountSpec == 0:
		return StatusError, fmt.Errorf("frame: reserved block size bit pattern 0000")
	case h.sampleCountSpec == 1:
		h.SampleCount = 192
	case h.sampleCountSpec >= 2 && h.sampleCountSpec <= 5:
		h.SampleCount = 576 * (1 << (h.sampleCountSpec - 2))
	case h.sampleCountSpec == 6 || h.sampleCountSpec == 7:
		// Filled in from trailing bytes at step 2.
	case h.sampleCountSpec >= 8:
		h.SampleCount = 256 * (1 << (h.sampleCountSpec - 8))
	}

	switch h.sampleRateSpec {
	case 0:
		h.SampleRate = 0
	case 1:
		h.SampleRate = 88200
	case 2:
		h.SampleRate = 176400
	case 3:
		h.SampleRate = 192000
	case 4:
		h.SampleRate = 8000
	case 5:
		h.SampleRate = 16000
	case 6:
		h.SampleRate = 22050
	case 7:
		h.SampleRate = 24000
	case 8:
		h.SampleRate = 32000
	case 9:
		h.SampleRate = 44100
	case 10:
		h.SampleRate = 48000
	case 11:
		h.SampleRate = 96000
	case 12, 13, 14:
		// Filled in from trailing bytes at step 3.
	case 15:
		return StatusError, fmt.Errorf("frame: invalid sample rate bit pattern 1111")
	}

	return StatusOK, nil
}

// utf8Num decodes the "UTF-8"-like variable-length (1 to 7 byte) integer
// FLAC uses for frame and sample numbers, persisting partial progress
// across suspensions since the byte count is not known until the lead byte
// arrives.
type utf8Num struct {
	value      uint64
	leadRead   bool
	nCont      int
	contDone   int
}

func (u *utf8Num) step(r *bits.Reader) (Status, error) {
	if !u.leadRead {
		if !r.Fill(8) {
			return StatusContinue, nil
		}
		lead := r.Read(8)
		switch {
		case lead&0x80 == 0x00:
			u.value = lead
			u.nCont = 0
		case lead&0xE0 == 0xC0:
			u.value = lead & 0x1F
			u.nCont = 1
		case lead&0xF0 == 0xE0:
			u.value = lead & 0x0F
			u.nCont = 2
		case lead&0xF8 == 0xF0:
			u.value = lead & 0x07
			u.nCont = 3
		case lead&0xFC == 0xF8:
			u.value = lead & 0x03
			u.nCont = 4
		case lead&0xFE == 0xFC:
			u.value = lead & 0x01
			u.nCont = 5
		case lead == 0xFE:
			u.value = 0
			u.nCont = 6
		default:
			return StatusError, fmt.Errorf("frame: invalid UTF-8 coded number lead byte 0x%02X", lead)
		}
		u.leadRead = true
	}
	for u.contDone < u.nCont {
		if !r.Fill(8) {
			return StatusContinue, nil
		}
		b := r.Read(8)
		if b&0xC0 != 0x80 {
			return StatusError, fmt.Errorf("frame: invalid UTF-8 coded number continuation byte 0x%02X", b)
		}
		u.value = u.value<<6 | (b & 0x3F)
		u.contDone++
	}
	return StatusOK, nil
}
