package meta

import (
	"fmt"

	"github.com/mewkiz/miniflac/internal/bits"
)

// StreamInfo contains information about the FLAC audio stream. It must be
// present as the first metadata block of a FLAC stream.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_streaminfo
type StreamInfo struct {
	// The minimum block size (in samples) used in the stream.
	MinBlockSize uint16
	// The maximum block size (in samples) used in the stream. Equal to
	// MinBlockSize for a fixed-blocksize stream.
	MaxBlockSize uint16
	// The minimum frame size (in bytes) used in the stream, or 0 if unknown.
	MinFrameSize uint32
	// The maximum frame size (in bytes) used in the stream, or 0 if unknown.
	MaxFrameSize uint32
	// Sample rate in Hz.
	SampleRate uint32
	// Number of channels; FLAC supports 1 to 8.
	NChannels uint8
	// Bits per sample; FLAC supports 4 to 32.
	BitsPerSample uint8
	// Total number of inter-channel samples in the stream, or 0 if unknown.
	NSamples uint64
	// MD5 signature of the unencoded audio data.
	MD5 [16]byte

	step  int
	mdPos int
}

// streaminfoFieldCount is the number of decode steps (covering the eight
// scalar fields) that run before MD5 bytes become available.
const streaminfoFieldCount = 5

func (si *StreamInfo) ensure(r *bits.Reader, target int) (Status, error) {
	for si.step < target {
		switch si.step {
		case 0:
			if !r.FillNoCRC(16) {
				return StatusContinue, nil
			}
			si.MinBlockSize = uint16(r.Read(16))
		case 1:
			if !r.FillNoCRC(16) {
				return StatusContinue, nil
			}
			si.MaxBlockSize = uint16(r.Read(16))
		case 2:
			if !r.FillNoCRC(24) {
				return StatusContinue, nil
			}
			si.MinFrameSize = uint32(r.Read(24))
		case 3:
			if !r.FillNoCRC(24) {
				return StatusContinue, nil
			}
			si.MaxFrameSize = uint32(r.Read(24))
		case 4:
			if !r.FillNoCRC(64) {
				return StatusContinue, nil
			}
			packed := r.Read(64)
			si.SampleRate = uint32(packed >> 44)
			si.NChannels = uint8((packed>>41)&0x7) + 1
			si.BitsPerSample = uint8((packed>>36)&0x1F) + 1
			si.NSamples = packed & 0xFFFFFFFFF
			if si.SampleRate == 0 {
				return StatusError, fmt.Errorf("meta: streaminfo sample rate must not be 0")
			}
		}
		si.step++
	}
	return StatusOK, nil
}

// MinBlockSizeField returns the minimum block size field.
func (si *StreamInfo) MinBlockSizeField(r *bits.Reader) (uint16, Status, error) {
	st, err := si.ensure(r, 1)
	return si.MinBlockSize, st, err
}

// MaxBlockSizeField returns the maximum block size field.
func (si *StreamInfo) MaxBlockSizeField(r *bits.Reader) (uint16, Status, error) {
	st, err := si.ensure(r, 2)
	return si.MaxBlockSize, st, err
}

// MinFrameSizeField returns the minimum frame size field.
func (si *StreamInfo) MinFrameSizeField(r *bits.Reader) (uint32, Status, error) {
	st, err := si.ensure(r, 3)
	return si.MinFrameSize, st, err
}

// MaxFrameSizeField returns the maximum frame size field.
func (si *StreamInfo) MaxFrameSizeField(r *bits.Reader) (uint32, Status, error) {
	st, err := si.ensure(r, 4)
	return si.MaxFrameSize, st, err
}

// SampleRateField returns the sample rate field, along with the packed
// channel count, bits-per-sample, and sample count fields that share its
// 64-bit word.
func (si *StreamInfo) SampleRateField(r *bits.Reader) (uint32, Status, error) {
	st, err := si.ensure(r, streaminfoFieldCount)
	return si.SampleRate, st, err
}

// NChannelsField returns the channel count field.
func (si *StreamInfo) NChannelsField(r *bits.Reader) (uint8, Status, error) {
	st, err := si.ensure(r, streaminfoFieldCount)
	return si.NChannels, st, err
}

// BitsPerSampleField returns the bits-per-sample field.
func (si *StreamInfo) BitsPerSampleField(r *bits.Reader) (uint8, Status, error) {
	st, err := si.ensure(r, streaminfoFieldCount)
	return si.BitsPerSample, st, err
}

// NSamplesField returns the total sample count field.
func (si *StreamInfo) NSamplesField(r *bits.Reader) (uint64, Status, error) {
	st, err := si.ensure(r, streaminfoFieldCount)
	return si.NSamples, st, err
}

// MD5Next returns the next byte of the MD5 signature, or StatusEnd once all
// 16 bytes have been returned.
func (si *StreamInfo) MD5Next(r *bits.Reader) (byte, Status, error) {
	st, err := si.ensure(r, streaminfoFieldCount)
	if st != StatusOK {
		return 0, st, err
	}
	if si.mdPos >= len(si.MD5) {
		return 0, StatusEnd, nil
	}
	if !r.FillNoCRC(8) {
		return 0, StatusContinue, nil
	}
	b := byte(r.Read(8))
	si.MD5[si.mdPos] = b
	si.mdPos++
	return b, StatusOK, nil
}
