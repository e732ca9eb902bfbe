package miniflac

import (
	"fmt"

	"github.com/mewkiz/miniflac/frame"
	"github.com/mewkiz/miniflac/internal/bits"
)

// advancePhase runs the top-level phase machine against r until it reaches
// a boundary the caller asked for (headerOnly: right after any header;
// otherwise: right after a full frame, silently skipping metadata) or r
// runs short of input for the current unit.
func (d *Decoder) advancePhase(r *bits.Reader, out [][]int32, headerOnly bool) (Status, error) {
	for {
		switch d.Phase {
		case PhaseOggHeader:
			st, err := d.decodeOggHeader(r)
			if st != StatusOK {
				return st, err
			}
			d.Phase = PhaseStreamMarker

		case PhaseStreamMarkerOrFrame:
			if !r.FillNoCRC(8) {
				return StatusContinue, nil
			}
			switch b := r.Peek(8); b {
			case uint64(flacMarker[0]):
				d.Phase = PhaseStreamMarker
			case 0xFF:
				d.Phase = PhaseFrame
			default:
				return StatusError, fmt.Errorf("miniflac: expected stream marker or frame sync, got byte 0x%02X", b)
			}

		case PhaseStreamMarker:
			st, err := d.decodeStreamMarker(r)
			if st != StatusOK {
				return st, err
			}
			d.Phase = PhaseMetadataOrFrame

		case PhaseMetadataOrFrame:
			if !r.FillNoCRC(14) {
				return StatusContinue, nil
			}
			if r.Peek(14) == frame.SyncCode {
				d.Phase = PhaseFrame
			} else {
				d.Phase = PhaseMetadata
			}

		case PhaseMetadata:
			if d.blockDone {
				d.block.Reset()
				d.blockDone = false
			}
			st, err := d.decodeMetadata(r)
			if st != StatusOK {
				return st, err
			}
			d.blockDone = true
			d.Phase = PhaseMetadataOrFrame
			if headerOnly {
				return StatusOK, nil
			}

		case PhaseFrame:
			if d.frameDone {
				d.frame.Reset()
				d.frameDone = false
				d.frameCRCSet = false
			}
			if !d.frameCRCSet {
				// r.live is guaranteed a multiple of 8 here: every phase
				// that can land on PhaseFrame only ever peeked whole bytes
				// (FillNoCRC) without discarding them, so ResetCRC folds
				// exactly those still-live bytes into the fresh registers.
				r.ResetCRC()
				d.frameCRCSet = true
			}
			d.frame.StreamInfoSampleRate = d.streamInfoSampleRate
			d.frame.StreamInfoBitsPerSample = d.streamInfoBitsPerSample
			if headerOnly {
				st, err := d.frame.Header.Decode(r)
				if st != StatusOK {
					return st, err
				}
				if err := d.frame.Header.ApplyStreamInfoDefaults(d.streamInfoSampleRate, d.streamInfoBitsPerSample); err != nil {
					return StatusError, err
				}
				return StatusOK, nil
			}
			st, err := d.frame.Decode(r)
			if st != StatusOK {
				return st, err
			}
			d.copyOut(out)
			d.frameDone = true
			return StatusOK, nil
		}
	}
}

func (d *Decoder) decodeStreamMarker(r *bits.Reader) (Status, error) {
	if !r.FillNoCRC(32) {
		return StatusContinue, nil
	}
	v := uint32(r.Read(32))
	want := uint32(flacMarker[0])<<24 | uint32(flacMarker[1])<<16 | uint32(flacMarker[2])<<8 | uint32(flacMarker[3])
	if v != want {
		return StatusError, fmt.Errorf("miniflac: invalid stream marker; expected %q, got 0x%08X", flacMarker, v)
	}
	return StatusOK, nil
}

// decodeMetadata decodes one metadata block's header and body in full. The
// body is drained here (not left for the caller to pull field-by-field)
// because the block's bytes are only reachable through the root decoder's
// own reader, which is rebound on every call; see DESIGN.md.
func (d *Decoder) decodeMetadata(r *bits.Reader) (Status, error) {
	st, err := d.block.DecodeHeader(r)
	if st != StatusOK {
		return st, err
	}
	st, err = d.block.DecodeBody(r)
	if st != StatusOK {
		return st, err
	}
	if si := d.block.StreamInfo; si != nil {
		d.streamInfoSampleRate = si.SampleRate
		d.streamInfoBitsPerSample = si.BitsPerSample
		d.haveStreamInfo = true
	}
	return StatusOK, nil
}

// copyOut copies the decoded, de-correlated channel buffers into the
// caller-supplied output, if any. Passing a nil out lets a caller traverse
// frames (e.g. to compute byte lengths for a remuxer) without paying for
// the copy.
func (d *Decoder) copyOut(out [][]int32) {
	if out == nil {
		return
	}
	for i, ch := range d.frame.Channels {
		if i >= len(out) {
			break
		}
		copy(out[i], ch)
	}
}
