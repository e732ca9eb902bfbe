// Package miniflac implements a pull/push-resumable decoder for the FLAC
// bitstream, usable both as a raw native FLAC stream and as FLAC packets
// embedded in Ogg pages. A caller feeds an arbitrary-sized byte slice to
// Sync or Decode; the decoder consumes as many bytes as it can and reports
// StatusContinue when it needs more, never blocking and never reading past
// a unit boundary it has not been asked to cross.
package miniflac

import (
	"fmt"

	"github.com/mewkiz/pkg/dbg"

	"github.com/mewkiz/miniflac/frame"
	"github.com/mewkiz/miniflac/internal/bits"
	"github.com/mewkiz/miniflac/meta"
	"github.com/mewkiz/miniflac/ogg"
)

// Status is shared with the rest of the miniflac core.
type Status = bits.Status

const (
	StatusOK       = bits.StatusOK
	StatusContinue = bits.StatusContinue
	StatusEnd      = bits.StatusEnd
	StatusError    = bits.StatusError
)

// Container identifies which framing a Decoder is reading.
type Container uint8

const (
	// ContainerUnknown means the first byte of input has not yet been
	// inspected; Init leaves the decoder in this state unless given an
	// explicit hint, and Reset keeps whatever container was already set.
	ContainerUnknown Container = iota
	ContainerNative
	ContainerOgg
)

func (c Container) String() string {
	switch c {
	case ContainerNative:
		return "native"
	case ContainerOgg:
		return "ogg"
	default:
		return "unknown"
	}
}

// Phase is the top-level decoder's current position in the bitstream.
type Phase uint8

const (
	// PhaseOggHeader expects the Ogg-FLAC identification packet. Ogg
	// streams only; native streams never visit this phase.
	PhaseOggHeader Phase = iota
	// PhaseStreamMarkerOrFrame disambiguates a fresh native stream (opens
	// with the "fLaC" marker) from native input that begins directly at a
	// frame sync code.
	PhaseStreamMarkerOrFrame
	// PhaseStreamMarker consumes the four-byte "fLaC" marker.
	PhaseStreamMarker
	// PhaseMetadataOrFrame disambiguates the next metadata block from the
	// first audio frame by peeking the 14-bit frame sync code.
	PhaseMetadataOrFrame
	// PhaseMetadata decodes one metadata block, header and body.
	PhaseMetadata
	// PhaseFrame decodes one audio frame.
	PhaseFrame
)

func (p Phase) String() string {
	switch p {
	case PhaseOggHeader:
		return "ogg header"
	case PhaseStreamMarkerOrFrame:
		return "stream marker or frame"
	case PhaseStreamMarker:
		return "stream marker"
	case PhaseMetadataOrFrame:
		return "metadata or frame"
	case PhaseMetadata:
		return "metadata"
	case PhaseFrame:
		return "frame"
	default:
		return "invalid"
	}
}

// flacMarker is the four-byte native FLAC stream marker.
var flacMarker = [4]byte{'f', 'L', 'a', 'C'}

// Decoder is the top-level resumable FLAC/Ogg-FLAC decoder. The zero value
// is not ready to use; call Init (or use NewDecoder) first.
//
// A Decoder owns its substates by composition: it may be embedded by value
// or constructed with NewDecoder. The substates allocate their per-unit
// buffers (subframe samples, residuals, metadata strings) as they decode.
type Decoder struct {
	Container Container
	Phase     Phase

	// OggMajor, OggMinor and OggHeaderPacketCount are populated once the
	// Ogg-FLAC identification packet has been parsed.
	OggMajor             uint8
	OggMinor             uint8
	OggHeaderPacketCount uint16

	r      bits.Reader // bound to native input, or to one reassembled Ogg packet
	oggRaw bits.Reader // bound to raw Ogg page bytes; unused outside ContainerOgg
	oggPkt ogg.PacketReader

	probed        bool
	oggHeaderStep int

	block     meta.Block
	blockDone bool

	frame       frame.Frame
	frameDone   bool
	frameCRCSet bool

	haveStreamInfo          bool
	streamInfoSampleRate    uint32
	streamInfoBitsPerSample uint8

	bytesNative uint64
	bytesOgg    uint64

	oggSerialSet  bool
	haveOggPacket bool
}

// NewDecoder allocates and initializes a Decoder for the given container.
// Pass ContainerUnknown to have the first byte of input probed.
func NewDecoder(container Container) *Decoder {
	d := new(Decoder)
	d.Init(container)
	return d
}

// Init (re)initializes d from scratch for the given container hint.
func (d *Decoder) Init(container Container) {
	*d = Decoder{}
	d.setContainer(container)
}

func (d *Decoder) setContainer(container Container) {
	d.Container = container
	switch container {
	case ContainerNative:
		d.Phase = PhaseStreamMarkerOrFrame
		d.probed = true
	case ContainerOgg:
		d.Phase = PhaseOggHeader
		d.probed = true
	default:
		d.Container = ContainerUnknown
		d.probed = false
	}
}

// Reset reinitializes the decoder to resume at phase. Resetting to
// PhaseFrame preserves the STREAMINFO sample_rate and bps seen so far, so a
// caller that has already read STREAMINFO can start decoding frames
// directly; any other target reinitializes those too. If the container is
// Ogg, a reset always lands in PhaseOggHeader regardless of phase, so the
// next logical stream is picked up cleanly.
func (d *Decoder) Reset(phase Phase) {
	sr, bps, have := d.streamInfoSampleRate, d.streamInfoBitsPerSample, d.haveStreamInfo
	container := d.Container
	*d = Decoder{}
	d.setContainer(container)
	if phase == PhaseFrame {
		d.streamInfoSampleRate = sr
		d.streamInfoBitsPerSample = bps
		d.haveStreamInfo = have
	}
	if d.Container != ContainerOgg {
		d.Phase = phase
	}
}

// SetDebug toggles the package-level trace facility used sparingly by the
// frame and residual decoders. It has no effect on correctness.
func (d *Decoder) SetDebug(enabled bool) {
	dbg.Debug = enabled
}

// probe inspects the first byte of a freshly-seen stream to pick a
// container, when one was not given to Init/Reset as a hint.
func (d *Decoder) probe(data []byte) (Status, error) {
	if d.probed {
		return StatusOK, nil
	}
	if len(data) == 0 {
		return StatusContinue, nil
	}
	switch data[0] {
	case 'f':
		d.setContainer(ContainerNative)
	case 'O':
		d.setContainer(ContainerOgg)
	default:
		return StatusError, fmt.Errorf("miniflac: unrecognized stream; first byte 0x%02X is neither native FLAC ('f') nor Ogg ('O')", data[0])
	}
	return StatusOK, nil
}

// Sync advances to the next block boundary, decoding only headers: a
// metadata block's header and body (see DESIGN.md for why sync fully drains
// the body too) or a frame's header. It returns the number of bytes of data
// consumed alongside the status.
func (d *Decoder) Sync(data []byte) (Status, int, error) {
	return d.drive(data, nil, true)
}

// Decode advances to the end of the next audio frame, automatically
// skipping any metadata blocks encountered along the way. On StatusOK,
// out[c][0:blockSize] holds channel c's decoded samples as sign-extended
// 32-bit integers, unless out is nil, in which case the frame is traversed
// without writing samples anywhere — useful for remuxing, where the frame's
// byte length is the change in BytesReadNative across the call.
func (d *Decoder) Decode(data []byte, out [][]int32) (Status, int, error) {
	return d.drive(data, out, false)
}

func (d *Decoder) drive(data []byte, out [][]int32, headerOnly bool) (Status, int, error) {
	if st, err := d.probe(data); st != StatusOK {
		return st, 0, err
	}
	if d.Container == ContainerOgg {
		return d.driveOgg(data, out, headerOnly)
	}
	return d.driveNative(data, out, headerOnly)
}

func (d *Decoder) driveNative(data []byte, out [][]int32, headerOnly bool) (Status, int, error) {
	d.r.Rebind(data)
	st, err := d.advancePhase(&d.r, out, headerOnly)
	consumed := d.r.Consumed()
	d.bytesNative += uint64(consumed)
	return st, consumed, err
}
