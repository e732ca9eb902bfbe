// Package meta implements lazy, resumable readers for FLAC metadata blocks.
//
// A Block carries a 4-byte header (last-flag, type, length) and exactly one
// typed body. Field accessors on the body must be called in the order the
// FLAC format declares them, but later accessors may be called directly —
// they transparently run the accessors that precede them, discarding values
// the caller never asked for. Every accessor returns a Status alongside its
// value: StatusOK (value is valid), StatusContinue (bind more input and call
// again), or StatusEnd for the handful of iterable fields (VORBIS_COMMENT
// comments, CUESHEET tracks/index points, SEEKTABLE points, PICTURE data,
// STREAMINFO's md5 bytes).
package meta

import (
	"fmt"

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

// Type identifies a metadata block's kind.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_header
type Type uint8

// Metadata block types.
const (
	TypeStreamInfo Type = iota
	TypePadding
	TypeApplication
	TypeSeekTable
	TypeVorbisComment
	TypeCueSheet
	TypePicture
)

// TypeInvalid marks the reserved block type 127, which is fatal since it
// would be indistinguishable from a frame sync code.
const TypeInvalid Type = 127

func (t Type) String() string {
	switch t {
	case TypeStreamInfo:
		return "stream info"
	case TypePadding:
		return "padding"
	case TypeApplication:
		return "application"
	case TypeSeekTable:
		return "seek table"
	case TypeVorbisComment:
		return "vorbis comment"
	case TypeCueSheet:
		return "cue sheet"
	case TypePicture:
		return "picture"
	case TypeInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(t))
	}
}

// Header is the 4-byte metadata block header that precedes every block body.
type Header struct {
	// IsLast reports whether this is the final metadata block before audio
	// frames begin.
	IsLast bool
	// Type is the decoded block type.
	Type Type
	// Length is the body length in bytes, exactly as declared on the wire.
	Length uint32

	read bool
}

// Decode parses the 4-byte metadata block header from r. Decode may be
// called again after StatusContinue once more input is bound to r.
func (h *Header) Decode(r *bits.Reader) (Status, error) {
	if h.read {
		return StatusOK, nil
	}
	if !r.FillNoCRC(32) {
		return StatusContinue, nil
	}
	v := r.Read(32)
	h.IsLast = v&(1<<31) != 0
	rawType := uint8((v >> 24) & 0x7F)
	h.Length = uint32(v & 0xFFFFFF)
	h.Type = Type(rawType)
	if rawType == 127 {
		return StatusError, fmt.Errorf("meta: reserved block type 127")
	}
	h.read = true
	return StatusOK, nil
}

// Reset clears a header so the next metadata block may be decoded into it.
func (h *Header) Reset() {
	*h = Header{}
}

// le32 reverses the byte order of a value assembled MSB-first by the bit
// reader, producing the little-endian interpretation VORBIS_COMMENT uses for
// all of its 32-bit lengths; every other FLAC metadata field is big-endian.
func le32(v uint32) uint32 {
	return v>>24 | (v>>8)&0xFF00 | (v<<8)&0xFF0000 | v<<24
}

// readLE32 reads 4 stream bytes and interprets them as a little-endian
// uint32. It returns false if input is short; no byte is consumed twice.
func readLE32(r *bits.Reader) (uint32, bool) {
	if !r.FillNoCRC(32) {
		return 0, false
	}
	return le32(uint32(r.Read(32))), true
}

// byteAccum accumulates a variable-length byte string across resumptions. It
// backs the metadata fields returned whole (vendor string, MIME string,
// picture description, application data) rather than iterated byte-by-byte.
type byteAccum struct {
	want int
	buf  []byte
}

func (a *byteAccum) init(want int) {
	a.want = want
	a.buf = make([]byte, 0, want)
}

// step pulls as many of the remaining bytes as are currently available,
// returning StatusOK with the accumulated buffer once want bytes are in.
func (a *byteAccum) step(r *bits.Reader) (Status, error) {
	for len(a.buf) < a.want {
		if !r.FillNoCRC(8) {
			return StatusContinue, nil
		}
		a.buf = append(a.buf, byte(r.Read(8)))
	}
	return StatusOK, nil
}

// RegisteredApplications maps a registered APPLICATION block ID to the name
// of the application that registered it.
//
// ref: https://www.xiph.org/flac/id.html
var RegisteredApplications = map[string]string{
	"ATCH": "FlacFile",
	"BSOL": "beSolo",
	"BUGS": "Bugs Player",
	"Cues": "GoldWave cue points",
	"Fica": "CUE Splitter",
	"Ftol": "flac-tools",
	"MOTB": "MOTB MetaCzar",
	"MPSE": "MP3 Stream Editor",
	"MuML": "MusicML: Music Metadata Language",
	"RIFF": "Sound Devices RIFF chunk storage",
	"SFFL": "Sound Font FLAC",
	"SONY": "Sony Creative Software",
	"SQEZ": "flacsqueeze",
	"TtWv": "TwistedWave",
	"UITS": "UITS Embedding tools",
	"aiff": "FLAC AIFF chunk storage",
	"imag": "flac-image application",
	"peem": "Parseable Embedded Extensible Metadata",
	"qfst": "QFLAC Studio",
	"riff": "FLAC RIFF chunk storage",
	"tune": "TagTuner",
	"xbat": "XBAT",
	"xmcd": "xmcd",
}
