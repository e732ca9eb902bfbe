package miniflac

import (
	"github.com/mewkiz/miniflac/frame"
	"github.com/mewkiz/miniflac/meta"
)

// CurrentBlock returns the most recently decoded metadata block. Its header
// and typed body fields are valid from the moment Sync or Decode returns
// StatusOK at a metadata boundary until the next metadata block is decoded.
func (d *Decoder) CurrentBlock() *meta.Block {
	return &d.block
}

// CurrentFrame returns the most recently decoded (or in-progress, after a
// header-only Sync) frame. Its header fields are valid from the moment
// Sync or Decode returns StatusOK at a frame boundary until the next
// frame's header is decoded.
func (d *Decoder) CurrentFrame() *frame.Frame {
	return &d.frame
}

// BytesReadNative returns the cumulative number of native-stream bytes
// consumed across all calls. Zero for an Ogg-container decoder, whose raw
// byte count is reported by BytesReadOgg.
func (d *Decoder) BytesReadNative() uint64 {
	return d.bytesNative
}

// BytesReadOgg returns the cumulative number of raw Ogg-container bytes
// consumed across all calls. Zero for a native-container decoder.
func (d *Decoder) BytesReadOgg() uint64 {
	return d.bytesOgg
}

// OggSerialNumber returns the serial number of the bound Ogg logical
// stream, and whether one has been bound yet.
func (d *Decoder) OggSerialNumber() (uint32, bool) {
	if !d.oggSerialSet {
		return 0, false
	}
	return d.oggPkt.SerialNumber, true
}

// HaveStreamInfo reports whether a STREAMINFO block has been decoded (or
// inherited via Reset(PhaseFrame)), which is required before a frame header
// using the "inherit from STREAMINFO" encoding can be resolved.
func (d *Decoder) HaveStreamInfo() bool {
	return d.haveStreamInfo
}
