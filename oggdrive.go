package miniflac

import (
	"fmt"

	"github.com/mewkiz/miniflac/frame"
	"github.com/mewkiz/miniflac/internal/bits"
	"github.com/mewkiz/miniflac/meta"
	"github.com/mewkiz/miniflac/ogg"
)

// driveOgg pulls whole Ogg packets out of data via oggPkt, binding each in
// turn to d.r and running the same phase machine driveNative uses. The
// Ogg-FLAC identification packet carries three FLAC-level units at once (id
// header, stream marker, STREAMINFO); every later packet carries exactly
// one metadata block or one frame. A StatusContinue from advancePhase means
// the currently-bound packet ran out of bytes before its unit finished —
// for the identification packet this is the normal way of discovering that
// the next unit lives in the next packet; it is not treated as an error.
func (d *Decoder) driveOgg(data []byte, out [][]int32, headerOnly bool) (Status, int, error) {
	d.oggRaw.Rebind(data)
	for {
		if !d.haveOggPacket {
			pkt, st, err := d.oggPkt.NextPacket(&d.oggRaw, ogg.IsFLACMapping)
			switch st {
			case StatusContinue:
				return d.finishOgg(StatusContinue, nil)
			case StatusEnd:
				// End of stream on the bound serial: release the binding,
				// drop this logical stream's metadata/frame state (a
				// chained stream carries its own STREAMINFO), and look for
				// the next one.
				d.oggPkt.Reset()
				d.oggSerialSet = false
				d.Phase = PhaseOggHeader
				d.oggHeaderStep = 0
				d.block = meta.Block{}
				d.blockDone = false
				d.frame = frame.Frame{}
				d.frameDone = false
				d.frameCRCSet = false
				d.haveStreamInfo = false
				continue
			case StatusError:
				return d.finishOgg(StatusError, err)
			}
			if d.oggPkt.Restarted {
				// A begin-of-stream page reappeared on the serial we're
				// already bound to: the encoder started a new logical
				// stream instance reusing the old serial. Keep the
				// binding (same PacketReader, same SerialNumber) but
				// throw away every bit of inner decoder state, since this
				// packet is a fresh identification header, not a
				// continuation of the old stream.
				d.oggPkt.Restarted = false
				d.Phase = PhaseOggHeader
				d.oggHeaderStep = 0
				d.block = meta.Block{}
				d.blockDone = false
				d.frame = frame.Frame{}
				d.frameDone = false
				d.frameCRCSet = false
				d.haveStreamInfo = false
			}
			d.oggSerialSet = true
			d.r.Rebind(pkt)
			d.haveOggPacket = true
		}
		st, err := d.advancePhase(&d.r, out, headerOnly)
		if st == StatusContinue {
			d.haveOggPacket = false
			continue
		}
		return d.finishOgg(st, err)
	}
}

func (d *Decoder) finishOgg(st Status, err error) (Status, int, error) {
	consumed := d.oggRaw.Consumed()
	d.bytesOgg += uint64(consumed)
	return st, consumed, err
}

// decodeOggHeader consumes the Ogg-FLAC identification header that opens
// the first packet of a FLAC-in-Ogg logical stream: the 5-byte magic, a
// one-byte major and minor mapping version, and a two-byte count of the
// metadata header packets that follow. d.oggPkt.NextPacket is given
// ogg.IsFLACMapping as its accept function, so by the time a packet reaches
// here its first 5 bytes are already known to match; the page search
// itself skips (rather than errors on) any logical stream whose opening
// packet fails that check. The magic is still read here, both to advance
// the bit reader past it and as a defensive invariant check.
func (d *Decoder) decodeOggHeader(r *bits.Reader) (Status, error) {
	for d.oggHeaderStep < 2 {
		switch d.oggHeaderStep {
		case 0:
			if !r.FillNoCRC(40) {
				return StatusContinue, nil
			}
			var magic [5]byte
			for i := range magic {
				magic[i] = byte(r.Read(8))
			}
			if !ogg.IsFLACMapping(magic[:]) {
				return StatusError, fmt.Errorf("miniflac: ogg packet reached the id header decoder without a matching FLAC magic")
			}
		case 1:
			if !r.FillNoCRC(32) {
				return StatusContinue, nil
			}
			d.OggMajor = uint8(r.Read(8))
			d.OggMinor = uint8(r.Read(8))
			d.OggHeaderPacketCount = uint16(r.Read(16))
		}
		d.oggHeaderStep++
	}
	return StatusOK, nil
}
