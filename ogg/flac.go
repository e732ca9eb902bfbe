package ogg

import "github.com/mewkiz/miniflac/internal/bits"

// flacMagic is the fixed 5-byte marker that opens the first packet of an
// Ogg-FLAC logical stream: 0x7F followed by "FLAC".
//
// ref: https://xiph.org/flac/ogg_mapping.html
var flacMagic = [5]byte{0x7F, 'F', 'L', 'A', 'C'}

// IsFLACMapping reports whether packet opens with the Ogg-FLAC identifier.
// The caller (the miniflac root package) still owns parsing the version,
// header packet count, and embedded STREAMINFO block that follow it.
func IsFLACMapping(packet []byte) bool {
	if len(packet) < len(flacMagic) {
		return false
	}
	for i, b := range flacMagic {
		if packet[i] != b {
			return false
		}
	}
	return true
}

// PacketReader reassembles whole packets from a sequence of Ogg pages
// belonging to one logical stream. It binds to the serial number of the
// first page it decodes and accepts, and silently discards pages from any
// other stream multiplexed into the same physical Ogg stream.
type PacketReader struct {
	SerialNumber uint32
	bound        bool

	// Restarted reports whether the most recently returned packet's page
	// carried the beginning-of-stream flag on the already-bound serial
	// number: the encoder started a new logical stream instance reusing the
	// same serial. The caller is expected to fully reset its view of this
	// stream before consuming the packet, then clear the flag.
	Restarted bool

	page    Page
	pending []byte
	queue   [][]byte
	sawEOS  bool
}

// Reset clears the reader so it can be bound to a new logical stream.
func (p *PacketReader) Reset() {
	*p = PacketReader{}
}

// NextPacket returns the next whole packet belonging to the bound stream.
// StatusContinue means r needs more bytes bound before another page can be
// decoded; StatusEnd means the stream's end-of-stream page has been
// consumed and every packet it closed has been drained.
//
// accept is consulted only while searching for the logical stream to bind
// to: it is given the first packet of each not-yet-bound page and decides
// whether this is the stream to lock onto. A page accept rejects is
// skipped and the search resumes with the next page, even one carrying a
// different serial number. Passing a nil accept binds unconditionally to
// the very first page decoded, as before.
func (p *PacketReader) NextPacket(r *bits.Reader, accept func(firstPacket []byte) bool) ([]byte, Status, error) {
	for {
		if len(p.queue) > 0 {
			pkt := p.queue[0]
			p.queue = p.queue[1:]
			return pkt, StatusOK, nil
		}
		if p.sawEOS {
			return nil, StatusEnd, nil
		}
		st, err := p.page.Decode(r)
		if st != StatusOK {
			return nil, st, err
		}
		if !p.bound {
			if accept != nil {
				var first []byte
				if len(p.page.Packets) > 0 {
					first = p.page.Packets[0]
				}
				if !accept(first) {
					p.page.Reset()
					continue
				}
			}
			p.SerialNumber = p.page.SerialNumber
			p.bound = true
		} else if p.page.SerialNumber == p.SerialNumber && p.page.IsBeginningOfStream() {
			p.Restarted = true
		}
		if p.page.SerialNumber == p.SerialNumber {
			p.ingestPage()
			if p.page.IsEndOfStream() {
				p.sawEOS = true
			}
		}
		p.page.Reset()
	}
}

func (p *PacketReader) ingestPage() {
	for i, pkt := range p.page.Packets {
		if i == 0 && p.page.IsContinued() {
			p.pending = append(p.pending, pkt...)
		} else {
			p.pending = append([]byte(nil), pkt...)
		}
		last := i == len(p.page.Packets)-1
		if last && p.page.Incomplete {
			continue
		}
		p.queue = append(p.queue, p.pending)
		p.pending = nil
	}
}
